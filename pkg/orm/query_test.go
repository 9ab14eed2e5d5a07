package orm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type dish struct {
	ID        uint
	Name      string
	Available bool
}

func seeded(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&dish{}))
	require.NoError(t, db.Create(&[]dish{
		{Name: "Rajma", Available: true},
		{Name: "Aloo", Available: true},
		{Name: "Kheer", Available: false},
	}).Error)
	return db
}

func TestWhenAppliesOptionalFilters(t *testing.T) {
	db := seeded(t)

	var got []dish
	err := Use(db).WithContext(context.Background()).
		Model(&dish{}).
		When(true, func(q *Query) *Query { return q.Where("available = ?", true) }).
		When(false, func(q *Query) *Query { return q.Where("name = ?", "nope") }).
		Order("name ASC").
		Get(&got)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "Aloo", got[0].Name)
	assert.Equal(t, "Rajma", got[1].Name)
}

func TestCountAndFirst(t *testing.T) {
	db := seeded(t)

	n, err := Use(db).Model(&dish{}).Where("available = ?", false).Count()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var d dish
	require.NoError(t, Use(db).Where("name = ?", "Kheer").First(&d))
	assert.False(t, d.Available)

	assert.ErrorIs(t, Use(db).Where("name = ?", "Biryani").First(&d), gorm.ErrRecordNotFound)
}

func TestCacheFallsThroughWithoutRedis(t *testing.T) {
	db := seeded(t)

	var got []dish
	require.NoError(t, Use(db).Model(&dish{}).Limit(1).Order("id").Cache("dishes:first", time.Minute, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Rajma", got[0].Name)
}
