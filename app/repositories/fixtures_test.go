package repositories_test

import (
	"testing"

	"github.com/shashiranjanraj/tiffin/app/models"
	"github.com/shashiranjanraj/tiffin/pkg/testkit"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testkit.NewDB(t, models.All()...)
}

func seedMaker(t *testing.T, db *gorm.DB, userID, name, rating, areas string) models.FoodMaker {
	t.Helper()
	m := models.FoodMaker{
		UserID:       userID,
		BusinessName: name,
		Rating:       decimal.RequireFromString(rating),
		ServiceAreas: areas,
	}
	require.NoError(t, db.Create(&m).Error)
	return m
}

func seedItem(t *testing.T, db *gorm.DB, makerID uint, name, price string, available bool, mutate ...func(*models.MenuItem)) models.MenuItem {
	t.Helper()
	item := models.MenuItem{
		FoodMakerID: makerID,
		Name:        name,
		Price:       decimal.RequireFromString(price),
		IsAvailable: available,
	}
	for _, fn := range mutate {
		fn(&item)
	}
	require.NoError(t, db.Create(&item).Error)
	return item
}
