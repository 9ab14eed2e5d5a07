package seeders_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/shashiranjanraj/tiffin/app/models"
	"github.com/shashiranjanraj/tiffin/app/repositories"
	"github.com/shashiranjanraj/tiffin/database/seeders"
	"github.com/shashiranjanraj/tiffin/pkg/testkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedersAreRepeatable(t *testing.T) {
	db := testkit.NewDB(t, models.All()...)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, seeders.RunAll(ctx, db, &out))
	require.NoError(t, seeders.RunAll(ctx, db, &out))
	assert.Contains(t, out.String(), "menu_items")

	var makers, items, addresses int64
	db.Model(&models.FoodMaker{}).Count(&makers)
	db.Model(&models.MenuItem{}).Count(&items)
	db.Model(&models.CustomerAddress{}).Count(&addresses)
	assert.Equal(t, int64(2), makers)
	assert.Equal(t, int64(6), items)
	assert.Equal(t, int64(1), addresses)
}

func TestSeededMenuIsListable(t *testing.T) {
	db := testkit.NewDB(t, models.All()...)
	ctx := context.Background()
	require.NoError(t, seeders.RunAll(ctx, db, &bytes.Buffer{}))

	rows, err := repositories.NewMenuRepository(db).Listing(ctx, repositories.MenuFilter{PinCode: "560034", MealType: "breakfast"}, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, "Meenakshi Tiffins", r.BusinessName)
	}
}

func TestNamesInRegistrationOrder(t *testing.T) {
	assert.Equal(t, []string{"food_makers", "menu_items", "customer_addresses"}, seeders.Names())
}
