package seeders

import (
	"context"

	"github.com/shashiranjanraj/tiffin/app/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	Register("food_makers", seedFoodMakers)
	Register("menu_items", seedMenuItems)
	Register("customer_addresses", seedAddresses)
}

type demoMaker struct {
	userID, name, speciality string
	areas                    []string
	rating                   string
}

var demoMakers = []demoMaker{
	{"demo-maker-1", "Asha's Kitchen", "North Indian thalis", []string{"560001", "560034"}, "4.7"},
	{"demo-maker-2", "Meenakshi Tiffins", "South Indian breakfast", []string{"560034", "560095"}, "4.5"},
}

func seedFoodMakers(_ context.Context, db *gorm.DB) error {
	for _, d := range demoMakers {
		profile := models.UserProfile{UserID: d.userID, UserType: models.UserTypeFoodMaker, PhoneNumber: "9000000000"}
		if err := db.Where(models.UserProfile{UserID: d.userID}).FirstOrCreate(&profile).Error; err != nil {
			return err
		}
		maker := models.FoodMaker{
			UserID:          d.userID,
			BusinessName:    d.name,
			Speciality:      d.speciality,
			ServiceAreas:    models.JoinAreas(d.areas),
			PreparationTime: 45,
			Rating:          decimal.RequireFromString(d.rating),
			IsVerified:      true,
		}
		if err := db.Where(models.FoodMaker{UserID: d.userID}).FirstOrCreate(&maker).Error; err != nil {
			return err
		}
	}
	return nil
}

type demoItem struct {
	maker, name, price, diet, meal, cuisine string
}

var demoItems = []demoItem{
	{"demo-maker-1", "Veg Thali", "150", "veg", "lunch", "north_indian"},
	{"demo-maker-1", "Rajma Chawal", "120", "veg", "dinner", "north_indian"},
	{"demo-maker-1", "Chicken Curry Meal", "220", "non_veg", "dinner", "north_indian"},
	{"demo-maker-2", "Idli Vada", "60", "veg", "breakfast", "south_indian"},
	{"demo-maker-2", "Masala Dosa", "80", "veg", "breakfast", "south_indian"},
	{"demo-maker-2", "Curd Rice", "90", "veg", "lunch", "south_indian"},
}

func seedMenuItems(_ context.Context, db *gorm.DB) error {
	for _, d := range demoItems {
		var maker models.FoodMaker
		if err := db.Where("user_id = ?", d.maker).First(&maker).Error; err != nil {
			return err
		}
		item := models.MenuItem{
			FoodMakerID:       maker.ID,
			Name:              d.name,
			Price:             decimal.RequireFromString(d.price),
			DietaryPreference: d.diet,
			MealType:          d.meal,
			CuisineType:       d.cuisine,
			PortionSize:       "1 plate",
			PreparationTime:   30,
			IsAvailable:       true,
		}
		if err := db.Where(models.MenuItem{FoodMakerID: maker.ID, Name: d.name}).FirstOrCreate(&item).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedAddresses(_ context.Context, db *gorm.DB) error {
	addr := models.CustomerAddress{
		UserID:       "demo-customer",
		AddressLine1: "42 Residency Road",
		City:         "Bengaluru",
		State:        "Karnataka",
		PinCode:      "560001",
		AddressType:  models.AddressHome,
		IsDefault:    true,
	}
	return db.Where(models.CustomerAddress{UserID: addr.UserID, AddressLine1: addr.AddressLine1}).FirstOrCreate(&addr).Error
}
