package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FoodMaker is a home cook selling through the platform.
type FoodMaker struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          string          `gorm:"size:64;not null;uniqueIndex" json:"user_id"`
	BusinessName    string          `gorm:"size:255;not null" json:"business_name"`
	Description     string          `gorm:"type:text" json:"description"`
	Speciality      string          `gorm:"size:255" json:"speciality"`
	ServiceAreas    string          `gorm:"type:text" json:"-"`
	PreparationTime int             `gorm:"not null;default:60" json:"preparation_time"`
	Rating          decimal.Decimal `gorm:"type:decimal(3,2);not null;default:0" json:"rating"`
	TotalOrders     int             `gorm:"not null;default:0" json:"total_orders"`
	IsVerified      bool            `gorm:"not null;default:false" json:"is_verified"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Areas splits the stored comma-joined pin codes.
func (f FoodMaker) Areas() []string {
	return SplitAreas(f.ServiceAreas)
}

// JoinAreas is the storage form of a service area list.
func JoinAreas(areas []string) string {
	clean := make([]string, 0, len(areas))
	for _, a := range areas {
		if a = strings.TrimSpace(a); a != "" {
			clean = append(clean, a)
		}
	}
	return strings.Join(clean, ",")
}

func SplitAreas(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type MenuItem struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	FoodMakerID       uint            `gorm:"not null;index" json:"food_maker_id"`
	Name              string          `gorm:"size:255;not null" json:"name"`
	Description       string          `gorm:"type:text" json:"description"`
	Price             decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	ImageURL          string          `gorm:"size:512" json:"image_url"`
	DietaryPreference string          `gorm:"size:32;index" json:"dietary_preference"`
	MealType          string          `gorm:"size:32;index" json:"meal_type"`
	CuisineType       string          `gorm:"size:64" json:"cuisine_type"`
	Ingredients       string          `gorm:"type:text" json:"ingredients"`
	PortionSize       string          `gorm:"size:64" json:"portion_size"`
	PreparationTime   int             `json:"preparation_time"`
	IsAvailable       bool            `gorm:"not null;index" json:"is_available"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	FoodMaker *FoodMaker `gorm:"foreignKey:FoodMakerID" json:"-"`
}
