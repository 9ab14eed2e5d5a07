package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shashiranjanraj/tiffin/app/repositories"
	"github.com/shashiranjanraj/tiffin/pkg/collection"
	"github.com/shashiranjanraj/tiffin/pkg/logger"
)

type MenuFilter struct {
	PinCode           string `json:"pin_code"`
	DietaryPreference string `json:"dietary_preference"`
	MealType          string `json:"meal_type"`
	CuisineType       string `json:"cuisine_type"`
	Search            string `json:"search"`
}

type MenuFoodMaker struct {
	ID              uint    `json:"id"`
	BusinessName    string  `json:"business_name"`
	Rating          float64 `json:"rating"`
	TotalOrders     int     `json:"total_orders"`
	PreparationTime int     `json:"preparation_time"`
}

// MenuItemView is one entry of the public menu listing. Money goes out as
// JSON numbers.
type MenuItemView struct {
	ID                uint          `json:"id"`
	Name              string        `json:"name"`
	Description       string        `json:"description"`
	Price             float64       `json:"price"`
	ImageURL          string        `json:"image_url"`
	DietaryPreference string        `json:"dietary_preference"`
	MealType          string        `json:"meal_type"`
	CuisineType       string        `json:"cuisine_type"`
	Ingredients       string        `json:"ingredients"`
	PortionSize       string        `json:"portion_size"`
	PreparationTime   int           `json:"preparation_time"`
	FoodMaker         MenuFoodMaker `json:"food_maker"`
}

type MenuLister interface {
	Listing(ctx context.Context, f repositories.MenuFilter, ttl time.Duration) ([]repositories.MenuListing, error)
}

type MenuService struct {
	menu MenuLister
	ttl  time.Duration
}

// NewMenuService caches listings for ttl; zero disables caching.
func NewMenuService(menu MenuLister, ttl time.Duration) *MenuService {
	return &MenuService{menu: menu, ttl: ttl}
}

func (s *MenuService) Items(ctx context.Context, f MenuFilter) ([]MenuItemView, error) {
	rows, err := s.menu.Listing(ctx, repositories.MenuFilter(f), s.ttl)
	if err != nil {
		logger.WithCtx(ctx).Error("menu: listing failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrMenuUnavailable, err)
	}
	return collection.Map(rows, func(r repositories.MenuListing) MenuItemView {
		return MenuItemView{
			ID:                r.ID,
			Name:              r.Name,
			Description:       r.Description,
			Price:             r.Price.InexactFloat64(),
			ImageURL:          r.ImageURL,
			DietaryPreference: r.DietaryPreference,
			MealType:          r.MealType,
			CuisineType:       r.CuisineType,
			Ingredients:       r.Ingredients,
			PortionSize:       r.PortionSize,
			PreparationTime:   r.PreparationTime,
			FoodMaker: MenuFoodMaker{
				ID:              r.FoodMakerID,
				BusinessName:    r.BusinessName,
				Rating:          r.Rating.InexactFloat64(),
				TotalOrders:     r.TotalOrders,
				PreparationTime: r.MakerPreparationTime,
			},
		}
	}), nil
}
