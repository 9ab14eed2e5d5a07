package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shashiranjanraj/tiffin/app/models"
	"github.com/shashiranjanraj/tiffin/pkg/collection"
	"github.com/shashiranjanraj/tiffin/pkg/orm"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MenuFilter struct {
	PinCode           string
	DietaryPreference string
	MealType          string
	CuisineType       string
	Search            string
}

func (f MenuFilter) cacheKey() string {
	return fmt.Sprintf("menu:items:%s|%s|%s|%s",
		f.DietaryPreference, f.MealType, f.CuisineType, strings.ToLower(f.Search))
}

// MenuListing is one available item joined with its food maker.
type MenuListing struct {
	ID                   uint            `json:"id"`
	Name                 string          `json:"name"`
	Description          string          `json:"description"`
	Price                decimal.Decimal `json:"price"`
	ImageURL             string          `json:"image_url"`
	DietaryPreference    string          `json:"dietary_preference"`
	MealType             string          `json:"meal_type"`
	CuisineType          string          `json:"cuisine_type"`
	Ingredients          string          `json:"ingredients"`
	PortionSize          string          `json:"portion_size"`
	PreparationTime      int             `json:"preparation_time"`
	FoodMakerID          uint            `json:"food_maker_id"`
	BusinessName         string          `json:"business_name"`
	Rating               decimal.Decimal `json:"rating"`
	TotalOrders          int             `json:"total_orders"`
	MakerPreparationTime int             `json:"maker_preparation_time"`
	ServiceAreas         string          `json:"service_areas"`
}

const listingColumns = `mi.id AS id, mi.name AS name, mi.description AS description, mi.price AS price,
	mi.image_url AS image_url, mi.dietary_preference AS dietary_preference, mi.meal_type AS meal_type,
	mi.cuisine_type AS cuisine_type, mi.ingredients AS ingredients, mi.portion_size AS portion_size,
	mi.preparation_time AS preparation_time, fm.id AS food_maker_id, fm.business_name AS business_name,
	fm.rating AS rating, fm.total_orders AS total_orders, fm.preparation_time AS maker_preparation_time,
	fm.service_areas AS service_areas`

type MenuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

// FindAvailable returns the available menu items among ids.
func (r *MenuRepository) FindAvailable(ctx context.Context, ids []uint) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if len(ids) == 0 {
		return items, nil
	}
	err := orm.Use(r.db).WithContext(ctx).
		Where("id IN ? AND is_available = ?", ids, true).
		Get(&items)
	if err != nil {
		return nil, fmt.Errorf("menu repository: find available: %w", err)
	}
	return items, nil
}

// Listing runs the filtered menu query, reading through the cache for ttl.
// The pin code is matched against the cached rows.
func (r *MenuRepository) Listing(ctx context.Context, f MenuFilter, ttl time.Duration) ([]MenuListing, error) {
	var rows []MenuListing
	search := "%" + strings.ToLower(f.Search) + "%"

	err := orm.Use(r.db).WithContext(ctx).
		Table("menu_items AS mi").
		Select(listingColumns).
		Joins("JOIN food_makers AS fm ON fm.id = mi.food_maker_id").
		Where("mi.is_available = ?", true).
		When(f.DietaryPreference != "", func(q *orm.Query) *orm.Query {
			return q.Where("mi.dietary_preference = ?", f.DietaryPreference)
		}).
		When(f.MealType != "", func(q *orm.Query) *orm.Query {
			return q.Where("mi.meal_type = ?", f.MealType)
		}).
		When(f.CuisineType != "", func(q *orm.Query) *orm.Query {
			return q.Where("mi.cuisine_type = ?", f.CuisineType)
		}).
		When(f.Search != "", func(q *orm.Query) *orm.Query {
			return q.Where("(LOWER(mi.name) LIKE ? OR LOWER(mi.description) LIKE ? OR LOWER(fm.business_name) LIKE ?)",
				search, search, search)
		}).
		Order("fm.rating DESC, mi.name ASC").
		Cache(f.cacheKey(), ttl, &rows)
	if err != nil {
		return nil, fmt.Errorf("menu repository: listing: %w", err)
	}

	if f.PinCode == "" {
		return rows, nil
	}
	return collection.Filter(rows, func(l MenuListing) bool {
		return collection.Contains(models.SplitAreas(l.ServiceAreas), f.PinCode)
	}), nil
}
