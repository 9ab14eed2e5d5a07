package repositories

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/tiffin/app/models"
	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create writes the order, its items, the food maker's order counter and,
// when idempotencyKey is set, the key row, all in one transaction.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order, items []models.OrderItem, idempotencyKey string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(order).Error; err != nil {
			return fmt.Errorf("order repository: insert order: %w", err)
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("order repository: insert items: %w", err)
		}

		res := tx.Model(&models.FoodMaker{}).
			Where("id = ?", order.FoodMakerID).
			UpdateColumn("total_orders", gorm.Expr("total_orders + ?", 1))
		if res.Error != nil {
			return fmt.Errorf("order repository: bump total_orders: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return fmt.Errorf("order repository: food maker %d not found", order.FoodMakerID)
		}

		if idempotencyKey == "" {
			return nil
		}
		key := models.OrderIdempotencyKey{CustomerID: order.CustomerID, Key: idempotencyKey, OrderID: order.ID}
		if err := tx.Create(&key).Error; err != nil {
			return fmt.Errorf("order repository: insert idempotency key: %w", err)
		}
		return nil
	})
}

// Find loads an order with its items.
func (r *OrderRepository) Find(ctx context.Context, id uint) (models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, id).Error
	return order, notFound(err)
}
