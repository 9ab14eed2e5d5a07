package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/shashiranjanraj/tiffin/app/models"
	"github.com/shashiranjanraj/tiffin/pkg/orm"
	"gorm.io/gorm"
)

type IdempotencyRepository struct {
	db *gorm.DB
}

func NewIdempotencyRepository(db *gorm.DB) *IdempotencyRepository {
	return &IdempotencyRepository{db: db}
}

// Lookup returns the order id stored for key, or ErrNotFound.
func (r *IdempotencyRepository) Lookup(ctx context.Context, customerID, key string) (uint, error) {
	var row models.OrderIdempotencyKey
	err := orm.Use(r.db).WithContext(ctx).
		Where("customer_id = ? AND idempotency_key = ?", customerID, key).
		First(&row)
	if err != nil {
		return 0, notFound(err)
	}
	return row.OrderID, nil
}

// Purge deletes keys created before cutoff.
func (r *IdempotencyRepository) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.OrderIdempotencyKey{})
	if res.Error != nil {
		return 0, fmt.Errorf("idempotency repository: purge: %w", res.Error)
	}
	return res.RowsAffected, nil
}
