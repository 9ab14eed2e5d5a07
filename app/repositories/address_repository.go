package repositories

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/tiffin/app/models"
	"github.com/shashiranjanraj/tiffin/pkg/orm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AddressRepository struct {
	db *gorm.DB
}

func NewAddressRepository(db *gorm.DB) *AddressRepository {
	return &AddressRepository{db: db}
}

// FindOwned returns ErrNotFound when id does not belong to userID.
func (r *AddressRepository) FindOwned(ctx context.Context, userID string, id uint) (models.CustomerAddress, error) {
	var addr models.CustomerAddress
	err := orm.Use(r.db).WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&addr)
	return addr, notFound(err)
}

// List returns the default address first, then newest first.
func (r *AddressRepository) List(ctx context.Context, userID string) ([]models.CustomerAddress, error) {
	addrs := []models.CustomerAddress{}
	err := orm.Use(r.db).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC, id DESC").
		Get(&addrs)
	if err != nil {
		return nil, fmt.Errorf("address repository: list: %w", err)
	}
	return addrs, nil
}

// Create stores addr, making it the default when it is the user's first.
// The user's rows are locked on postgres and mysql. Two first addresses
// racing on postgres are settled by the one-default index; the loser is
// stored as a regular address.
func (r *AddressRepository) Create(ctx context.Context, addr *models.CustomerAddress) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing := tx.Model(&models.CustomerAddress{}).Where("user_id = ?", addr.UserID)
		if locksRows(tx) {
			existing = existing.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var ids []uint
		if err := existing.Pluck("id", &ids).Error; err != nil {
			return fmt.Errorf("address repository: lock existing: %w", err)
		}
		addr.IsDefault = len(ids) == 0
		if !addr.IsDefault {
			return insertAddress(tx, addr)
		}

		if err := tx.SavePoint(firstAddressSavepoint).Error; err != nil {
			return fmt.Errorf("address repository: savepoint: %w", err)
		}
		err := tx.Create(addr).Error
		if err == nil {
			return nil
		}
		if rbErr := tx.RollbackTo(firstAddressSavepoint).Error; rbErr != nil {
			return fmt.Errorf("address repository: insert: %w", err)
		}
		var defaults int64
		if cErr := tx.Model(&models.CustomerAddress{}).
			Where("user_id = ? AND is_default = ?", addr.UserID, true).
			Count(&defaults).Error; cErr != nil || defaults == 0 {
			return fmt.Errorf("address repository: insert: %w", err)
		}
		addr.ID, addr.IsDefault = 0, false
		return insertAddress(tx, addr)
	})
}

const firstAddressSavepoint = "first_address"

func locksRows(tx *gorm.DB) bool {
	switch tx.Dialector.Name() {
	case "postgres", "mysql":
		return true
	}
	return false
}

func insertAddress(tx *gorm.DB, addr *models.CustomerAddress) error {
	if err := tx.Create(addr).Error; err != nil {
		return fmt.Errorf("address repository: insert: %w", err)
	}
	return nil
}

// Update applies column updates to an owned address and returns the result.
func (r *AddressRepository) Update(ctx context.Context, userID string, id uint, changes map[string]any) (models.CustomerAddress, error) {
	addr, err := r.FindOwned(ctx, userID, id)
	if err != nil {
		return addr, err
	}
	if err := r.db.WithContext(ctx).Model(&addr).Updates(changes).Error; err != nil {
		return addr, fmt.Errorf("address repository: update: %w", err)
	}
	return r.FindOwned(ctx, userID, id)
}

// Delete removes an owned address. When it was the default, the oldest
// remaining address takes over.
func (r *AddressRepository) Delete(ctx context.Context, userID string, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var addr models.CustomerAddress
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&addr).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Delete(&addr).Error; err != nil {
			return fmt.Errorf("address repository: delete: %w", err)
		}
		if !addr.IsDefault {
			return nil
		}

		var next models.CustomerAddress
		err := tx.Where("user_id = ?", userID).Order("created_at ASC, id ASC").First(&next).Error
		if err != nil {
			if notFound(err) == ErrNotFound {
				return nil
			}
			return fmt.Errorf("address repository: find successor: %w", err)
		}
		if err := tx.Model(&next).Update("is_default", true).Error; err != nil {
			return fmt.Errorf("address repository: promote successor: %w", err)
		}
		return nil
	})
}

// SetDefault clears every default for userID, then marks id.
func (r *AddressRepository) SetDefault(ctx context.Context, userID string, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var addr models.CustomerAddress
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&addr).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Model(&models.CustomerAddress{}).
			Where("user_id = ? AND is_default = ?", userID, true).
			Update("is_default", false).Error; err != nil {
			return fmt.Errorf("address repository: clear defaults: %w", err)
		}
		if err := tx.Model(&addr).Update("is_default", true).Error; err != nil {
			return fmt.Errorf("address repository: set default: %w", err)
		}
		return nil
	})
}
