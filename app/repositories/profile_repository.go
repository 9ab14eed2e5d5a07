package repositories

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/tiffin/app/models"
	"github.com/shashiranjanraj/tiffin/pkg/orm"
	"gorm.io/gorm"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Exists(ctx context.Context, userID string) (bool, error) {
	n, err := orm.Use(r.db).WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("user_id = ?", userID).
		Count()
	if err != nil {
		return false, fmt.Errorf("profile repository: exists: %w", err)
	}
	return n > 0, nil
}

// Create stores profile and, for food makers, maker in the same
// transaction. maker may be nil.
func (r *ProfileRepository) Create(ctx context.Context, profile *models.UserProfile, maker *models.FoodMaker) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(profile).Error; err != nil {
			return fmt.Errorf("profile repository: insert profile: %w", err)
		}
		if maker == nil {
			return nil
		}
		if err := tx.Create(maker).Error; err != nil {
			return fmt.Errorf("profile repository: insert food maker: %w", err)
		}
		return nil
	})
}

// FoodMakerOf resolves the caller's food maker. It returns ErrNotFound
// when there is no food_maker profile, and a nil maker when the profile
// exists without a food_makers row.
func (r *ProfileRepository) FoodMakerOf(ctx context.Context, userID string) (*models.FoodMaker, error) {
	var profile models.UserProfile
	err := orm.Use(r.db).WithContext(ctx).
		Where("user_id = ? AND user_type = ?", userID, models.UserTypeFoodMaker).
		First(&profile)
	if err != nil {
		return nil, notFound(err)
	}

	var maker models.FoodMaker
	err = orm.Use(r.db).WithContext(ctx).Where("user_id = ?", userID).First(&maker)
	if err != nil {
		if notFound(err) == ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("profile repository: food maker: %w", err)
	}
	return &maker, nil
}
