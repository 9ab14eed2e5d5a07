package repositories

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/tiffin/app/models"
	"github.com/shashiranjanraj/tiffin/pkg/orm"
	"gorm.io/gorm"
)

type VerificationRepository struct {
	db *gorm.DB
}

func NewVerificationRepository(db *gorm.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

// ForFoodMaker returns the maker's verification or ErrNotFound.
func (r *VerificationRepository) ForFoodMaker(ctx context.Context, makerID uint) (models.FoodMakerVerification, error) {
	var v models.FoodMakerVerification
	err := orm.Use(r.db).WithContext(ctx).Where("food_maker_id = ?", makerID).First(&v)
	return v, notFound(err)
}

// Submit inserts v, or resets the existing row when v.ID is set, back to
// pending, and marks the food maker unverified.
func (r *VerificationRepository) Submit(ctx context.Context, v *models.FoodMakerVerification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if v.ID == 0 {
			if err := tx.Create(v).Error; err != nil {
				return fmt.Errorf("verification repository: insert: %w", err)
			}
		} else {
			err := tx.Model(v).Updates(map[string]any{
				"personal_info":     v.PersonalInfo,
				"business_details":  v.BusinessDetails,
				"document_urls":     v.DocumentURLs,
				"quality_checklist": v.QualityChecklist,
				"status":            v.Status,
				"submitted_at":      v.SubmittedAt,
				"reviewed_at":       nil,
				"admin_notes":       nil,
			}).Error
			if err != nil {
				return fmt.Errorf("verification repository: update: %w", err)
			}
			v.ReviewedAt, v.AdminNotes = nil, nil
		}

		if err := tx.Model(&models.FoodMaker{}).
			Where("id = ?", v.FoodMakerID).
			Update("is_verified", false).Error; err != nil {
			return fmt.Errorf("verification repository: reset food maker: %w", err)
		}
		return nil
	})
}
