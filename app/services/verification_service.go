package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shashiranjanraj/tiffin/app/models"
	"github.com/shashiranjanraj/tiffin/app/repositories"
	"github.com/shashiranjanraj/tiffin/pkg/logger"
	"github.com/shashiranjanraj/tiffin/pkg/notification"
)

// Section is one free-form part of a verification submission.
type Section map[string]any

type VerificationInput struct {
	PersonalInfo     Section `json:"personalInfo"`
	BusinessDetails  Section `json:"businessDetails"`
	DocumentURLs     Section `json:"documentUrls"`
	QualityChecklist Section `json:"qualityChecklist"`
}

type VerificationResult struct {
	VerificationID uint
	Status         string
	SubmittedAt    time.Time
}

// VerificationSubmitted tells admins a food maker is waiting for review.
type VerificationSubmitted struct {
	FoodMakerID  uint
	BusinessName any
	SubmittedBy  string
	SubmittedAt  time.Time
}

func (VerificationSubmitted) Via() []string { return []string{notification.Database} }

func (n VerificationSubmitted) ToDatabase() notification.DatabaseData {
	return notification.DatabaseData{
		Type: "verification_submission",
		Data: map[string]any{
			"type":          "verification_submission",
			"food_maker_id": n.FoodMakerID,
			"business_name": n.BusinessName,
			"submitted_by":  n.SubmittedBy,
			"submitted_at":  n.SubmittedAt.UTC().Format(time.RFC3339Nano),
		},
	}
}

type FoodMakerResolver interface {
	FoodMakerOf(ctx context.Context, userID string) (*models.FoodMaker, error)
}

type VerificationStore interface {
	ForFoodMaker(ctx context.Context, makerID uint) (models.FoodMakerVerification, error)
	Submit(ctx context.Context, v *models.FoodMakerVerification) error
}

type VerificationService struct {
	makers   FoodMakerResolver
	store    VerificationStore
	notifier *notification.Notifier
	now      func() time.Time
}

func NewVerificationService(makers FoodMakerResolver, store VerificationStore, notifier *notification.Notifier) *VerificationService {
	return &VerificationService{makers: makers, store: store, notifier: notifier, now: time.Now}
}

func (s *VerificationService) Submit(ctx context.Context, userID string, in VerificationInput) (VerificationResult, error) {
	if userID == "" {
		return VerificationResult{}, ErrUnauthenticated
	}
	if in.PersonalInfo == nil || in.BusinessDetails == nil || in.DocumentURLs == nil || in.QualityChecklist == nil {
		return VerificationResult{}, ErrVerificationSections
	}
	if !in.PersonalInfo.has("fullName", "phoneNumber", "address") {
		return VerificationResult{}, ErrPersonalInfo
	}
	if !in.BusinessDetails.has("businessName", "businessType", "serviceAreas") {
		return VerificationResult{}, ErrBusinessDetails
	}
	if !in.DocumentURLs.has("identityProof", "addressProof", "businessLicense") {
		return VerificationResult{}, ErrDocumentsMissing
	}
	log := logger.WithCtx(ctx)

	maker, err := s.makers.FoodMakerOf(ctx, userID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return VerificationResult{}, ErrNoFoodMakerProfile
	case err != nil:
		log.Error("verification: food maker lookup failed", "error", err)
		return VerificationResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	case maker == nil:
		return VerificationResult{}, ErrFoodMakerRecord
	}

	existing, err := s.store.ForFoodMaker(ctx, maker.ID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		existing = models.FoodMakerVerification{FoodMakerID: maker.ID}
	case err != nil:
		log.Error("verification: lookup failed", "error", err)
		return VerificationResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	case existing.Status == models.VerificationApproved:
		return VerificationResult{}, ErrAlreadyVerified
	case existing.Status == models.VerificationPending:
		return VerificationResult{}, ErrVerificationInReview
	}

	v := existing
	v.Status = models.VerificationPending
	v.SubmittedAt = s.now().UTC()
	for dst, section := range map[*string]Section{
		&v.PersonalInfo:     in.PersonalInfo,
		&v.BusinessDetails:  in.BusinessDetails,
		&v.DocumentURLs:     in.DocumentURLs,
		&v.QualityChecklist: in.QualityChecklist,
	} {
		raw, err := json.Marshal(section)
		if err != nil {
			return VerificationResult{}, fmt.Errorf("%w: encode section: %v", ErrPersistence, err)
		}
		*dst = string(raw)
	}

	if err := s.store.Submit(ctx, &v); err != nil {
		log.Error("verification: submit failed", "error", err)
		return VerificationResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	log.Info("verification: submitted", "verification_id", v.ID, "food_maker_id", maker.ID)

	if s.notifier != nil {
		note := VerificationSubmitted{
			FoodMakerID:  maker.ID,
			BusinessName: in.BusinessDetails["businessName"],
			SubmittedBy:  userID,
			SubmittedAt:  v.SubmittedAt,
		}
		if err := s.notifier.Send(ctx, note); err != nil {
			log.Warn("verification: admin notification failed", "error", err)
		}
	}

	return VerificationResult{VerificationID: v.ID, Status: v.Status, SubmittedAt: v.SubmittedAt}, nil
}

// has reports whether every key holds a truthy value.
func (s Section) has(keys ...string) bool {
	for _, k := range keys {
		if !truthy(s[k]) {
			return false
		}
	}
	return true
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case float64:
		return x != 0
	default:
		return true
	}
}
