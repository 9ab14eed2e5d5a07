package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shashiranjanraj/tiffin/app/models"
	"github.com/shashiranjanraj/tiffin/pkg/logger"
	"github.com/shashiranjanraj/tiffin/pkg/storage"
	"github.com/shashiranjanraj/tiffin/pkg/validate"
)

type ProfileInput struct {
	UserType        string   `json:"userType" validate:"required,in=customer,food_maker,distributor" msg:"required=Valid user type is required;in=Valid user type is required"`
	PhoneNumber     string   `json:"phoneNumber"`
	ProfileImage    string   `json:"profileImage"`
	BusinessName    string   `json:"businessName"`
	Description     string   `json:"description"`
	Speciality      string   `json:"speciality"`
	ServiceAreas    []string `json:"serviceAreas"`
	PreparationTime int      `json:"preparationTime"`
	VehicleType     string   `json:"vehicleType"`
	VehicleNumber   string   `json:"vehicleNumber"`
	LicenseNumber   string   `json:"licenseNumber"`
}

type VehicleInfo struct {
	VehicleType   string `json:"vehicleType"`
	VehicleNumber string `json:"vehicleNumber"`
	LicenseNumber string `json:"licenseNumber"`
}

type ProfileResult struct {
	ProfileID   uint
	UserType    string
	FoodMakerID uint
	VehicleInfo *VehicleInfo
}

type ProfileStore interface {
	Exists(ctx context.Context, userID string) (bool, error)
	Create(ctx context.Context, profile *models.UserProfile, maker *models.FoodMaker) error
}

type ProfileService struct {
	profiles ProfileStore
	disk     storage.Disk
}

func NewProfileService(profiles ProfileStore, disk storage.Disk) *ProfileService {
	return &ProfileService{profiles: profiles, disk: disk}
}

func (s *ProfileService) Setup(ctx context.Context, userID string, in ProfileInput) (ProfileResult, error) {
	if userID == "" {
		return ProfileResult{}, ErrUnauthenticated
	}
	if errs := validate.Struct(in); errs.Has("userType") {
		return ProfileResult{}, fmt.Errorf("%w: %q", ErrInvalidUserType, in.UserType)
	}
	log := logger.WithCtx(ctx)

	var imageURL *string
	if in.ProfileImage != "" {
		url, err := s.upload(ctx, in.ProfileImage)
		if err != nil {
			log.Error("profile: image upload failed", "error", err)
			return ProfileResult{}, fmt.Errorf("%w: %v", ErrImageUpload, err)
		}
		imageURL = &url
	}

	exists, err := s.profiles.Exists(ctx, userID)
	if err != nil {
		log.Error("profile: lookup failed", "error", err)
		return ProfileResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if exists {
		return ProfileResult{}, ErrProfileExists
	}

	profile := &models.UserProfile{
		UserID:       userID,
		UserType:     in.UserType,
		PhoneNumber:  in.PhoneNumber,
		ProfileImage: imageURL,
	}
	var maker *models.FoodMaker
	if in.UserType == models.UserTypeFoodMaker {
		prep := in.PreparationTime
		if prep <= 0 {
			prep = 60
		}
		maker = &models.FoodMaker{
			UserID:          userID,
			BusinessName:    in.BusinessName,
			Description:     in.Description,
			Speciality:      in.Speciality,
			ServiceAreas:    models.JoinAreas(in.ServiceAreas),
			PreparationTime: prep,
		}
	}

	if err := s.profiles.Create(ctx, profile, maker); err != nil {
		log.Error("profile: create failed", "error", err)
		return ProfileResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	log.Info("profile: created", "profile_id", profile.ID, "user_type", in.UserType)

	res := ProfileResult{ProfileID: profile.ID, UserType: in.UserType}
	switch in.UserType {
	case models.UserTypeFoodMaker:
		res.FoodMakerID = maker.ID
	case models.UserTypeDistributor:
		res.VehicleInfo = &VehicleInfo{
			VehicleType:   in.VehicleType,
			VehicleNumber: in.VehicleNumber,
			LicenseNumber: in.LicenseNumber,
		}
	}
	return res, nil
}

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// upload stores a base64 image, optionally in data URL form, under
// profiles/ and returns its public URL.
func (s *ProfileService) upload(ctx context.Context, encoded string) (string, error) {
	if s.disk == nil {
		return "", errors.New("no storage disk configured")
	}

	declared := ""
	if rest, ok := strings.CutPrefix(encoded, "data:"); ok {
		meta, data, found := strings.Cut(rest, ",")
		if !found {
			return "", errors.New("malformed data URL")
		}
		declared, _, _ = strings.Cut(meta, ";")
		encoded = data
	}

	content, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	if len(content) == 0 {
		return "", errors.New("empty image")
	}

	contentType := declared
	if _, ok := imageExtensions[contentType]; !ok {
		contentType = http.DetectContentType(content)
	}
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported image type %q", contentType)
	}

	path := fmt.Sprintf("profiles/%s.%s", uuid.NewString(), ext)
	if err := s.disk.Put(ctx, path, content, contentType); err != nil {
		return "", err
	}
	return s.disk.URL(path), nil
}
