package services_test

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shashiranjanraj/tiffin/app/models"
	"github.com/shashiranjanraj/tiffin/app/repositories"
	"github.com/shashiranjanraj/tiffin/app/services"
	"github.com/shashiranjanraj/tiffin/pkg/storage"
	"github.com/shashiranjanraj/tiffin/pkg/testkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type brokenDisk struct{ storage.Disk }

func (brokenDisk) Put(context.Context, string, []byte, string) error {
	return errors.New("bucket unreachable")
}

func newProfileService(t *testing.T, disk storage.Disk) (*services.ProfileService, *gorm.DB) {
	t.Helper()
	db := testkit.NewDB(t, models.All()...)
	return services.NewProfileService(repositories.NewProfileRepository(db), disk), db
}

func TestSetupFoodMakerProfile(t *testing.T) {
	root := t.TempDir()
	disk, err := storage.NewLocalDisk(root, "http://cdn.test")
	require.NoError(t, err)
	svc, db := newProfileService(t, disk)

	res, err := svc.Setup(context.Background(), "u-1", services.ProfileInput{
		UserType:     models.UserTypeFoodMaker,
		PhoneNumber:  "9876543210",
		ProfileImage: "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes),
		BusinessName: "Asha's Kitchen",
		ServiceAreas: []string{"560001", " 560002 "},
	})
	require.NoError(t, err)
	assert.NotZero(t, res.ProfileID)
	assert.NotZero(t, res.FoodMakerID)
	assert.Nil(t, res.VehicleInfo)

	var maker models.FoodMaker
	require.NoError(t, db.First(&maker, res.FoodMakerID).Error)
	assert.Equal(t, 60, maker.PreparationTime)
	assert.Equal(t, []string{"560001", "560002"}, maker.Areas())

	var profile models.UserProfile
	require.NoError(t, db.First(&profile, res.ProfileID).Error)
	require.NotNil(t, profile.ProfileImage)
	assert.True(t, strings.HasPrefix(*profile.ProfileImage, "http://cdn.test/profiles/"))
	assert.True(t, strings.HasSuffix(*profile.ProfileImage, ".png"))

	stored, err := os.ReadFile(filepath.Join(root, strings.TrimPrefix(*profile.ProfileImage, "http://cdn.test/")))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, stored)

	_, err = svc.Setup(context.Background(), "u-1", services.ProfileInput{UserType: models.UserTypeCustomer})
	assert.ErrorIs(t, err, services.ErrProfileExists)
}

func TestSetupDistributorEchoesVehicle(t *testing.T) {
	svc, _ := newProfileService(t, nil)

	res, err := svc.Setup(context.Background(), "u-2", services.ProfileInput{
		UserType: models.UserTypeDistributor, VehicleType: "bike", VehicleNumber: "KA01AB1234", LicenseNumber: "DL-42",
	})
	require.NoError(t, err)
	require.NotNil(t, res.VehicleInfo)
	assert.Equal(t, "KA01AB1234", res.VehicleInfo.VehicleNumber)
	assert.Zero(t, res.FoodMakerID)
}

func TestSetupRejections(t *testing.T) {
	svc, db := newProfileService(t, brokenDisk{})

	_, err := svc.Setup(context.Background(), "", services.ProfileInput{UserType: models.UserTypeCustomer})
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	_, err = svc.Setup(context.Background(), "u-1", services.ProfileInput{UserType: "admin"})
	assert.ErrorIs(t, err, services.ErrInvalidUserType)
	_, err = svc.Setup(context.Background(), "u-1", services.ProfileInput{})
	assert.ErrorIs(t, err, services.ErrInvalidUserType)

	_, err = svc.Setup(context.Background(), "u-1", services.ProfileInput{
		UserType: models.UserTypeCustomer, ProfileImage: base64.StdEncoding.EncodeToString(pngBytes),
	})
	assert.ErrorIs(t, err, services.ErrImageUpload)

	_, err = svc.Setup(context.Background(), "u-1", services.ProfileInput{
		UserType: models.UserTypeCustomer, ProfileImage: "%%%not-base64",
	})
	assert.ErrorIs(t, err, services.ErrImageUpload)

	var n int64
	require.NoError(t, db.Model(&models.UserProfile{}).Count(&n).Error)
	assert.Zero(t, n)
}
