package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shashiranjanraj/tiffin/app/models"
	"github.com/shashiranjanraj/tiffin/app/repositories"
	"github.com/shashiranjanraj/tiffin/app/services"
	"github.com/shashiranjanraj/tiffin/pkg/testkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnreadNotificationsKeepsDataAsJSON(t *testing.T) {
	db := testkit.NewDB(t, models.All()...)
	require.NoError(t, db.Create(&models.AdminNotification{Type: "verification_submission", Data: `{"food_maker_id":3}`}).Error)
	require.NoError(t, db.Create(&models.AdminNotification{Type: "legacy", Data: "plain text"}).Error)

	views, err := services.NewAdminService(repositories.NewNotificationRepository(db)).UnreadNotifications(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "legacy", views[0].Type)
	assert.JSONEq(t, `"plain text"`, string(views[0].Data))
	assert.JSONEq(t, `{"food_maker_id":3}`, string(views[1].Data))
}

func TestPurgeIdempotencyKeysTask(t *testing.T) {
	db := testkit.NewDB(t, models.All()...)
	require.NoError(t, db.Create(&models.OrderIdempotencyKey{
		CustomerID: "c", Key: "stale", OrderID: 1, CreatedAt: time.Now().Add(-25 * time.Hour),
	}).Error)
	require.NoError(t, db.Create(&models.OrderIdempotencyKey{CustomerID: "c", Key: "fresh", OrderID: 2}).Error)

	task := services.PurgeIdempotencyKeys(repositories.NewIdempotencyRepository(db), 24*time.Hour)
	require.NoError(t, task(context.Background()))

	var keys []string
	require.NoError(t, db.Model(&models.OrderIdempotencyKey{}).Pluck("idempotency_key", &keys).Error)
	assert.Equal(t, []string{"fresh"}, keys)
}
