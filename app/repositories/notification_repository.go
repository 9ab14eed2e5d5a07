package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shashiranjanraj/tiffin/app/models"
	"github.com/shashiranjanraj/tiffin/pkg/notification"
	"github.com/shashiranjanraj/tiffin/pkg/orm"
	"gorm.io/gorm"
)

// NotificationRepository backs the database notification channel with the
// admin_notifications table.
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) StoreNotification(ctx context.Context, d notification.DatabaseData) error {
	data, err := json.Marshal(d.Data)
	if err != nil {
		return fmt.Errorf("notification repository: encode %s: %w", d.Type, err)
	}
	row := models.AdminNotification{Type: d.Type, Data: string(data)}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("notification repository: insert: %w", err)
	}
	return nil
}

// Unread lists unread notifications, newest first.
func (r *NotificationRepository) Unread(ctx context.Context, limit int) ([]models.AdminNotification, error) {
	rows := []models.AdminNotification{}
	err := orm.Use(r.db).WithContext(ctx).
		Where("is_read = ?", false).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Get(&rows)
	if err != nil {
		return nil, fmt.Errorf("notification repository: unread: %w", err)
	}
	return rows, nil
}
