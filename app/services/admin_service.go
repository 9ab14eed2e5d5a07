package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shashiranjanraj/tiffin/app/models"
	"github.com/shashiranjanraj/tiffin/pkg/logger"
)

const adminNotificationLimit = 50

type AdminNotificationView struct {
	ID        uint            `json:"id"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	IsRead    bool            `json:"is_read"`
	CreatedAt time.Time       `json:"created_at"`
}

type UnreadLister interface {
	Unread(ctx context.Context, limit int) ([]models.AdminNotification, error)
}

type AdminService struct {
	notifications UnreadLister
}

func NewAdminService(notifications UnreadLister) *AdminService {
	return &AdminService{notifications: notifications}
}

// UnreadNotifications returns the newest unread admin notifications.
func (s *AdminService) UnreadNotifications(ctx context.Context) ([]AdminNotificationView, error) {
	rows, err := s.notifications.Unread(ctx, adminNotificationLimit)
	if err != nil {
		logger.WithCtx(ctx).Error("admin: notifications failed", "error", err)
		return nil, err
	}
	out := make([]AdminNotificationView, len(rows))
	for i, r := range rows {
		data := json.RawMessage(r.Data)
		if !json.Valid(data) {
			data, _ = json.Marshal(r.Data)
		}
		out[i] = AdminNotificationView{ID: r.ID, Type: r.Type, Data: data, IsRead: r.IsRead, CreatedAt: r.CreatedAt}
	}
	return out, nil
}
