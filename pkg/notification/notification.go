// Package notification delivers a notification over every channel it asks
// for. Two channels exist: "database" (a row an admin reads later) and
// "webhook" (a JSON POST with retries).
//
//	type VerificationSubmitted struct{ FoodMakerID uint }
//	func (n VerificationSubmitted) Via() []string { return []string{notification.Database} }
//	func (n VerificationSubmitted) ToDatabase() notification.DatabaseData { ... }
//
//	err := notifier.Send(ctx, VerificationSubmitted{FoodMakerID: 4})
package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	tiffinhttp "github.com/shashiranjanraj/tiffin/pkg/http"
	"github.com/shashiranjanraj/tiffin/pkg/logger"
)

const (
	Database = "database"
	Webhook  = "webhook"
)

type DatabaseData struct {
	Type string
	Data any
}

type WebhookData struct {
	URL     string
	Event   string
	Payload any
	Headers map[string]string
}

type Notification interface {
	Via() []string
}

type Databaseable interface {
	ToDatabase() DatabaseData
}

type Webhookable interface {
	ToWebhook() WebhookData
}

// Store persists database-channel notifications.
type Store interface {
	StoreNotification(ctx context.Context, d DatabaseData) error
}

type Notifier struct {
	store        Store
	attempts     int
	retryBackoff time.Duration
}

func New(store Store) *Notifier {
	return &Notifier{store: store, attempts: 3, retryBackoff: 500 * time.Millisecond}
}

// WithRetry sets the webhook attempts and the first backoff.
func (n *Notifier) WithRetry(attempts int, backoff time.Duration) *Notifier {
	n.attempts, n.retryBackoff = attempts, backoff
	return n
}

// Send tries every channel and joins their errors.
func (n *Notifier) Send(ctx context.Context, note Notification) error {
	var errs []error
	for _, channel := range note.Via() {
		if err := n.dispatch(ctx, channel, note); err != nil {
			logger.WithCtx(ctx).Error("notification: channel failed", "channel", channel, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (n *Notifier) dispatch(ctx context.Context, channel string, note Notification) error {
	switch channel {
	case Database:
		d, ok := note.(Databaseable)
		if !ok {
			return fmt.Errorf("notification: %T cannot be stored", note)
		}
		if n.store == nil {
			return errors.New("notification: no database store configured")
		}
		return n.store.StoreNotification(ctx, d.ToDatabase())

	case Webhook:
		w, ok := note.(Webhookable)
		if !ok {
			return fmt.Errorf("notification: %T has no webhook form", note)
		}
		return n.sendWebhook(ctx, w.ToWebhook())

	default:
		return fmt.Errorf("notification: unknown channel %q", channel)
	}
}

func (n *Notifier) sendWebhook(ctx context.Context, d WebhookData) error {
	if d.URL == "" {
		return errors.New("notification: webhook URL is empty")
	}

	req := tiffinhttp.Post(d.URL).
		WithContext(ctx).
		Body(d.Payload).
		Retry(n.attempts, n.retryBackoff)
	if d.Event != "" {
		req.Header("X-Tiffin-Event", d.Event)
	}
	for k, v := range d.Headers {
		req.Header(k, v)
	}

	resp, err := req.Send()
	if err != nil {
		return fmt.Errorf("notification: webhook: %w", err)
	}
	if err := resp.Throw(); err != nil {
		return fmt.Errorf("notification: webhook: %w", err)
	}
	return nil
}
