package notification_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shashiranjanraj/tiffin/pkg/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	rows []notification.DatabaseData
	err  error
}

func (m *memStore) StoreNotification(_ context.Context, d notification.DatabaseData) error {
	if m.err != nil {
		return m.err
	}
	m.rows = append(m.rows, d)
	return nil
}

type orderNote struct {
	url string
	via []string
}

func (n orderNote) Via() []string { return n.via }

func (n orderNote) ToDatabase() notification.DatabaseData {
	return notification.DatabaseData{Type: "order_placed", Data: map[string]any{"orderId": 9}}
}

func (n orderNote) ToWebhook() notification.WebhookData {
	return notification.WebhookData{URL: n.url, Event: "order.placed", Payload: map[string]any{"orderId": 9}}
}

type storeOnly struct{}

func (storeOnly) Via() []string { return []string{notification.Webhook} }

func TestDatabaseChannelStoresRow(t *testing.T) {
	store := &memStore{}
	err := notification.New(store).Send(context.Background(), orderNote{via: []string{notification.Database}})
	require.NoError(t, err)
	require.Len(t, store.rows, 1)
	assert.Equal(t, "order_placed", store.rows[0].Type)
}

func TestWebhookChannelPostsJSON(t *testing.T) {
	var body []byte
	var event string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		event = r.Header.Get("X-Tiffin-Event")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	err := notification.New(nil).Send(context.Background(), orderNote{url: srv.URL, via: []string{notification.Webhook}})
	require.NoError(t, err)
	assert.Equal(t, "order.placed", event)

	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, float64(9), got["orderId"])
}

func TestWebhookRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := notification.New(nil).WithRetry(3, time.Millisecond)
	require.NoError(t, n.Send(context.Background(), orderNote{url: srv.URL, via: []string{notification.Webhook}}))
	assert.Equal(t, int32(3), calls.Load())
}

func TestSendJoinsChannelErrors(t *testing.T) {
	store := &memStore{err: errors.New("db down")}
	err := notification.New(store).Send(context.Background(), orderNote{via: []string{notification.Database, "sms"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.Contains(t, err.Error(), `unknown channel "sms"`)
}

func TestUnsupportedChannelForm(t *testing.T) {
	err := notification.New(nil).Send(context.Background(), storeOnly{})
	assert.ErrorContains(t, err, "has no webhook form")
}
