package listeners_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shashiranjanraj/tiffin/app/jobs"
	"github.com/shashiranjanraj/tiffin/app/listeners"
	"github.com/shashiranjanraj/tiffin/app/services"
	"github.com/shashiranjanraj/tiffin/pkg/event"
	"github.com/shashiranjanraj/tiffin/pkg/notification"
	"github.com/shashiranjanraj/tiffin/pkg/queue"
	"github.com/shashiranjanraj/tiffin/pkg/ws"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type webhookCall struct {
	event string
	body  map[string]any
}

func TestOrderPlacedReachesFoodMaker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan webhookCall, 1)
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		calls <- webhookCall{event: r.Header.Get("X-Tiffin-Event"), body: body}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer hook.Close()

	hub := ws.NewHub()
	go hub.Run(ctx)
	wsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws.Upgrade(w, r, hub, jobs.FoodMakerRoom(5))
	}))
	defer wsSrv.Close()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(wsSrv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount(ctx) == 1 }, time.Second, 5*time.Millisecond)

	m := queue.NewManager(queue.NewMemoryDriver(8))
	m.SetRetry(1, nil)
	jobs.Register(m, jobs.Deps{
		Hub:        hub,
		Notifier:   notification.New(nil).WithRetry(1, time.Millisecond),
		WebhookURL: hook.URL,
	})
	go m.Work(ctx, 1) //nolint:errcheck

	bus := event.NewBus()
	listeners.Register(bus, m)
	bus.Fire(ctx, services.EventOrderPlaced, services.OrderPlaced{
		OrderID: 42, CustomerID: "cust-1", FoodMakerID: 5, Total: decimal.RequireFromString("302"), ItemCount: 1,
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var pushed struct {
		Event string                  `json:"event"`
		Order jobs.NotifyFoodMakerJob `json:"order"`
	}
	require.NoError(t, json.Unmarshal(msg, &pushed))
	assert.Equal(t, "order.placed", pushed.Event)
	assert.Equal(t, uint(42), pushed.Order.OrderID)
	assert.Equal(t, "302", pushed.Order.Total)

	select {
	case call := <-calls:
		assert.Equal(t, "order.placed", call.event)
		assert.Equal(t, float64(42), call.body["order_id"])
		assert.Equal(t, float64(5), call.body["food_maker_id"])
	case <-time.After(2 * time.Second):
		t.Fatal("webhook not called")
	}
}

func TestJobWithoutWebhookOnlyPublishes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := ws.NewHub()
	go hub.Run(ctx)

	m := queue.NewManager(queue.NewMemoryDriver(8))
	jobs.Register(m, jobs.Deps{Hub: hub})
	require.NoError(t, m.Dispatch(ctx, &jobs.NotifyFoodMakerJob{OrderID: 1, FoodMakerID: 2}))

	workCtx, stop := context.WithTimeout(ctx, 300*time.Millisecond)
	defer stop()
	require.NoError(t, m.Work(workCtx, 1))
	assert.Empty(t, m.FailedJobs())
}
