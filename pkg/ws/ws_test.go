package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Upgrade(w, r, hub, r.URL.Query().Get("room"))
	}))
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, room string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?room=" + room
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestPublishReachesOnlyRoomMembers(t *testing.T) {
	hub, srv := startHub(t)
	maker1 := dial(t, srv, "food-maker:1")
	maker2 := dial(t, srv, "food-maker:2")

	require.Eventually(t, func() bool { return hub.ClientCount(context.Background()) == 2 }, time.Second, 5*time.Millisecond)
	require.True(t, hub.Publish("food-maker:1", []byte(`{"event":"order.placed","orderId":7}`)))

	maker1.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := maker1.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"order.placed","orderId":7}`, string(msg))

	maker2.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = maker2.ReadMessage()
	assert.Error(t, err)
}

func TestDisconnectedClientIsRemoved(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, "food-maker:3")
	require.Eventually(t, func() bool { return hub.ClientCount(context.Background()) == 1 }, time.Second, 5*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount(context.Background()) == 0 }, time.Second, 5*time.Millisecond)
}
