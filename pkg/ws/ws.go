// Package ws pushes server events to WebSocket clients grouped in rooms.
// Food makers join the room of their own id and receive order.placed
// messages as orders arrive.
//
//	hub := ws.NewHub()
//	go hub.Run(ctx)
//	ws.Upgrade(w, r, hub, "food-maker:12")
//	hub.Publish("food-maker:12", payload)
package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shashiranjanraj/tiffin/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SetCheckOrigin replaces the allow-all origin check.
func SetCheckOrigin(fn func(r *http.Request) bool) {
	upgrader.CheckOrigin = fn
}

type Client struct {
	hub  *Hub
	room string
	conn *websocket.Conn
	send chan []byte
}

// readPump only services control frames; clients do not send data.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("ws: unexpected close", "room", c.room, "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type envelope struct {
	room string
	data []byte
}

// Hub owns every connection. All room state is touched only by Run.
type Hub struct {
	rooms      map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	publish    chan envelope
	count      chan chan int
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		publish:    make(chan envelope, 256),
		count:      make(chan chan int),
		done:       make(chan struct{}),
	}
}

// Run processes hub events until ctx ends, then closes every client. Run
// must be called at most once.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for _, clients := range h.rooms {
				for c := range clients {
					close(c.send)
				}
			}
			h.rooms = map[string]map[*Client]struct{}{}
			return

		case c := <-h.register:
			if h.rooms[c.room] == nil {
				h.rooms[c.room] = make(map[*Client]struct{})
			}
			h.rooms[c.room][c] = struct{}{}
			logger.Debug("ws: client joined", "room", c.room, "members", len(h.rooms[c.room]))

		case c := <-h.unregister:
			h.remove(c)

		case msg := <-h.publish:
			for c := range h.rooms[msg.room] {
				select {
				case c.send <- msg.data:
				default:
					logger.Warn("ws: slow client dropped", "room", msg.room)
					h.remove(c)
				}
			}

		case reply := <-h.count:
			n := 0
			for _, clients := range h.rooms {
				n += len(clients)
			}
			reply <- n
		}
	}
}

func (h *Hub) remove(c *Client) {
	clients, ok := h.rooms[c.room]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.rooms, c.room)
	}
}

// Publish queues data for every client in room. It never blocks; when the
// hub is backed up the message is dropped and false is returned.
func (h *Hub) Publish(room string, data []byte) bool {
	select {
	case h.publish <- envelope{room: room, data: data}:
		return true
	default:
		logger.Warn("ws: publish buffer full, dropping", "room", room)
		return false
	}
}

// ClientCount asks the running hub for its connection count.
func (h *Hub) ClientCount(ctx context.Context) int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
	case <-ctx.Done():
		return 0
	case <-h.done:
		return 0
	}
	select {
	case n := <-reply:
		return n
	case <-ctx.Done():
		return 0
	}
}

// Upgrade switches the connection to WebSocket and joins room.
func Upgrade(w http.ResponseWriter, r *http.Request, hub *Hub, room string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WithCtx(r.Context()).Warn("ws: upgrade failed", "error", err)
		return
	}
	c := &Client{hub: hub, room: room, conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case hub.register <- c:
	case <-hub.done:
		conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}
