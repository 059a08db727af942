// Package ws pushes domain events to connected browsers over websockets.
// A user may hold several connections (multiple tabs); each one gets
// every event addressed to that user.
package ws

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nexoapp/nexo/internal/events"
)

type connection struct {
	conn   *websocket.Conn
	userID int64

	mu sync.Mutex // guards concurrent writes to conn
}

func (c *connection) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub tracks live connections per user and implements events.Publisher.
type Hub struct {
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	conns map[int64]map[*connection]struct{}
}

func NewHub(log *slog.Logger, checkOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		conns: make(map[int64]map[*connection]struct{}),
	}
}

// Serve upgrades the request and keeps the connection registered until the
// peer goes away. The caller has already authenticated userID.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID int64) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "user_id", userID, "error", err)
		return
	}

	c := &connection{conn: conn, userID: userID}
	h.add(c)
	defer h.remove(c)

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	})

	// Drain the read side so close frames and pongs are processed.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Publish sends the event to every open connection of the addressed user.
// Users with no connection are skipped silently.
func (h *Hub) Publish(event events.Event) error {
	h.mu.RLock()
	targets := make([]*connection, 0, len(h.conns[event.UserID]))
	for c := range h.conns[event.UserID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.writeJSON(event); err != nil {
			h.log.Warn("websocket push failed", "user_id", event.UserID, "error", err)
			h.remove(c)
		}
	}
	return nil
}

// Ping keeps connections alive and prunes dead peers. Run it in its own
// goroutine; it never returns.
func (h *Hub) Ping(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		h.mu.RLock()
		var all []*connection
		for _, conns := range h.conns {
			for c := range conns {
				all = append(all, c)
			}
		}
		h.mu.RUnlock()

		for _, c := range all {
			c.mu.Lock()
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second))
			c.mu.Unlock()
			if err != nil {
				h.remove(c)
			}
		}
	}
}

func (h *Hub) add(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[c.userID] == nil {
		h.conns[c.userID] = make(map[*connection]struct{})
	}
	h.conns[c.userID][c] = struct{}{}
	h.log.Debug("websocket connected", "user_id", c.userID, "connections", len(h.conns[c.userID]))
}

func (h *Hub) remove(c *connection) {
	h.mu.Lock()
	if conns, ok := h.conns[c.userID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.conns, c.userID)
		}
	}
	h.mu.Unlock()
	_ = c.conn.Close()
}
