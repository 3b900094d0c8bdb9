// Package ws streams completed scan cycles to WebSocket clients.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/predmarkets/arbscan/internal/domain"
)

const (
	// writeWait is the maximum time to wait for a write to complete.
	writeWait = 10 * time.Second

	// pongWait is the maximum time to wait for a pong from the client.
	pongWait = 60 * time.Second

	// pingPeriod must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// sendBufferSize is the per-client outgoing message buffer.
	sendBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS policy is enforced at the HTTP layer.
		return true
	},
}

// client is one WebSocket connection.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans completed cycles out to connected clients. It implements
// domain.CyclePublisher, so the scanner treats it like any other sink. A
// newly connected client immediately receives the latest cycle.
type Hub struct {
	log     *slog.Logger
	mu      sync.RWMutex
	clients map[*client]bool
	latest  []byte
}

// NewHub creates a Hub.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log:     log.With("component", "ws"),
		clients: make(map[*client]bool),
	}
}

// PublishCycle broadcasts the cycle to every connected client. A client too
// slow to drain its buffer is dropped.
func (h *Hub) PublishCycle(_ context.Context, result domain.CycleResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("ws: marshal cycle %s: %w", result.Diagnostics.CycleID, err)
	}

	h.mu.Lock()
	h.latest = data
	var stale []*client
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			stale = append(stale, c)
		}
	}
	for _, c := range stale {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()

	if len(stale) > 0 {
		h.log.Warn("dropped slow websocket clients", "count", len(stale))
	}
	return nil
}

// HandleWS upgrades the connection and starts the client pumps.
// GET /ws
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBufferSize)}

	h.mu.Lock()
	h.clients[c] = true
	if h.latest != nil {
		c.send <- h.latest
	}
	h.mu.Unlock()

	go h.writePump(c)
	go h.readPump(c)
}

// writePump delivers queued messages and keepalive pings.
func (h *Hub) writePump(c *client) {
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

// readPump discards client messages and enforces the pong deadline. The
// stream is one-way; reading only detects disconnects.
func (h *Hub) readPump(c *client) {
	defer h.drop(c)

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// drop unregisters and closes a client.
func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	c.conn.Close()
}
