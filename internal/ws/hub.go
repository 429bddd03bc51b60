// Package ws pushes job updates to websocket subscribers.
package ws

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"doc-llm-pipeline/internal/jobs"
)

const (
	writeTimeout = 5 * time.Second
	sendBuffer   = 16
)

// envelope is the wire shape of one push message.
type envelope struct {
	Event string `json:"event"`
	jobs.Update
}

// client pairs a connection with its outbound queue. All writes happen on
// the client's own writer goroutine so a slow peer never blocks the hub.
type client struct {
	conn *websocket.Conn
	send chan envelope
}

// Hub fans job updates out to connected clients. Delivery is fire-and-forget:
// a client that errors, stalls, or falls behind is dropped and never surfaces
// to the coordinator.
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			// the API is open to any origin, the push channel follows
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Handle upgrades an HTTP request and registers the connection until the
// peer goes away.
func (h *Hub) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws.upgrade_failed", "error", err)
		return
	}
	c := &client{conn: conn, send: make(chan envelope, sendBuffer)}
	h.add(c)
	h.logger.Info("ws.client_connected", "remote", conn.RemoteAddr().String())

	go h.writeLoop(c)
	go h.readLoop(c)
}

// Publish implements jobs.Publisher. It only queues: a client whose buffer
// is full is dropped on the spot rather than waited on.
func (h *Hub) Publish(update jobs.Update) {
	msg := envelope{Event: "job_update", Update: update}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("ws.client_stalled", "remote", c.conn.RemoteAddr().String())
			h.dropLocked(c)
		}
	}
}

// ClientCount returns the number of registered connections.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// writeLoop drains the client's queue onto the wire. Each write carries a
// deadline so a peer that stops reading cannot hold the goroutine forever.
func (h *Hub) writeLoop(c *client) {
	defer h.drop(c)
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteJSON(msg); err != nil {
			h.logger.Warn("ws.write_failed", "remote", c.conn.RemoteAddr().String(), "error", err)
			return
		}
	}
}

// readLoop only detects disconnect; inbound frames are discarded.
func (h *Hub) readLoop(c *client) {
	defer h.drop(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.logger.Info("ws.client_disconnected", "remote", c.conn.RemoteAddr().String())
			return
		}
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

// dropLocked unregisters, closes the queue to stop the writer, and closes
// the connection. Caller holds h.mu; closing send only here keeps Publish
// from ever racing a send on a closed channel.
func (h *Hub) dropLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	_ = c.conn.Close()
}
