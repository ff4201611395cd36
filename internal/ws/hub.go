package ws

import (
	"context"
	"sync"

	"github.com/mohitdudhat22/Task-Management-App/internal/domain"
	"github.com/mohitdudhat22/Task-Management-App/internal/logger"
)

// Hub tracks connected clients and fans task events out to the ones in each
// event's audience. Delivery is best effort: a client whose buffer is full
// misses the frame.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	closed  bool
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
	}
}

// Register adds c. It returns false once the hub is closed.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	ConnectedClients.Inc()
	logger.Info("ws client connected", "user_id", c.UserID, "clients", len(h.clients))
	return true
}

// Unregister removes c and closes its send buffer. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.Send)
	ConnectedClients.Dec()
	logger.Info("ws client disconnected", "user_id", c.UserID, "clients", len(h.clients))
}

// Publish implements service.Publisher for a single instance.
func (h *Hub) Publish(_ context.Context, ev domain.Event) error {
	frame, err := EncodeFrame(ev)
	if err != nil {
		return err
	}
	EventsPublished.WithLabelValues(ev.Name).Inc()

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if !ev.Visible(c.UserID) {
			continue
		}
		select {
		case c.Send <- frame:
		default:
			FramesDropped.Inc()
			logger.Warn("ws frame dropped", "user_id", c.UserID, "event", ev.Name)
		}
	}
	return nil
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new registrations.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.Send)
		ConnectedClients.Dec()
	}
}
