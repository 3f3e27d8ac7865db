package server

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/coral-mesh/qrscan/internal/scan"
)

// Hub fans controller events out to websocket clients. Publish never blocks:
// a client whose queue is full misses the event.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	buffer  int
	dropped atomic.Uint64
	logger  zerolog.Logger
	now     func() time.Time
}

type client struct {
	id   string
	send chan []byte
}

// NewHub creates a hub with per-client queues of the given length.
func NewHub(buffer int, logger zerolog.Logger) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{
		clients: make(map[string]*client),
		buffer:  buffer,
		logger:  logger,
		now:     time.Now,
	}
}

// Publish is a scan.EventHandler.
func (h *Hub) Publish(ev scan.Event) {
	data, err := json.Marshal(scan.NewMessage(ev, h.now()))
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode event")
		return
	}
	h.broadcast(data)
}

func (h *Hub) broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.dropped.Add(1)
			h.logger.Debug().Str("client_id", c.id).Msg("Client queue full, dropping event")
		}
	}
}

func (h *Hub) register() *client {
	c := &client{id: uuid.NewString(), send: make(chan []byte, h.buffer)}

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	h.logger.Debug().Str("client_id", c.id).Msg("Client connected")
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
		h.logger.Debug().Str("client_id", c.id).Msg("Client disconnected")
	}
}

// trySend queues data for one client without blocking.
func (h *Hub) trySend(c *client, data []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.clients[c.id]; !ok {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		h.dropped.Add(1)
		return false
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns how many messages were discarded for slow clients.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// closeAll disconnects every client.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.send)
	}
}
