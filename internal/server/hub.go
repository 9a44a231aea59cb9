package server

import (
	"errors"
	"sync"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/lox/millebornes/internal/protocol"
)

// Hub tracks live connections by id and fans outbound events out to them.
// It is the session directory's Notifier.
type Hub struct {
	mu     sync.RWMutex
	conns  map[string]*Connection
	clock  quartz.Clock
	logger zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger zerolog.Logger, clock quartz.Clock) *Hub {
	return &Hub{
		conns:  make(map[string]*Connection),
		clock:  clock,
		logger: logger.With().Str("component", "hub").Logger(),
	}
}

// Register adds c to the hub.
func (h *Hub) Register(c *Connection) {
	h.mu.Lock()
	h.conns[c.ID()] = c
	total := len(h.conns)
	h.mu.Unlock()
	h.logger.Info().Str("conn_id", c.ID()).Int("total", total).Msg("Client connected")
}

// Unregister removes c. It reports whether c was still registered.
func (h *Hub) Unregister(c *Connection) bool {
	h.mu.Lock()
	_, ok := h.conns[c.ID()]
	if ok {
		delete(h.conns, c.ID())
	}
	total := len(h.conns)
	h.mu.Unlock()
	if ok {
		h.logger.Info().Str("conn_id", c.ID()).Int("total", total).Msg("Client disconnected")
	}
	return ok
}

// Len returns the number of registered connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Send encodes the event once and queues it on every listed connection that
// is still registered. It never blocks: a connection whose buffer is full is
// closed, which in turn disconnects it from its rooms.
func (h *Hub) Send(connIDs []string, event protocol.Event, payload any) {
	frame, err := protocol.Encode(event, payload, h.clock.Now())
	if err != nil {
		h.logger.Error().Err(err).Str("event", string(event)).Msg("Failed to encode event")
		return
	}

	h.mu.RLock()
	targets := make([]*Connection, 0, len(connIDs))
	for _, id := range connIDs {
		if c, ok := h.conns[id]; ok {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.Enqueue(frame); err != nil {
			h.logger.Warn().Err(err).Str("conn_id", c.ID()).Str("event", string(event)).Msg("Dropped outbound event")
			if errors.Is(err, ErrSendBufferFull) {
				_ = c.Close()
			}
		}
	}
	h.logger.Debug().Str("event", string(event)).Int("recipients", len(targets)).Msg("Broadcast event")
}

// CloseAll closes every registered connection.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	conns := make([]*Connection, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		_ = c.Close()
	}
}
