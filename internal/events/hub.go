package events

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"

	"carrental-backend/internal/logger"
	"carrental-backend/internal/observability"
)

type wsSession struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *wsSession) send(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(v)
}

// Hub pushes invalidations to WebSocket subscribers of a booking channel and
// of the AllBookings channel.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[*wsSession]struct{}
}

func NewHub() *Hub {
	return &Hub{channels: make(map[string]map[*wsSession]struct{})}
}

// Add subscribes conn to channel. The returned func unsubscribes and closes it.
func (h *Hub) Add(channel string, conn *websocket.Conn) func() {
	s := &wsSession{conn: conn}
	h.mu.Lock()
	if h.channels[channel] == nil {
		h.channels[channel] = make(map[*wsSession]struct{})
	}
	h.channels[channel][s] = struct{}{}
	h.mu.Unlock()
	observability.WSSubscribers.Inc()

	var once sync.Once
	return func() {
		once.Do(func() { h.remove(channel, s) })
	}
}

func (h *Hub) remove(channel string, s *wsSession) {
	h.mu.Lock()
	if subs, ok := h.channels[channel]; ok {
		if _, ok := subs[s]; ok {
			delete(subs, s)
			observability.WSSubscribers.Dec()
		}
		if len(subs) == 0 {
			delete(h.channels, channel)
		}
	}
	h.mu.Unlock()
	_ = s.conn.Close()
}

// Subscribers counts the sessions on a channel.
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

func (h *Hub) Publish(_ context.Context, inv Invalidation) error {
	type target struct {
		channel string
		session *wsSession
	}
	var targets []target

	h.mu.RLock()
	for _, ch := range []string{inv.BookingNumber, AllBookings} {
		for s := range h.channels[ch] {
			targets = append(targets, target{channel: ch, session: s})
		}
	}
	h.mu.RUnlock()

	for _, t := range targets {
		if err := t.session.send(inv); err != nil {
			logger.Debug("Dropping websocket subscriber", "channel", t.channel, "error", err)
			h.remove(t.channel, t.session)
		}
	}
	return nil
}
