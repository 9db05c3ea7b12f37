// README: WebSocket hub; forwards bus events to connected clients per topic.
package realtime

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

type session struct {
	conn   *websocket.Conn
	topics map[string]bool
	mu     sync.Mutex
}

func (s *session) send(topic string, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(map[string]any{"topic": topic, "events": e.Events, "payload": e.Payload})
}

// Hub bridges the Bus to WebSocket clients. Each client subscribes to a set
// of topics at connect time and receives every event on those topics; the
// client re-queries over HTTP in response, mirroring the bus contract.
type Hub struct {
	log      *slog.Logger
	mu       sync.RWMutex
	sessions map[*session]bool
	cancels  []func()
}

func NewHub(bus Bus, log *slog.Logger, topics ...string) (*Hub, error) {
	h := &Hub{log: log, sessions: make(map[*session]bool)}
	for _, topic := range topics {
		t := topic
		cancel, err := bus.Subscribe(t, func(e Event) { h.broadcast(t, e) })
		if err != nil {
			h.Close()
			return nil, err
		}
		h.cancels = append(h.cancels, cancel)
	}
	return h, nil
}

// Add registers a connection and blocks reading it until the peer goes away,
// then tears the session down.
func (h *Hub) Add(conn *websocket.Conn, topics []string) {
	s := &session{conn: conn, topics: make(map[string]bool, len(topics))}
	for _, t := range topics {
		s.topics[t] = true
	}
	h.mu.Lock()
	h.sessions[s] = true
	h.mu.Unlock()

	// Clients never send anything meaningful; the read loop only detects close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.sessions, s)
	h.mu.Unlock()
	_ = conn.Close()
}

func (h *Hub) broadcast(topic string, e Event) {
	h.mu.RLock()
	targets := make([]*session, 0, len(h.sessions))
	for s := range h.sessions {
		if s.topics[topic] {
			targets = append(targets, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range targets {
		if err := s.send(topic, e); err != nil {
			h.log.Debug("realtime: ws send failed", "topic", topic, "error", err)
		}
	}
}

func (h *Hub) Close() {
	for _, cancel := range h.cancels {
		cancel()
	}
	h.mu.Lock()
	for s := range h.sessions {
		_ = s.conn.Close()
	}
	h.sessions = make(map[*session]bool)
	h.mu.Unlock()
}
