package notification

import (
	"context"
	"sort"
	"sync"

	"lani/internal/types"
)

// MemoryStore keeps notifications in a map; used when no database is wired
// and in tests.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[types.ID]*Notification
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[types.ID]*Notification)}
}

func (m *MemoryStore) Create(_ context.Context, n *Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *n
	m.docs[n.ID] = &cp
	return nil
}

func (m *MemoryStore) ListByUser(_ context.Context, userID types.ID) ([]*Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Notification
	for _, n := range m.docs {
		if n.UserID == userID {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) CountUnread(_ context.Context, userID types.ID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, n := range m.docs {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) MarkRead(_ context.Context, id, userID types.ID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.docs[id]
	if !ok || n.UserID != userID {
		return false, nil
	}
	n.Read = true
	return true, nil
}

func (m *MemoryStore) MarkAllRead(_ context.Context, userID types.ID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.docs {
		if n.UserID == userID && !n.Read {
			n.Read = true
			count++
		}
	}
	return count, nil
}
