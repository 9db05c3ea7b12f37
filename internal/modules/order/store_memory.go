// README: In-memory order store, used in tests and when no database is configured.
package order

import (
	"context"
	"sort"
	"strings"
	"sync"

	"lani/internal/types"
)

type MemoryStore struct {
	mu     sync.Mutex
	orders map[types.ID]*Order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{orders: map[types.ID]*Order{}}
}

func (s *MemoryStore) Create(ctx context.Context, o *Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.orders {
		if existing.TrackingID == o.TrackingID {
			return ErrConflict
		}
	}
	cp := *o
	s.orders[o.ID] = &cp
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id types.ID) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *MemoryStore) GetByTracking(ctx context.Context, trackingID string) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.TrackingID == trackingID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListByActor(ctx context.Context, actorID types.ID) ([]*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Order
	for _, o := range s.orders {
		if o.CustomerID == actorID || (o.RiderID != nil && *o.RiderID == actorID) {
			cp := *o
			out = append(out, &cp)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *MemoryStore) ListPendingByCity(ctx context.Context, city string) ([]*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Order
	for _, o := range s.orders {
		if o.Status == StatusPending && strings.EqualFold(o.City, city) {
			cp := *o
			out = append(out, &cp)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *MemoryStore) ListAll(ctx context.Context) ([]*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Order, 0, len(s.orders))
	for _, o := range s.orders {
		cp := *o
		out = append(out, &cp)
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *MemoryStore) CountActiveByRider(ctx context.Context, riderID types.ID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLocked(riderID), nil
}

func (s *MemoryStore) activeLocked(riderID types.ID) int {
	n := 0
	for _, o := range s.orders {
		if o.RiderID != nil && *o.RiderID == riderID && o.Status == StatusInTransit {
			n++
		}
	}
	return n
}

// AcceptPending mirrors the Postgres conditional update: both the pending
// check and the capacity count happen under the same lock as the write.
func (s *MemoryStore) AcceptPending(ctx context.Context, id types.ID, riderID types.ID, rider Contact, maxActive int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return false, ErrNotFound
	}
	if o.Status != StatusPending {
		return false, nil
	}
	if s.activeLocked(riderID) >= maxActive {
		return false, nil
	}
	o.Status = StatusInTransit
	o.RiderID = &riderID
	o.Rider = rider
	return true, nil
}

func (s *MemoryStore) UpdateStatus(ctx context.Context, id types.ID, from, to Status) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return false, ErrNotFound
	}
	if o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (s *MemoryStore) SetPaymentSettled(ctx context.Context, id types.ID, settled bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return false, ErrNotFound
	}
	o.PaymentSettled = settled
	return true, nil
}

func (s *MemoryStore) Stats(ctx context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := Stats{ByStatus: map[Status]int{}}
	for _, o := range s.orders {
		stats.Total++
		stats.ByStatus[o.Status]++
		if o.Status == StatusDelivered {
			stats.Revenue += o.Fare
		}
	}
	return stats, nil
}

func sortNewestFirst(orders []*Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
