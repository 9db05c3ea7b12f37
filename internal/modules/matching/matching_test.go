// README: Candidate pool scoping and rider load tests.
package matching

import (
	"context"
	"errors"
	"testing"
	"time"

	"lani/internal/modules/order"
	"lani/internal/types"
)

func seedOrder(t *testing.T, store *order.MemoryStore, id types.ID, city string, status order.Status, age time.Duration) {
	t.Helper()
	o := &order.Order{
		ID:         id,
		TrackingID: "TRX-" + string(id),
		CustomerID: "cust-1",
		City:       city,
		Status:     status,
		CreatedAt:  time.Now().Add(-age),
	}
	if status != order.StatusPending && status != order.StatusCancelled {
		rider := types.ID("rider-busy")
		o.RiderID = &rider
	}
	if err := store.Create(context.Background(), o); err != nil {
		t.Fatal(err)
	}
}

func TestCandidatesScopedToCity(t *testing.T) {
	store := order.NewMemoryStore()
	seedOrder(t, store, "uyo-1", "Uyo", order.StatusPending, 3*time.Minute)
	seedOrder(t, store, "uyo-2", "Uyo", order.StatusPending, time.Minute)
	seedOrder(t, store, "uyo-3", "Uyo", order.StatusInTransit, 2*time.Minute)
	seedOrder(t, store, "ph-1", "Port Harcourt", order.StatusPending, time.Minute)

	svc := NewService(store, 0)
	pool, err := svc.Candidates(context.Background(), "uyo")
	if err != nil {
		t.Fatal(err)
	}
	if len(pool) != 2 {
		t.Fatalf("pool size = %d, want 2", len(pool))
	}
	for _, o := range pool {
		if o.City != "Uyo" || o.Status != order.StatusPending {
			t.Errorf("pool leaked order %s (%s, %s)", o.ID, o.City, o.Status)
		}
	}
	// Newest first.
	if pool[0].ID != "uyo-2" || pool[1].ID != "uyo-1" {
		t.Errorf("pool order = [%s %s], want newest first", pool[0].ID, pool[1].ID)
	}
}

func TestCandidatesRequireCity(t *testing.T) {
	svc := NewService(order.NewMemoryStore(), 0)
	if _, err := svc.Candidates(context.Background(), "  "); !errors.Is(err, ErrNoCity) {
		t.Fatalf("got %v, want ErrNoCity", err)
	}
}

func TestRiderLoad(t *testing.T) {
	store := order.NewMemoryStore()
	seedOrder(t, store, "a", "Uyo", order.StatusInTransit, time.Minute)
	seedOrder(t, store, "b", "Uyo", order.StatusInTransit, 2*time.Minute)
	seedOrder(t, store, "c", "Uyo", order.StatusDelivered, 3*time.Minute)

	svc := NewService(store, order.MaxActiveOrders)

	load, err := svc.Load(context.Background(), "rider-busy")
	if err != nil {
		t.Fatal(err)
	}
	if load.Active != 2 || !load.Busy {
		t.Errorf("load = %+v, want 2 active and busy", load)
	}

	load, err = svc.Load(context.Background(), "rider-idle")
	if err != nil {
		t.Fatal(err)
	}
	if load.Active != 0 || load.Busy {
		t.Errorf("load = %+v, want idle", load)
	}
}
