// README: Lifecycle, capacity and payment-gate tests over the in-memory store.
package order

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"lani/internal/modules/pricing"
	"lani/internal/realtime"
	"lani/internal/types"
)

type countingNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (n *countingNotifier) Send(_ context.Context, target types.ID, _, title, _, _, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, fmt.Sprintf("%s:%s", target, title))
	return nil
}

func (n *countingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type stubFiles struct{}

func (stubFiles) Upload(_ context.Context, name string, _ []byte, _ string) (string, error) {
	return "gs://test/" + name, nil
}

type nopMailer struct{}

func (nopMailer) Send(_, _, _ string) {}

func newTestService(t *testing.T) (*Service, *MemoryStore, *countingNotifier) {
	t.Helper()
	store := NewMemoryStore()
	notifier := &countingNotifier{}
	svc := NewService(ServiceDeps{
		Store:    store,
		Pricing:  pricing.NewService(pricing.NewStaticStore()),
		Files:    stubFiles{},
		Notifier: notifier,
		Mailer:   nopMailer{},
		Bus:      realtime.NewMemoryBus(),
	})
	return svc, store, notifier
}

func validCreate(customer types.ID) CreateCommand {
	return CreateCommand{
		CustomerID:  customer,
		Sender:      Contact{Name: "Ada", Phone: "0801"},
		SenderEmail: "ada@example.com",
		City:        "Uyo",
		Pickup:      Location{Address: "12 Oron Rd", Position: types.Point{Lat: 5.0, Lng: 7.9}},
		Delivery:    Location{Address: "3 Aka Rd", Position: types.Point{Lat: 5.05, Lng: 7.95}},
		Package:     PackageInput{Name: "Documents", Photo: []byte{0x1}, ContentType: "image/jpeg"},
		Receiver:    Contact{Name: "Bassey", Phone: "0802"},
		Mode:        PickupImmediate,
		PaymentBy:   PaySender,
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusInTransit, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusDelivered, false},
		{StatusInTransit, StatusDelivered, true},
		{StatusInTransit, StatusCancelled, false},
		{StatusInTransit, StatusPending, false},
		{StatusDelivered, StatusInTransit, false},
		{StatusCancelled, StatusInTransit, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	t.Run("photo required", func(t *testing.T) {
		cmd := validCreate("cust-1")
		cmd.Package.Photo = nil
		if _, err := svc.Create(ctx, cmd); !errors.Is(err, ErrPhotoRequired) {
			t.Fatalf("got %v, want ErrPhotoRequired", err)
		}
	})

	t.Run("addresses required", func(t *testing.T) {
		cmd := validCreate("cust-1")
		cmd.Delivery.Address = "  "
		if _, err := svc.Create(ctx, cmd); !errors.Is(err, ErrBadRequest) {
			t.Fatalf("got %v, want ErrBadRequest", err)
		}
	})

	t.Run("scheduled pickup must be in the future", func(t *testing.T) {
		cmd := validCreate("cust-1")
		cmd.Mode = PickupScheduled
		past := time.Now().Add(-time.Hour)
		cmd.ScheduledAt = &past
		if _, err := svc.Create(ctx, cmd); !errors.Is(err, ErrBadRequest) {
			t.Fatalf("got %v, want ErrBadRequest", err)
		}
	})
}

func TestCreateSettlesSenderPayment(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, validCreate("cust-1"))
	if err != nil {
		t.Fatal(err)
	}
	if !o.PaymentSettled {
		t.Error("sender-paid order should be settled at creation")
	}
	if o.Status != StatusPending {
		t.Errorf("status = %s, want pending", o.Status)
	}
	if o.TrackingID == "" || o.Package.PhotoRef == "" {
		t.Error("tracking code and photo ref must be set")
	}

	cmd := validCreate("cust-1")
	cmd.PaymentBy = PayReceiver
	o, err = svc.Create(ctx, cmd)
	if err != nil {
		t.Fatal(err)
	}
	if o.PaymentSettled {
		t.Error("receiver-paid order must start unsettled")
	}
}

func accept(t *testing.T, svc *Service, orderID, riderID types.ID) *Order {
	t.Helper()
	o, err := svc.Accept(context.Background(), AcceptCommand{
		OrderID: orderID,
		RiderID: riderID,
		Rider:   Contact{Name: "Rider " + string(riderID), Phone: "0900"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return o
}

func TestAcceptAssignsRiderSnapshot(t *testing.T) {
	svc, _, _ := newTestService(t)
	created, err := svc.Create(context.Background(), validCreate("cust-1"))
	if err != nil {
		t.Fatal(err)
	}

	o := accept(t, svc, created.ID, "rider-1")
	if o.Status != StatusInTransit {
		t.Errorf("status = %s, want in-transit", o.Status)
	}
	if o.RiderID == nil || *o.RiderID != "rider-1" {
		t.Fatal("rider not assigned")
	}
	if o.Rider.Name == "" || o.Rider.Phone == "" {
		t.Error("rider contact snapshot missing")
	}
}

func TestAcceptCapacityCap(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < MaxActiveOrders; i++ {
		o, err := svc.Create(ctx, validCreate("cust-1"))
		if err != nil {
			t.Fatal(err)
		}
		accept(t, svc, o.ID, "rider-1")
	}

	third, err := svc.Create(ctx, validCreate("cust-1"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Accept(ctx, AcceptCommand{OrderID: third.ID, RiderID: "rider-1", Rider: Contact{Name: "R", Phone: "0900"}}); !errors.Is(err, ErrCapacity) {
		t.Fatalf("got %v, want ErrCapacity", err)
	}

	// A different rider is unaffected by the first rider's load.
	accept(t, svc, third.ID, "rider-2")

	// Delivering one frees a slot.
	mine, err := svc.ListByActor(ctx, "rider-1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Complete(ctx, CompleteCommand{
		OrderID: mine[0].ID,
		RiderID: "rider-1",
		Checklist: Checklist{
			HandedToRecipient: true, ConditionConfirmed: true, LocationConfirmed: true,
		},
	}); err != nil {
		t.Fatal(err)
	}
	fourth, err := svc.Create(ctx, validCreate("cust-1"))
	if err != nil {
		t.Fatal(err)
	}
	accept(t, svc, fourth.ID, "rider-1")
}

func TestConcurrentAcceptSingleWinner(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, validCreate("cust-1"))
	if err != nil {
		t.Fatal(err)
	}

	const riders = 8
	var wg sync.WaitGroup
	errs := make([]error, riders)
	for i := 0; i < riders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Accept(ctx, AcceptCommand{
				OrderID: o.ID,
				RiderID: types.ID(fmt.Sprintf("rider-%d", i)),
				Rider:   Contact{Name: "R", Phone: "0900"},
			})
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else if !errors.Is(err, ErrConflict) && !errors.Is(err, ErrInvalidState) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}
}

func TestCompleteRules(t *testing.T) {
	ctx := context.Background()

	t.Run("only the assigned rider may complete", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		o, _ := svc.Create(ctx, validCreate("cust-1"))
		accept(t, svc, o.ID, "rider-1")
		_, err := svc.Complete(ctx, CompleteCommand{
			OrderID: o.ID, RiderID: "rider-2",
			Checklist: Checklist{HandedToRecipient: true, ConditionConfirmed: true, LocationConfirmed: true},
		})
		if !errors.Is(err, ErrNotAssigned) {
			t.Fatalf("got %v, want ErrNotAssigned", err)
		}
	})

	t.Run("checklist must be fully affirmed", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		o, _ := svc.Create(ctx, validCreate("cust-1"))
		accept(t, svc, o.ID, "rider-1")
		_, err := svc.Complete(ctx, CompleteCommand{
			OrderID: o.ID, RiderID: "rider-1",
			Checklist: Checklist{HandedToRecipient: true, ConditionConfirmed: true},
		})
		if !errors.Is(err, ErrChecklistIncomplete) {
			t.Fatalf("got %v, want ErrChecklistIncomplete", err)
		}
	})

	t.Run("pending orders cannot be completed", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		o, _ := svc.Create(ctx, validCreate("cust-1"))
		_, err := svc.Complete(ctx, CompleteCommand{
			OrderID: o.ID, RiderID: "rider-1",
			Checklist: Checklist{HandedToRecipient: true, ConditionConfirmed: true, LocationConfirmed: true},
		})
		if !errors.Is(err, ErrInvalidState) {
			t.Fatalf("got %v, want ErrInvalidState", err)
		}
	})
}

func TestPaymentGate(t *testing.T) {
	ctx := context.Background()
	fullChecklist := Checklist{HandedToRecipient: true, ConditionConfirmed: true, LocationConfirmed: true}

	newPOD := func(t *testing.T, svc *Service) *Order {
		cmd := validCreate("cust-1")
		cmd.PaymentBy = PayReceiver
		o, err := svc.Create(ctx, cmd)
		if err != nil {
			t.Fatal(err)
		}
		accept(t, svc, o.ID, "rider-1")
		return o
	}

	t.Run("unsettled pay-on-delivery blocks completion", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		o := newPOD(t, svc)
		_, err := svc.Complete(ctx, CompleteCommand{OrderID: o.ID, RiderID: "rider-1", Checklist: fullChecklist})
		if !errors.Is(err, ErrPaymentPending) {
			t.Fatalf("got %v, want ErrPaymentPending", err)
		}
	})

	t.Run("collecting at handover settles and completes", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		o := newPOD(t, svc)
		cl := fullChecklist
		cl.PaymentCollected = true
		done, err := svc.Complete(ctx, CompleteCommand{OrderID: o.ID, RiderID: "rider-1", Checklist: cl})
		if err != nil {
			t.Fatal(err)
		}
		if !done.PaymentSettled || done.Status != StatusDelivered {
			t.Errorf("settled=%v status=%s, want settled delivered", done.PaymentSettled, done.Status)
		}
	})

	t.Run("prior settlement unblocks completion", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		o := newPOD(t, svc)
		if _, err := svc.UpdatePaymentStatus(ctx, PaymentCommand{OrderID: o.ID, Settled: true}); err != nil {
			t.Fatal(err)
		}
		if _, err := svc.Complete(ctx, CompleteCommand{OrderID: o.ID, RiderID: "rider-1", Checklist: fullChecklist}); err != nil {
			t.Fatal(err)
		}
	})
}

func TestCancelRules(t *testing.T) {
	ctx := context.Background()

	t.Run("owner cancels pending order", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		o, _ := svc.Create(ctx, validCreate("cust-1"))
		got, err := svc.Cancel(ctx, CancelCommand{OrderID: o.ID, CustomerID: "cust-1"})
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != StatusCancelled {
			t.Errorf("status = %s, want cancelled", got.Status)
		}
	})

	t.Run("non-owner cannot cancel", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		o, _ := svc.Create(ctx, validCreate("cust-1"))
		if _, err := svc.Cancel(ctx, CancelCommand{OrderID: o.ID, CustomerID: "cust-2"}); !errors.Is(err, ErrNotOwner) {
			t.Fatalf("got %v, want ErrNotOwner", err)
		}
	})

	t.Run("in-transit orders cannot be cancelled", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		o, _ := svc.Create(ctx, validCreate("cust-1"))
		accept(t, svc, o.ID, "rider-1")
		if _, err := svc.Cancel(ctx, CancelCommand{OrderID: o.ID, CustomerID: "cust-1"}); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("got %v, want ErrInvalidState", err)
		}
	})
}

func TestNotificationFanOut(t *testing.T) {
	svc, _, notifier := newTestService(t)
	ctx := context.Background()

	cmd := validCreate("cust-1")
	cmd.PaymentBy = PayReceiver
	o, err := svc.Create(ctx, cmd)
	if err != nil {
		t.Fatal(err)
	}
	if got := notifier.count(); got != 1 {
		t.Fatalf("after create: %d notifications, want 1", got)
	}

	accept(t, svc, o.ID, "rider-1")
	if got := notifier.count(); got != 3 {
		t.Fatalf("after accept: %d notifications, want 3", got)
	}

	if _, err := svc.UpdatePaymentStatus(ctx, PaymentCommand{OrderID: o.ID, Settled: true}); err != nil {
		t.Fatal(err)
	}
	if got := notifier.count(); got != 4 {
		t.Fatalf("after payment: %d notifications, want 4", got)
	}

	if _, err := svc.Complete(ctx, CompleteCommand{
		OrderID: o.ID, RiderID: "rider-1",
		Checklist: Checklist{HandedToRecipient: true, ConditionConfirmed: true, LocationConfirmed: true},
	}); err != nil {
		t.Fatal(err)
	}
	if got := notifier.count(); got != 6 {
		t.Fatalf("after complete: %d notifications, want 6", got)
	}
}

func TestTrackingCodeShape(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		code := NewTrackingCode()
		if len(code) != 9 || code[:4] != "TRX-" {
			t.Fatalf("bad tracking code %q", code)
		}
		seen[code] = true
	}
	if len(seen) < 195 {
		t.Errorf("too many collisions in 200 codes: %d unique", len(seen))
	}
}
