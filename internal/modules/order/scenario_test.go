// README: Full create→accept→complete walk-through with real pricing.
package order

import (
	"context"
	"testing"

	"lani/internal/modules/pricing"
	"lani/internal/realtime"
	"lani/internal/types"
)

// TestDispatchLifecycleEndToEnd walks one order through its whole life and
// checks the observable side effects at every step: fare, status, rider
// assignment and the notification trail.
func TestDispatchLifecycleEndToEnd(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	notifier := &countingNotifier{}
	svc := NewService(ServiceDeps{
		Store:    store,
		Pricing:  pricing.NewService(rateStore{perKm: 50}),
		Files:    stubFiles{},
		Notifier: notifier,
		Mailer:   nopMailer{},
		Bus:      realtime.NewMemoryBus(),
	})

	customer := types.ID("cust-uyo")
	rider := types.ID("rider-uyo")

	o, err := svc.Create(ctx, CreateCommand{
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
	})
	if err != nil {
		t.Fatal(err)
	}
	if o.Fare <= 0 {
		t.Fatalf("fare = %v, want > 0", o.Fare)
	}
	if o.Status != StatusPending {
		t.Fatalf("status = %s, want pending", o.Status)
	}
	if got := notifier.count(); got != 1 {
		t.Fatalf("after create: %d notifications, want 1", got)
	}

	// The rider carries no active orders, so the accept wins outright.
	o, err = svc.Accept(ctx, AcceptCommand{
		OrderID: o.ID,
		RiderID: rider,
		Rider:   Contact{Name: "Effiong", Phone: "0903"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if o.Status != StatusInTransit {
		t.Fatalf("status = %s, want in-transit", o.Status)
	}
	if o.RiderID == nil || *o.RiderID != rider {
		t.Fatal("rider not recorded on the order")
	}
	if got := notifier.count(); got != 3 {
		t.Fatalf("after accept: %d notifications, want 3", got)
	}

	o, err = svc.Complete(ctx, CompleteCommand{
		OrderID: o.ID,
		RiderID: rider,
		Checklist: Checklist{
			HandedToRecipient:  true,
			ConditionConfirmed: true,
			LocationConfirmed:  true,
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if o.Status != StatusDelivered {
		t.Fatalf("status = %s, want delivered", o.Status)
	}
	if o.RiderID == nil || *o.RiderID != rider {
		t.Fatal("delivered order lost its rider assignment")
	}
	if got := notifier.count(); got != 5 {
		t.Fatalf("final: %d notifications, want 5", got)
	}

	stats, err := svc.AggregateStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 1 || stats.ByStatus[StatusDelivered] != 1 {
		t.Errorf("stats = %+v, want one delivered order", stats)
	}
	if stats.Revenue != o.Fare {
		t.Errorf("revenue = %v, want %v", stats.Revenue, o.Fare)
	}
}

type rateStore struct {
	perKm float64
}

func (s rateStore) RateForCity(_ context.Context, city string) (pricing.Rate, error) {
	return pricing.Rate{City: city, PerKm: s.perKm, Currency: "NGN"}, nil
}
