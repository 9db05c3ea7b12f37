package pricing

import (
	"context"
	"math"
	"testing"

	"lani/internal/types"
)

var (
	uyo     = types.Point{Lat: 5.0, Lng: 7.9}
	nearby  = types.Point{Lat: 5.05, Lng: 7.95}
	farther = types.Point{Lat: 5.5, Lng: 8.4}
)

func TestComputeFareDeterministic(t *testing.T) {
	first := ComputeFare(uyo, nearby, 50, false)
	for i := 0; i < 10; i++ {
		if got := ComputeFare(uyo, nearby, 50, false); got != first {
			t.Fatalf("fare not deterministic: %v vs %v", got, first)
		}
	}
	if first <= 0 {
		t.Fatalf("expected positive fare for distinct points, got %v", first)
	}
}

func TestComputeFareZeroDistance(t *testing.T) {
	if got := ComputeFare(uyo, uyo, 50, false); got != 0 {
		t.Fatalf("same pickup and delivery should be free, got %v", got)
	}
}

func TestComputeFareUnresolvedCoordinates(t *testing.T) {
	zero := types.Point{}
	cases := []struct {
		name             string
		pickup, delivery types.Point
	}{
		{"both unresolved", zero, zero},
		{"pickup unresolved", zero, nearby},
		{"delivery unresolved", uyo, zero},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ComputeFare(tc.pickup, tc.delivery, 50, false); got != 0 {
				t.Fatalf("unresolved coordinates should price as zero distance, got %v", got)
			}
		})
	}
}

func TestComputeFareSchedulingDiscount(t *testing.T) {
	immediate := ComputeFare(uyo, farther, 50, false)
	scheduled := ComputeFare(uyo, farther, 50, true)
	if diff := immediate - scheduled; math.Abs(diff-schedulingDiscount) > 0.01 {
		t.Fatalf("discount = %v, want %v", diff, float64(schedulingDiscount))
	}
}

func TestComputeFareNeverNegative(t *testing.T) {
	// A very short scheduled trip: the discount exceeds the base fare.
	closeBy := types.Point{Lat: 5.0001, Lng: 7.9001}
	if got := ComputeFare(uyo, closeBy, 50, true); got < 0 {
		t.Fatalf("fare went negative: %v", got)
	}
	if got := ComputeFare(uyo, uyo, 50, true); got != 0 {
		t.Fatalf("zero-distance scheduled fare should floor at 0, got %v", got)
	}
}

func TestComputeFareRounding(t *testing.T) {
	got := ComputeFare(uyo, nearby, 33.33, false)
	if math.Round(got*100)/100 != got {
		t.Fatalf("fare not rounded to 2 decimal places: %v", got)
	}
}

func TestQuoteUsesCityRate(t *testing.T) {
	svc := NewService(NewStaticStore())
	ctx := context.Background()

	uyoFare, err := svc.Quote(ctx, "Uyo", uyo, farther, false)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	phFare, err := svc.Quote(ctx, "Port Harcourt", uyo, farther, false)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if phFare <= uyoFare {
		t.Fatalf("expected the pricier city rate to produce a higher fare: uyo=%v ph=%v", uyoFare, phFare)
	}
}
