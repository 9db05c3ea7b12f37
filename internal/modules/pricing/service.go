// README: Pricing service computes dispatch fares from coordinates and city rates.
package pricing

import (
	"context"
	"math"

	"lani/internal/types"
)

// schedulingDiscount is the flat promotional discount, in naira, applied to
// scheduled (non-immediate) pickups.
const schedulingDiscount = 100

type Store interface {
	RateForCity(ctx context.Context, city string) (Rate, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Quote resolves the city's per-km rate and computes the fare.
func (s *Service) Quote(ctx context.Context, city string, pickup, delivery types.Point, scheduled bool) (float64, error) {
	rate, err := s.store.RateForCity(ctx, city)
	if err != nil {
		return 0, err
	}
	return ComputeFare(pickup, delivery, rate.PerKm, scheduled), nil
}

// ComputeFare is the pure fare function: straight-line distance times the
// per-km rate, less the scheduling discount, floored at zero and rounded to
// two decimal places. Unresolved (0,0) coordinates behave as zero distance so
// the UI can recompute continuously while the user types.
func ComputeFare(pickup, delivery types.Point, ratePerKm float64, scheduled bool) float64 {
	var distance float64
	if !pickup.IsZero() && !delivery.IsZero() {
		distance = haversineKm(pickup, delivery)
	}
	fare := distance * ratePerKm
	if scheduled {
		fare -= schedulingDiscount
	}
	if fare < 0 {
		fare = 0
	}
	return math.Round(fare*100) / 100
}

const earthRadiusKm = 6371.0

func haversineKm(a, b types.Point) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
