// README: Matching builds the candidate pool a rider sees and their load status.
package matching

import (
	"context"
	"errors"
	"strings"

	"lani/internal/modules/order"
	"lani/internal/types"
)

var ErrNoCity = errors.New("rider has not selected an operating city")

// OrderSource is the slice of the order store matching needs.
type OrderSource interface {
	ListPendingByCity(ctx context.Context, city string) ([]*order.Order, error)
	CountActiveByRider(ctx context.Context, riderID types.ID) (int, error)
}

// RiderLoad reports how many orders a rider currently carries. Busy means the
// rider is at the capacity cap and cannot accept more; there is no separate
// online/offline toggle.
type RiderLoad struct {
	Active int
	Busy   bool
}

type Service struct {
	orders    OrderSource
	maxActive int
}

func NewService(orders OrderSource, maxActive int) *Service {
	if maxActive <= 0 {
		maxActive = order.MaxActiveOrders
	}
	return &Service{orders: orders, maxActive: maxActive}
}

// Candidates returns the pending orders a rider in the given city may accept,
// newest first. A rider without a city has an empty pool by definition, and
// gets an explicit error instead.
func (s *Service) Candidates(ctx context.Context, city string) ([]*order.Order, error) {
	if strings.TrimSpace(city) == "" {
		return nil, ErrNoCity
	}
	return s.orders.ListPendingByCity(ctx, city)
}

func (s *Service) Load(ctx context.Context, riderID types.ID) (RiderLoad, error) {
	active, err := s.orders.CountActiveByRider(ctx, riderID)
	if err != nil {
		return RiderLoad{}, err
	}
	return RiderLoad{Active: active, Busy: active >= s.maxActive}, nil
}
