// README: Dispatch order aggregate and lifecycle status definitions.
package order

import (
	"time"

	"lani/internal/types"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusInTransit Status = "in-transit"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

type PaymentBy string

const (
	PaySender   PaymentBy = "sender"
	PayReceiver PaymentBy = "receiver"
)

type PickupMode string

const (
	PickupImmediate PickupMode = "immediate"
	PickupScheduled PickupMode = "scheduled"
)

// Location is one endpoint of a dispatch. Position stays at the (0,0)
// sentinel until geocoding resolves the address.
type Location struct {
	Address  string
	Landmark string
	Position types.Point
}

// Package describes the parcel; PhotoRef points into file storage and is
// mandatory at creation.
type Package struct {
	Name     string
	Texture  string
	PhotoRef string
}

// Contact is a name/phone snapshot denormalised onto the order at transition
// time, so later reads never need a join against a profile that may have
// changed since.
type Contact struct {
	Name  string
	Phone string
}

// Order is the central document. RiderID is nil exactly while the order is
// pending or cancelled; Rider holds the accept-time snapshot of the assigned
// rider's contact details.
type Order struct {
	ID             types.ID
	TrackingID     string
	CustomerID     types.ID
	RiderID        *types.ID
	City           string
	Fare           float64
	Pickup         Location
	Delivery       Location
	Package        Package
	Receiver       Contact
	Sender         Contact
	SenderEmail    string
	Rider          Contact
	Mode           PickupMode
	ScheduledAt    *time.Time
	Notes          string
	PaymentBy      PaymentBy
	PaymentSettled bool
	Status         Status
	CreatedAt      time.Time
}

// AllowedTransitions represents the order state flow as code. Delivered and
// cancelled are terminal.
var AllowedTransitions = map[Status][]Status{
	StatusPending:   {StatusInTransit, StatusCancelled},
	StatusInTransit: {StatusDelivered},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// Stats is the admin dashboard aggregate over all orders.
type Stats struct {
	Total    int
	ByStatus map[Status]int
	Revenue  float64
}
