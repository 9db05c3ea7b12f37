// README: Order service implements the dispatch lifecycle and its fan-out.
package order

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"lani/internal/observability"
	"lani/internal/realtime"
	"lani/internal/types"
)

var (
	ErrNotFound            = errors.New("order not found")
	ErrBadRequest          = errors.New("bad request")
	ErrPhotoRequired       = errors.New("package photo is required")
	ErrInvalidState        = errors.New("invalid state transition")
	ErrConflict            = errors.New("order state conflict")
	ErrCapacity            = errors.New("rider is at the two-order capacity limit")
	ErrNotAssigned         = errors.New("order is assigned to a different rider")
	ErrNotOwner            = errors.New("order belongs to a different customer")
	ErrPaymentPending      = errors.New("payment must be collected before completion")
	ErrChecklistIncomplete = errors.New("completion checklist is not fully affirmed")
)

// MaxActiveOrders is the rider capacity cap: at most this many in-transit
// orders at once.
const MaxActiveOrders = 2

type Store interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id types.ID) (*Order, error)
	GetByTracking(ctx context.Context, trackingID string) (*Order, error)
	ListByActor(ctx context.Context, actorID types.ID) ([]*Order, error)
	ListPendingByCity(ctx context.Context, city string) ([]*Order, error)
	ListAll(ctx context.Context) ([]*Order, error)
	CountActiveByRider(ctx context.Context, riderID types.ID) (int, error)

	// AcceptPending performs the pending→in-transit transition as one
	// conditional write: it succeeds only while the order is still pending
	// and the rider holds fewer than maxActive in-transit orders, so two
	// racing accepts resolve to exactly one winner.
	AcceptPending(ctx context.Context, id types.ID, riderID types.ID, rider Contact, maxActive int) (bool, error)

	// UpdateStatus is a compare-and-swap on status.
	UpdateStatus(ctx context.Context, id types.ID, from, to Status) (bool, error)

	SetPaymentSettled(ctx context.Context, id types.ID, settled bool) (bool, error)
	Stats(ctx context.Context) (Stats, error)
}

type Pricing interface {
	Quote(ctx context.Context, city string, pickup, delivery types.Point, scheduled bool) (float64, error)
}

// FileStore persists the package photo before the order document is written.
type FileStore interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

type Notifier interface {
	Send(ctx context.Context, target types.ID, category, title, body, path, activity string) error
}

type Mailer interface {
	Send(to, subject, body string)
}

// LocationRecorder receives the accepting rider's current position;
// best-effort only.
type LocationRecorder interface {
	RecordRiderLocation(ctx context.Context, riderID types.ID, pos types.Point) error
}

type Service struct {
	store     Store
	pricing   Pricing
	files     FileStore
	notifier  Notifier
	mailer    Mailer
	locations LocationRecorder
	bus       realtime.Publisher
	maxActive int
	log       *slog.Logger
}

type ServiceDeps struct {
	Store     Store
	Pricing   Pricing
	Files     FileStore
	Notifier  Notifier
	Mailer    Mailer
	Locations LocationRecorder
	Bus       realtime.Publisher
	MaxActive int
	Log       *slog.Logger
}

func NewService(deps ServiceDeps) *Service {
	maxActive := deps.MaxActive
	if maxActive <= 0 {
		maxActive = MaxActiveOrders
	}
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:     deps.Store,
		pricing:   deps.Pricing,
		files:     deps.Files,
		notifier:  deps.Notifier,
		mailer:    deps.Mailer,
		locations: deps.Locations,
		bus:       deps.Bus,
		maxActive: maxActive,
		log:       log,
	}
}

type PackageInput struct {
	Name        string
	Texture     string
	Photo       []byte
	ContentType string
}

type CreateCommand struct {
	CustomerID  types.ID
	Sender      Contact
	SenderEmail string
	City        string
	Pickup      Location
	Delivery    Location
	Package     PackageInput
	Receiver    Contact
	Mode        PickupMode
	ScheduledAt *time.Time
	Notes       string
	PaymentBy   PaymentBy
}

// Create validates the request, uploads the package photo, prices the trip
// and persists the new pending order. Sender-prepaid orders are settled at
// creation; pay-on-delivery orders start unsettled.
//
// An uploaded photo is not deleted if the subsequent document write fails;
// orphaned files are reaped out of band.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Order, error) {
	if cmd.CustomerID == "" || cmd.City == "" {
		return nil, ErrBadRequest
	}
	if len(cmd.Package.Photo) == 0 {
		return nil, ErrPhotoRequired
	}
	if strings.TrimSpace(cmd.Pickup.Address) == "" || strings.TrimSpace(cmd.Delivery.Address) == "" {
		return nil, ErrBadRequest
	}
	if strings.TrimSpace(cmd.Receiver.Name) == "" || strings.TrimSpace(cmd.Receiver.Phone) == "" {
		return nil, ErrBadRequest
	}
	mode := cmd.Mode
	if mode == "" {
		mode = PickupImmediate
	}
	if mode != PickupImmediate && mode != PickupScheduled {
		return nil, ErrBadRequest
	}
	if mode == PickupScheduled && (cmd.ScheduledAt == nil || !cmd.ScheduledAt.After(time.Now())) {
		return nil, ErrBadRequest
	}
	payBy := cmd.PaymentBy
	if payBy == "" {
		payBy = PaySender
	}
	if payBy != PaySender && payBy != PayReceiver {
		return nil, ErrBadRequest
	}

	id := newID()
	photoRef, err := s.files.Upload(ctx, fmt.Sprintf("packages/%s", id), cmd.Package.Photo, cmd.Package.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload package photo: %w", err)
	}

	fare, err := s.pricing.Quote(ctx, cmd.City, cmd.Pickup.Position, cmd.Delivery.Position, mode == PickupScheduled)
	if err != nil {
		return nil, fmt.Errorf("price dispatch: %w", err)
	}

	o := &Order{
		ID:             id,
		TrackingID:     NewTrackingCode(),
		CustomerID:     cmd.CustomerID,
		City:           cmd.City,
		Fare:           fare,
		Pickup:         cmd.Pickup,
		Delivery:       cmd.Delivery,
		Package:        Package{Name: cmd.Package.Name, Texture: cmd.Package.Texture, PhotoRef: photoRef},
		Receiver:       cmd.Receiver,
		Sender:         cmd.Sender,
		SenderEmail:    cmd.SenderEmail,
		Mode:           mode,
		ScheduledAt:    cmd.ScheduledAt,
		Notes:          cmd.Notes,
		PaymentBy:      payBy,
		PaymentSettled: payBy == PaySender,
		Status:         StatusPending,
		CreatedAt:      time.Now(),
	}
	if err := s.store.Create(ctx, o); err != nil {
		return nil, err
	}
	observability.OrdersCreated.Inc()
	s.publish(ctx, realtime.CreateEvent(eventPayload(o)))

	body := fmt.Sprintf("Your order has been placed successfully, and your tracking Id is %s. A rider will be assigned shortly!", o.TrackingID)
	s.notify(ctx, o.CustomerID, "order", "Order Created!", body, o.TrackingID, "")
	s.mail(o.SenderEmail, "Order Created!", body)

	return o, nil
}

type AcceptCommand struct {
	OrderID  types.ID
	RiderID  types.ID
	Rider    Contact
	Position *types.Point
}

// Accept assigns a pending order to a rider in one conditional write. The
// capacity count is re-checked inside the store write, so a rider racing
// themselves (or two riders racing each other) cannot exceed the cap or
// double-assign the order.
func (s *Service) Accept(ctx context.Context, cmd AcceptCommand) (*Order, error) {
	o, err := s.store.Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, StatusInTransit) {
		return nil, ErrInvalidState
	}

	active, err := s.store.CountActiveByRider(ctx, cmd.RiderID)
	if err != nil {
		return nil, err
	}
	if active >= s.maxActive {
		return nil, ErrCapacity
	}

	ok, err := s.store.AcceptPending(ctx, cmd.OrderID, cmd.RiderID, cmd.Rider, s.maxActive)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	observability.OrdersAccepted.Inc()

	if s.locations != nil && cmd.Position != nil {
		if err := s.locations.RecordRiderLocation(ctx, cmd.RiderID, *cmd.Position); err != nil {
			s.log.Warn("rider location record failed", "rider", cmd.RiderID, "error", err)
		}
	}

	o, err = s.store.Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, realtime.UpdateEvent(eventPayload(o)))

	customerBody := fmt.Sprintf("A rider, %s has been assigned to your order, %s!", o.Rider.Name, o.TrackingID)
	riderBody := fmt.Sprintf("You accepted an order by %s, with a trackingId of %s!", o.Sender.Name, o.TrackingID)
	s.notify(ctx, o.CustomerID, "order", "Order Accepted!", customerBody, o.TrackingID, customerBody)
	s.notify(ctx, cmd.RiderID, "order", "Order Accepted!", riderBody, o.TrackingID, riderBody)
	s.mail(o.SenderEmail, "Order Accepted!", customerBody)

	return o, nil
}

// Checklist is the handover confirmation a rider affirms before completing.
// PaymentCollected is only consulted for pay-on-delivery orders that are not
// yet settled.
type Checklist struct {
	HandedToRecipient  bool
	ConditionConfirmed bool
	LocationConfirmed  bool
	PaymentCollected   bool
}

type CompleteCommand struct {
	OrderID   types.ID
	RiderID   types.ID
	Checklist Checklist
}

// Complete marks an in-transit order delivered. Only the assigned rider may
// complete, the checklist must be fully affirmed, and a pay-on-delivery order
// must have its payment settled — either beforehand via UpdatePaymentStatus
// or by affirming the payment-collected checklist item here.
func (s *Service) Complete(ctx context.Context, cmd CompleteCommand) (*Order, error) {
	o, err := s.store.Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, StatusDelivered) {
		return nil, ErrInvalidState
	}
	if o.RiderID == nil || *o.RiderID != cmd.RiderID {
		return nil, ErrNotAssigned
	}
	if !cmd.Checklist.HandedToRecipient || !cmd.Checklist.ConditionConfirmed || !cmd.Checklist.LocationConfirmed {
		return nil, ErrChecklistIncomplete
	}
	if o.PaymentBy == PayReceiver && !o.PaymentSettled {
		if !cmd.Checklist.PaymentCollected {
			return nil, ErrPaymentPending
		}
		if _, err := s.store.SetPaymentSettled(ctx, o.ID, true); err != nil {
			return nil, err
		}
	}

	ok, err := s.store.UpdateStatus(ctx, o.ID, StatusInTransit, StatusDelivered)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	observability.OrdersDelivered.Inc()

	o, err = s.store.Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, realtime.UpdateEvent(eventPayload(o)))

	customerBody := fmt.Sprintf("Your order has been delivered successfully, %s!", o.TrackingID)
	riderBody := fmt.Sprintf("You have completed an order by %s, with a trackingId of %s!", o.Sender.Name, o.TrackingID)
	s.notify(ctx, o.CustomerID, "success", "Order Completed!", customerBody, o.TrackingID, "")
	s.notify(ctx, cmd.RiderID, "success", "Order Completed!", riderBody, o.TrackingID, "")
	s.mail(o.SenderEmail, "Order Delivered!", customerBody)

	return o, nil
}

type CancelCommand struct {
	OrderID    types.ID
	CustomerID types.ID
}

// Cancel is only available to the owning customer while the order is pending.
func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) (*Order, error) {
	o, err := s.store.Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != cmd.CustomerID {
		return nil, ErrNotOwner
	}
	if !CanTransition(o.Status, StatusCancelled) {
		return nil, ErrInvalidState
	}

	ok, err := s.store.UpdateStatus(ctx, o.ID, StatusPending, StatusCancelled)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	observability.OrdersCancelled.Inc()

	o, err = s.store.Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, realtime.UpdateEvent(eventPayload(o)))
	return o, nil
}

type PaymentCommand struct {
	OrderID types.ID
	Settled bool
}

// UpdatePaymentStatus records a pay-on-delivery collection. The payer (the
// order's customer) is notified when the payment lands.
func (s *Service) UpdatePaymentStatus(ctx context.Context, cmd PaymentCommand) (*Order, error) {
	o, err := s.store.Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.SetPaymentSettled(ctx, o.ID, cmd.Settled); err != nil {
		return nil, err
	}
	o, err = s.store.Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, realtime.UpdateEvent(eventPayload(o)))

	if cmd.Settled {
		body := fmt.Sprintf("Payment received for order #%s", o.TrackingID)
		s.notify(ctx, o.CustomerID, "success", "Payment Received", body, o.TrackingID, "")
	}
	return o, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Order, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) GetByTracking(ctx context.Context, trackingID string) (*Order, error) {
	return s.store.GetByTracking(ctx, trackingID)
}

// ListByActor returns the "my orders" view: every order the user owns as
// customer or carries as rider, newest first.
func (s *Service) ListByActor(ctx context.Context, actorID types.ID) ([]*Order, error) {
	return s.store.ListByActor(ctx, actorID)
}

// ListAll and AggregateStats back the admin dashboard.
func (s *Service) ListAll(ctx context.Context) ([]*Order, error) {
	return s.store.ListAll(ctx)
}

func (s *Service) AggregateStats(ctx context.Context) (Stats, error) {
	return s.store.Stats(ctx)
}

// notify and mail are side channels: failures are logged, never surfaced, so
// a lifecycle transition can't appear failed because a message didn't send.
func (s *Service) notify(ctx context.Context, target types.ID, category, title, body, path, activity string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, target, category, title, body, path, activity); err != nil {
		s.log.Warn("notification failed", "target", target, "title", title, "error", err)
	}
}

func (s *Service) mail(to, subject, body string) {
	if s.mailer == nil || to == "" {
		return
	}
	s.mailer.Send(to, subject, body)
}

func (s *Service) publish(ctx context.Context, e realtime.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, realtime.TopicOrders, e); err != nil {
		s.log.Warn("order event publish failed", "error", err)
	}
}

func eventPayload(o *Order) map[string]any {
	return map[string]any{
		"id":       string(o.ID),
		"tracking": o.TrackingID,
		"status":   string(o.Status),
		"city":     o.City,
	}
}

func newID() types.ID {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return types.ID(hex.EncodeToString(b[:]))
}
