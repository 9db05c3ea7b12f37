// README: User service: registration, profile edits, rider city and location pings.
package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"lani/internal/types"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrExists     = errors.New("user already registered")
	ErrBadRequest = errors.New("bad request")
	ErrNotRider   = errors.New("user is not a rider")
)

type Store interface {
	Create(ctx context.Context, u *User) error
	Get(ctx context.Context, id types.ID) (*User, error)
	UpdateProfile(ctx context.Context, id types.ID, name, phone string) error
	UpdateCity(ctx context.Context, id types.ID, city string) error
	UpdateLocation(ctx context.Context, id types.ID, pos types.Point) error
}

// Notifier delivers an in-app notification to one user.
type Notifier interface {
	Send(ctx context.Context, target types.ID, category, title, body, path, activity string) error
}

// Mailer sends a transactional email; implementations are fire-and-forget.
type Mailer interface {
	Send(to, subject, body string)
}

// LocationSink receives rider location pings for downstream consumers
// (analytics, heat maps). Publishing is best-effort.
type LocationSink interface {
	PublishLocation(ctx context.Context, riderID types.ID, pos types.Point) error
}

type Service struct {
	store    Store
	notifier Notifier
	mailer   Mailer
	sink     LocationSink
	log      *slog.Logger
}

func NewService(store Store, notifier Notifier, mailer Mailer, sink LocationSink, log *slog.Logger) *Service {
	return &Service{store: store, notifier: notifier, mailer: mailer, sink: sink, log: log}
}

type RegisterCommand struct {
	UID   types.ID
	Name  string
	Email string
	Phone string
	Role  Role
}

// Register creates the profile document paired with a verified identity and
// emits the welcome notification and email.
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*User, error) {
	if cmd.UID == "" || strings.TrimSpace(cmd.Name) == "" || strings.TrimSpace(cmd.Email) == "" {
		return nil, ErrBadRequest
	}
	if !cmd.Role.Valid() {
		return nil, ErrBadRequest
	}
	if _, err := s.store.Get(ctx, cmd.UID); err == nil {
		return nil, ErrExists
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	u := &User{
		ID:        cmd.UID,
		Name:      strings.TrimSpace(cmd.Name),
		Email:     strings.TrimSpace(cmd.Email),
		Phone:     strings.TrimSpace(cmd.Phone),
		Role:      cmd.Role,
		CreatedAt: time.Now(),
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.Send(ctx, u.ID, "system", "Welcome to Lani Logistics",
			"Thank you for registering with us", "/dashboard", ""); err != nil {
			s.log.Warn("welcome notification failed", "user", u.ID, "error", err)
		}
	}
	if s.mailer != nil {
		s.mailer.Send(u.Email, "Welcome to Lani Logistics", "Thank you for registering with us")
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*User, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) UpdateProfile(ctx context.Context, id types.ID, name, phone string) (*User, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrBadRequest
	}
	if err := s.store.UpdateProfile(ctx, id, strings.TrimSpace(name), strings.TrimSpace(phone)); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

// SetCity assigns a rider's home city; only riders are matched by city.
func (s *Service) SetCity(ctx context.Context, id types.ID, city string) (*User, error) {
	u, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role != RoleRider {
		return nil, ErrNotRider
	}
	if strings.TrimSpace(city) == "" {
		return nil, ErrBadRequest
	}
	if err := s.store.UpdateCity(ctx, id, strings.TrimSpace(city)); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

// RecordRiderLocation stores the latest ping and forwards it to the location
// sink. Sink failures are logged and swallowed; a missed analytics event must
// never fail a ping.
func (s *Service) RecordRiderLocation(ctx context.Context, id types.ID, pos types.Point) error {
	u, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if u.Role != RoleRider {
		return ErrNotRider
	}
	if err := s.store.UpdateLocation(ctx, id, pos); err != nil {
		return err
	}
	if s.sink != nil {
		if err := s.sink.PublishLocation(ctx, id, pos); err != nil {
			s.log.Warn("location publish failed", "rider", id, "error", err)
		}
	}
	return nil
}
