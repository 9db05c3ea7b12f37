// README: Notification service: per-user documents, unread counts, realtime fan-out.
package notification

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"lani/internal/observability"
	"lani/internal/realtime"
	"lani/internal/types"
)

var (
	ErrNotFound   = errors.New("notification not found")
	ErrBadRequest = errors.New("bad request")
)

type Store interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID types.ID) ([]*Notification, error)
	CountUnread(ctx context.Context, userID types.ID) (int, error)
	MarkRead(ctx context.Context, id types.ID, userID types.ID) (bool, error)
	MarkAllRead(ctx context.Context, userID types.ID) (int, error)
}

// Pusher delivers a best-effort device push; absence or failure never blocks
// the in-app notification.
type Pusher interface {
	Push(ctx context.Context, userID types.ID, title, body string) error
}

type Service struct {
	store Store
	bus   realtime.Publisher
	push  Pusher
	log   *slog.Logger
}

func NewService(store Store, bus realtime.Publisher, push Pusher, log *slog.Logger) *Service {
	return &Service{store: store, bus: bus, push: push, log: log}
}

// Send creates one notification document for target, announces it on the
// realtime bus, and fires a best-effort push.
func (s *Service) Send(ctx context.Context, target types.ID, category, title, body, path, activity string) error {
	if target == "" || title == "" {
		return ErrBadRequest
	}
	n := &Notification{
		ID:        newID(),
		UserID:    target,
		Category:  Category(category),
		Title:     title,
		Body:      body,
		Path:      path,
		Activity:  activity,
		CreatedAt: time.Now(),
	}
	if err := s.store.Create(ctx, n); err != nil {
		return err
	}
	observability.NotificationsSent.Inc()

	if s.bus != nil {
		if err := s.bus.Publish(ctx, realtime.TopicNotifications, realtime.CreateEvent(map[string]any{
			"id":   string(n.ID),
			"user": string(n.UserID),
		})); err != nil {
			s.log.Warn("notification event publish failed", "id", n.ID, "error", err)
		}
	}
	if s.push != nil {
		if err := s.push.Push(ctx, target, title, body); err != nil {
			s.log.Warn("push delivery failed", "user", target, "error", err)
		}
	}
	return nil
}

func (s *Service) ListByUser(ctx context.Context, userID types.ID) ([]*Notification, error) {
	return s.store.ListByUser(ctx, userID)
}

func (s *Service) UnreadCount(ctx context.Context, userID types.ID) (int, error) {
	return s.store.CountUnread(ctx, userID)
}

// MarkRead flips one notification's read flag; only the owning user may do so.
func (s *Service) MarkRead(ctx context.Context, id, userID types.ID) error {
	ok, err := s.store.MarkRead(ctx, id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	s.publishUpdate(ctx, userID)
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID types.ID) (int, error) {
	n, err := s.store.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.publishUpdate(ctx, userID)
	}
	return n, nil
}

func (s *Service) publishUpdate(ctx context.Context, userID types.ID) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, realtime.TopicNotifications, realtime.UpdateEvent(map[string]any{
		"user": string(userID),
	})); err != nil {
		s.log.Warn("notification event publish failed", "user", userID, "error", err)
	}
}

func newID() types.ID {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return types.ID(hex.EncodeToString(b[:]))
}
