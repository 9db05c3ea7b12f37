package notification

import (
	"context"
	"log/slog"
	"testing"

	"lani/internal/realtime"
	"lani/internal/types"
)

func newTestService(t *testing.T) (*Service, *realtime.MemoryBus) {
	t.Helper()
	bus := realtime.NewMemoryBus()
	return NewService(NewMemoryStore(), bus, nil, slog.Default()), bus
}

func TestSendCreatesOneDocumentPerRecipient(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.Send(ctx, "u1", "order", "Order Created!", "body", "TRX-AAAAA", ""); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := svc.Send(ctx, "u2", "order", "Order Created!", "body", "TRX-AAAAA", ""); err != nil {
		t.Fatalf("send: %v", err)
	}

	for _, id := range []types.ID{"u1", "u2"} {
		list, err := svc.ListByUser(ctx, id)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("user %s: expected 1 notification, got %d", id, len(list))
		}
		if list[0].Read {
			t.Fatalf("new notification must start unread")
		}
	}
}

func TestSendPublishesRealtimeEvent(t *testing.T) {
	svc, bus := newTestService(t)
	ctx := context.Background()

	events := 0
	if _, err := bus.Subscribe(realtime.TopicNotifications, func(realtime.Event) { events++ }); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := svc.Send(ctx, "u1", "system", "Welcome", "body", "", ""); err != nil {
		t.Fatalf("send: %v", err)
	}
	if events != 1 {
		t.Fatalf("expected 1 realtime event, got %d", events)
	}
}

func TestUnreadCountAndMarkRead(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := svc.Send(ctx, "u1", "order", "t", "b", "", ""); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	n, err := svc.UnreadCount(ctx, "u1")
	if err != nil {
		t.Fatalf("unread: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 unread, got %d", n)
	}

	list, _ := svc.ListByUser(ctx, "u1")
	if err := svc.MarkRead(ctx, list[0].ID, "u1"); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if n, _ = svc.UnreadCount(ctx, "u1"); n != 2 {
		t.Fatalf("expected 2 unread after mark read, got %d", n)
	}
}

func TestMarkReadWrongOwner(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.Send(ctx, "u1", "order", "t", "b", "", ""); err != nil {
		t.Fatalf("send: %v", err)
	}
	list, _ := svc.ListByUser(ctx, "u1")

	if err := svc.MarkRead(ctx, list[0].ID, "intruder"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for foreign mark-read, got %v", err)
	}
	if n, _ := svc.UnreadCount(ctx, "u1"); n != 1 {
		t.Fatalf("foreign mark-read must not flip the flag")
	}
}

func TestMarkAllRead(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_ = svc.Send(ctx, "u1", "order", "t", "b", "", "")
	}
	_ = svc.Send(ctx, "u2", "order", "t", "b", "", "")

	n, err := svc.MarkAllRead(ctx, "u1")
	if err != nil {
		t.Fatalf("mark all: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4 marked, got %d", n)
	}
	if c, _ := svc.UnreadCount(ctx, "u1"); c != 0 {
		t.Fatalf("u1 should have no unread left, got %d", c)
	}
	if c, _ := svc.UnreadCount(ctx, "u2"); c != 1 {
		t.Fatalf("u2's unread must be untouched, got %d", c)
	}
}
