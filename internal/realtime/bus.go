// README: Realtime event bus contract; coarse-grained change events per topic.
package realtime

import "context"

// Topics for the two collections interested clients watch. Handlers are
// expected to re-query full state on any event rather than patch a delta, so
// duplicate and out-of-order delivery are harmless.
const (
	TopicOrders        = "orders"
	TopicNotifications = "notifications"
)

// Event is the coarse change record pushed to subscribers. Events names the
// change kinds ("create", "update") and Payload carries the affected document
// id or a small summary, never full state.
type Event struct {
	Events  []string       `json:"events"`
	Payload map[string]any `json:"payload,omitempty"`
}

type Handler func(Event)

// Publisher is the write half of the bus; services that only emit events
// depend on this instead of the full Bus.
type Publisher interface {
	Publish(ctx context.Context, topic string, e Event) error
}

// Bus delivers events per topic. Delivery is at-least-once with no ordering
// guarantee. Subscribe returns an unsubscribe func that must be called when
// the owning view goes away, so handlers never fire against stale state.
type Bus interface {
	Publisher
	Subscribe(topic string, h Handler) (func(), error)
}

// CreateEvent and UpdateEvent build the two event shapes every store change
// maps onto.
func CreateEvent(payload map[string]any) Event {
	return Event{Events: []string{"create"}, Payload: payload}
}

func UpdateEvent(payload map[string]any) Event {
	return Event{Events: []string{"update"}, Payload: payload}
}
