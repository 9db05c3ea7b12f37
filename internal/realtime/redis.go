// README: Redis pub/sub Bus for multi-instance deployments.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "lani:events:"

// RedisBus fans events out across service instances via Redis pub/sub. Redis
// pub/sub is fire-and-forget: a subscriber that reconnects misses events,
// which is acceptable because every consumer re-fetches full state anyway.
type RedisBus struct {
	client *redis.Client
	log    *slog.Logger
}

func NewRedisBus(client *redis.Client, log *slog.Logger) *RedisBus {
	return &RedisBus{client: client, log: log}
}

func (b *RedisBus) Publish(ctx context.Context, topic string, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, channelPrefix+topic, payload).Err()
}

func (b *RedisBus) Subscribe(topic string, h Handler) (func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	sub := b.client.Subscribe(ctx, channelPrefix+topic)
	if _, err := sub.Receive(ctx); err != nil {
		cancel()
		return nil, err
	}

	ch := sub.Channel()
	go func() {
		for msg := range ch {
			var e Event
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				b.log.Warn("realtime: bad event payload", "topic", topic, "error", err)
				continue
			}
			h(e)
		}
	}()

	return func() {
		cancel()
		_ = sub.Close()
	}, nil
}
