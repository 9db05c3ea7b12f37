// README: Kafka producer streaming rider positions for downstream analytics.
package ingest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"lani/internal/types"
)

type locationRecord struct {
	RiderID    string    `json:"riderId"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	RecordedAt time.Time `json:"recordedAt"`
}

// LocationProducer publishes each rider position update keyed by rider id, so
// a partition preserves per-rider ordering.
type LocationProducer struct {
	writer *kafka.Writer
}

func NewLocationProducer(brokers []string, topic string) *LocationProducer {
	return &LocationProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

func (p *LocationProducer) PublishLocation(ctx context.Context, riderID types.ID, pos types.Point) error {
	payload, err := json.Marshal(locationRecord{
		RiderID:    string(riderID),
		Lat:        pos.Lat,
		Lng:        pos.Lng,
		RecordedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(riderID),
		Value: payload,
	})
}

func (p *LocationProducer) Close() error {
	return p.writer.Close()
}
