// Package kafka publishes committed events to a Kafka topic for indexers.
//
// Records are keyed by domain hash so every event about one domain lands on
// the same partition and keeps its order.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"zns/internal/events"
)

// Producer is the part of *kgo.Client the publisher needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Publisher writes events synchronously; Publish returns only after the
// broker acknowledged every record.
type Publisher struct {
	producer Producer
	topic    string
	logger   *slog.Logger
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// New creates a Kafka publisher for topic.
func New(producer Producer, topic string, opts ...Option) *Publisher {
	p := &Publisher{producer: producer, topic: topic}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) Publish(ctx context.Context, evts ...events.Event) error {
	if len(evts) == 0 {
		return nil
	}
	records := make([]*kgo.Record, 0, len(evts))
	for _, evt := range evts {
		value, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", evt.ID, err)
		}
		records = append(records, &kgo.Record{
			Topic: p.topic,
			Key:   evt.Domain.Bytes(),
			Value: value,
			Headers: []kgo.RecordHeader{
				{Key: "event-type", Value: []byte(evt.Type)},
				{Key: "event-id", Value: []byte(evt.ID.String())},
			},
		})
	}

	if err := p.producer.ProduceSync(ctx, records...).FirstErr(); err != nil {
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "kafka publish failed",
				"topic", p.topic,
				"events", len(evts),
				"error", err,
			)
		}
		return fmt.Errorf("produce events: %w", err)
	}
	return nil
}
