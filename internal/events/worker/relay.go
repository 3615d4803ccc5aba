package worker

//go:generate mockgen -source=relay.go -destination=mocks/mocks.go -package=mocks Source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"zns/internal/events"
	outbox "zns/internal/events/store/postgres"
	"zns/internal/platform/metrics"
	"zns/pkg/platform/circuit"
	"zns/pkg/requestcontext"
)

// Source is the outbox the relay drains.
type Source interface {
	Pending(ctx context.Context, limit int) ([]outbox.Entry, error)
	MarkPublished(ctx context.Context, upToSeq int64, at time.Time) error
}

// Relay moves committed outbox entries to a publisher in commit order.
// An entry is marked published only after the publisher accepted it, so
// delivery is at-least-once; consumers dedupe on the event ID.
type Relay struct {
	source    Source
	publisher events.Publisher
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
	metrics   *metrics.Metrics
	breaker   *circuit.Breaker
}

// Option configures the Relay.
type Option func(*Relay)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Relay) {
		r.metrics = m
	}
}

// WithInterval sets the idle poll interval.
func WithInterval(d time.Duration) Option {
	return func(r *Relay) {
		r.interval = d
	}
}

// WithBatchSize bounds entries relayed per poll.
func WithBatchSize(n int) Option {
	return func(r *Relay) {
		r.batchSize = n
	}
}

// WithBreaker tracks publish outcomes on b. An open breaker fails Ready.
func WithBreaker(b *circuit.Breaker) Option {
	return func(r *Relay) {
		r.breaker = b
	}
}

func NewRelay(source Source, publisher events.Publisher, opts ...Option) *Relay {
	r := &Relay{
		source:    source,
		publisher: publisher,
		interval:  time.Second,
		batchSize: 100,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run relays until ctx is cancelled. Publish failures are logged and
// retried on the next tick.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		n, err := r.RelayOnce(ctx)
		if err != nil && r.logger != nil {
			r.logger.ErrorContext(ctx, "outbox relay failed", "error", err)
		}
		if err == nil && n == r.batchSize {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RelayOnce publishes one batch and returns how many entries it relayed.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	entries, err := r.source.Pending(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	evts := make([]events.Event, len(entries))
	for i, e := range entries {
		evts[i] = e.Event
	}
	if err := r.publisher.Publish(ctx, evts...); err != nil {
		if r.metrics != nil {
			r.metrics.IncrementPublishFailures()
		}
		r.recordPublish(ctx, err)
		return 0, err
	}
	r.recordPublish(ctx, nil)

	last := entries[len(entries)-1].Seq
	if err := r.source.MarkPublished(ctx, last, requestcontext.Now(ctx)); err != nil {
		return 0, err
	}
	if r.metrics != nil {
		r.metrics.AddOutboxRelayed(len(entries))
	}
	return len(entries), nil
}

// Ready reports an error while the publish breaker is open.
func (r *Relay) Ready(context.Context) error {
	if r.breaker != nil && r.breaker.IsOpen() {
		return fmt.Errorf("%s circuit open", r.breaker.Name())
	}
	return nil
}

func (r *Relay) recordPublish(ctx context.Context, err error) {
	if r.breaker == nil {
		return
	}
	var change circuit.StateChange
	if err != nil {
		_, change = r.breaker.RecordFailure()
	} else {
		_, change = r.breaker.RecordSuccess()
	}
	if r.logger == nil {
		return
	}
	switch {
	case change.Opened:
		r.logger.WarnContext(ctx, "event publishing circuit opened", "breaker", r.breaker.Name(), "error", err)
	case change.Closed:
		r.logger.InfoContext(ctx, "event publishing circuit closed", "breaker", r.breaker.Name())
	}
}
