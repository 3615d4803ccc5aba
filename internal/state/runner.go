package state

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"zns/internal/events"
	"zns/internal/platform/metrics"
	dErrors "zns/pkg/domain-errors"
)

const defaultTimeout = 5 * time.Second

// Locker serializes units of work across processes sharing one backend.
type Locker interface {
	Acquire(ctx context.Context) (release func(context.Context) error, err error)
}

// Runner executes units of work. Every mutating operation runs inside Run,
// which serializes it against every other operation in the process (and,
// with a Locker, across processes), buffers its writes, and commits them
// atomically only if the operation returns nil.
type Runner struct {
	store     Store
	publisher events.Publisher
	locker    Locker
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	timeout   time.Duration

	mu sync.RWMutex
}

// Option configures the Runner.
type Option func(*Runner)

// WithPublisher sets where committed events are delivered.
func WithPublisher(p events.Publisher) Option {
	return func(r *Runner) {
		r.publisher = p
	}
}

// WithLocker adds a cross-process lock around every unit of work.
func WithLocker(l Locker) Option {
	return func(r *Runner) {
		r.locker = l
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithTracer overrides the tracer used for unit-of-work spans.
func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) {
		r.tracer = t
	}
}

// WithTimeout bounds units of work started without a deadline.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// NewRunner creates a Runner over store.
func NewRunner(store Store, opts ...Option) (*Runner, error) {
	if store == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "state store is required")
	}
	r := &Runner{
		store:     store,
		publisher: events.Discard{},
		timeout:   defaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.tracer == nil {
		r.tracer = otel.Tracer("zns/state")
	}
	return r, nil
}

// Run executes fn as one unit of work named op.
//
// If ctx already carries an open unit of work, fn joins it: collaborators
// calling each other inside one operation share a single commit. A context
// whose unit of work has already finished is rejected with CodeReentrantCall,
// which is what a callback holding on to a stale context would hit.
func (r *Runner) Run(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if tx, ok := from(ctx); ok {
		if tx.done {
			return dErrors.New(dErrors.CodeReentrantCall, "unit of work already finished")
		}
		if tx.readOnly {
			return dErrors.New(dErrors.CodeReentrantCall, "write operation inside a read-only view")
		}
		return fn(ctx)
	}

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "operation aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	ctx, span := r.tracer.Start(ctx, op, trace.WithAttributes(attribute.String("zns.operation", op)))
	defer span.End()
	start := time.Now()

	hooks, err := r.commitLocked(ctx, op, fn)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		r.observe(op, outcome(err), start)
		return err
	}

	hookCtx := detach(ctx)
	for _, h := range hooks {
		h(hookCtx)
	}
	r.observe(op, "ok", start)
	return nil
}

func (r *Runner) commitLocked(ctx context.Context, op string, fn func(ctx context.Context) error) ([]func(context.Context), error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.locker != nil {
		release, err := r.locker.Acquire(ctx)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "acquire store lock")
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil && r.logger != nil {
				r.logger.WarnContext(ctx, "release store lock", "operation", op, "error", err)
			}
		}()
	}

	tx := newTx(r.store, false)
	defer func() { tx.done = true }()

	if err := fn(withTx(ctx, tx)); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "operation aborted before commit")
	}

	batch := tx.batch()
	if batch.Empty() {
		return tx.hooks, nil
	}
	if err := r.store.Commit(ctx, batch); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "commit unit of work")
	}

	if len(batch.Events) > 0 {
		if err := r.publisher.Publish(ctx, batch.Events...); err != nil {
			if r.metrics != nil {
				r.metrics.IncrementPublishFailures()
			}
			if r.logger != nil {
				r.logger.ErrorContext(ctx, "publish committed events",
					"operation", op,
					"events", len(batch.Events),
					"error", err,
				)
			}
		} else if r.metrics != nil {
			r.metrics.AddEventsPublished(len(batch.Events))
		}
	}
	return tx.hooks, nil
}

// View runs fn against a consistent read-only view. Inside an open unit of
// work it reuses that unit, so reads observe the operation's own writes.
func (r *Runner) View(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx, ok := from(ctx); ok {
		if tx.done {
			return dErrors.New(dErrors.CodeReentrantCall, "unit of work already finished")
		}
		return fn(ctx)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	tx := newTx(r.store, true)
	defer func() { tx.done = true }()
	return fn(withTx(ctx, tx))
}

func (r *Runner) observe(op, result string, start time.Time) {
	if r.metrics != nil {
		r.metrics.ObserveOperation(op, result, start)
	}
}

func outcome(err error) string {
	if code := dErrors.CodeOf(err); code != "" {
		return string(code)
	}
	return "error"
}
