package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/twmb/franz-go/pkg/kgo"

	"zns/internal/events"
	kafkapub "zns/internal/events/publishers/kafka"
	outbox "zns/internal/events/store/postgres"
	"zns/internal/events/worker"
	regmetrics "zns/internal/registrar/metrics"
	"zns/internal/platform/config"
	"zns/internal/platform/httpserver"
	"zns/internal/platform/kafka"
	"zns/internal/platform/metrics"
	"zns/internal/platform/postgres"
	"zns/internal/platform/ratelimit"
	redisplatform "zns/internal/platform/redis"
	"zns/internal/platform/tracing"
	"zns/internal/state"
	"zns/internal/system"
	"zns/pkg/platform/circuit"
)

// app is the fully wired process: the system plus the infrastructure
// around it.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	sys      *system.System
	limiter  *ratelimit.Limiter
	// relay is set only for the postgres backend with Kafka configured.
	relay  *worker.Relay
	checks map[string]httpserver.Check

	tracer  *tracing.Provider
	redis   *redisplatform.Client
	kafka   *kgo.Client
	closers []func(context.Context) error
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (_ *app, err error) {
	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
		checks:   make(map[string]httpserver.Check),
	}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
		}
	}()

	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if a.tracer, err = tracing.NewProvider(cfg.Tracing); err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.tracer.Shutdown)

	if a.redis, err = redisplatform.New(ctx, cfg.Redis); err != nil {
		return nil, err
	}
	if a.redis != nil {
		a.checks["redis"] = a.redis.Health
		a.closers = append(a.closers, func(context.Context) error { return a.redis.Close() })
	}

	var kafkaPublisher events.Publisher
	if a.kafka, err = kafka.New(ctx, cfg.Kafka); err != nil {
		return nil, err
	}
	if a.kafka != nil {
		a.closers = append(a.closers, func(context.Context) error { a.kafka.Close(); return nil })
		if err = kafka.EnsureTopic(ctx, a.kafka, cfg.Kafka); err != nil {
			return nil, err
		}
		a.checks["kafka"] = a.kafka.Ping
		kafkaPublisher = kafkapub.New(a.kafka, cfg.Kafka.Topic, kafkapub.WithLogger(logger))
	}

	store, ob, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	// Postgres events leave through the outbox relay; the other backends
	// publish directly after commit.
	var publisher events.Publisher = events.Discard{}
	if kafkaPublisher != nil && ob == nil {
		publisher = kafkaPublisher
	}

	stateMetrics := metrics.New(a.registry)
	opts := []state.Option{
		state.WithPublisher(publisher),
		state.WithLogger(logger),
		state.WithMetrics(stateMetrics),
		state.WithTracer(a.tracer.Tracer()),
		state.WithTimeout(cfg.Storage.TxTimeout),
	}
	if cfg.Storage.DistributedLock {
		opts = append(opts, state.WithLocker(state.NewRedisLocker(a.redis.Client, cfg.Redis.LockKey, cfg.Redis.LockTTL)))
	}
	runner, err := state.NewRunner(store, opts...)
	if err != nil {
		return nil, err
	}

	a.sys = system.New(runner,
		system.WithLogger(logger),
		system.WithRegistrarMetrics(regmetrics.New(a.registry)),
	)

	if ob != nil && kafkaPublisher != nil {
		a.relay = worker.NewRelay(ob, kafkaPublisher,
			worker.WithLogger(logger),
			worker.WithMetrics(stateMetrics),
			worker.WithInterval(cfg.Kafka.RelayInterval),
			worker.WithBatchSize(cfg.Kafka.RelayBatchSize),
			worker.WithBreaker(circuit.New("kafka", circuit.WithFailureThreshold(5))),
		)
		a.checks["relay"] = a.relay.Ready
	}

	if cfg.RateLimit.Enabled {
		local := ratelimit.NewMemoryStore()
		rl := cfg.RateLimit
		if a.redis != nil {
			a.limiter = ratelimit.New(ratelimit.NewRedisStore(a.redis.Client, "zns:ratelimit:"), rl.Requests, rl.Window, logger,
				ratelimit.WithFallback(local, circuit.New("ratelimit", circuit.WithSuccessThreshold(3))))
		} else {
			a.limiter = ratelimit.New(local, rl.Requests, rl.Window, logger)
		}
	}
	return a, nil
}

// openStore opens the configured state backend. The outbox is non-nil only
// for postgres.
func (a *app) openStore(ctx context.Context) (state.Store, *outbox.Outbox, error) {
	cfg := a.cfg
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		if cfg.Postgres.MigrateOnStart {
			if err := postgres.Migrate(cfg.Postgres.DSN); err != nil {
				return nil, nil, err
			}
		}
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return db.Close() })
		ob := outbox.New(db)
		store := state.NewPostgresStore(db, state.WithOutbox(ob))
		a.checks["postgres"] = store.Health
		return store, ob, nil
	case config.BackendRedis:
		store := state.NewRedisStore(a.redis.Client,
			state.WithKeyPrefix("zns:state:"),
			state.WithEventStream(cfg.Redis.EventStream, 0),
		)
		return store, nil, nil
	case config.BackendMemory:
		a.logger.Warn("using in-memory state; nothing survives a restart")
		return state.NewMemoryStore(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// bootstrap seeds the deployment from config. It is a no-op once the root
// exists.
func (a *app) bootstrap(ctx context.Context) error {
	seed, err := system.SeedFromConfig(a.cfg.Bootstrap)
	if err != nil {
		return fmt.Errorf("bootstrap config: %w", err)
	}
	return a.sys.Bootstrap(ctx, seed)
}

// Close releases every resource in reverse order of acquisition.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
