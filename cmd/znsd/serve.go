package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"zns/internal/platform/httpserver"
	"zns/internal/system/handler"
)

func newServeCmd(c *cli) *cobra.Command {
	var skipBootstrap bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Bootstrap the registry and serve lookups, quotes and metrics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, c, skipBootstrap)
		},
	}
	cmd.Flags().BoolVar(&skipBootstrap, "skip-bootstrap", false, "do not seed the deployment on start")
	return cmd
}

func serve(ctx context.Context, c *cli, skipBootstrap bool) error {
	a, err := newApp(ctx, c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			c.logger.Error("shutdown failed", "error", err)
		}
	}()

	if !skipBootstrap {
		if err := a.bootstrap(ctx); err != nil {
			return err
		}
	}

	h := handler.New(a.sys, c.logger)
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:   c.logger,
		Gatherer: a.registry,
		Checks:   a.checks,
	}, func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if a.limiter != nil {
				r.Use(a.limiter.Middleware)
			}
			h.Register(r)
		})
	})
	srv := httpserver.New(c.cfg.Server, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Serve(gctx, srv, c.cfg.Server.ShutdownTimeout, c.logger)
	})
	if a.relay != nil {
		g.Go(func() error {
			c.logger.Info("outbox relay started", "topic", c.cfg.Kafka.Topic)
			if err := a.relay.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	c.logger.Info("znsd started",
		"version", version,
		"backend", c.cfg.Storage.Backend,
		"addr", c.cfg.Server.Addr,
	)
	if err := g.Wait(); err != nil {
		return err
	}
	c.logger.Info("znsd stopped")
	return nil
}
