package main

import (
	"context"
	"errors"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/thouesa/thouesa-backend/pkg/bootstrap"
	"github.com/thouesa/thouesa-backend/pkg/config"
	"github.com/thouesa/thouesa-backend/pkg/logger"
	"github.com/thouesa/thouesa-backend/pkg/metrics"
	"github.com/thouesa/thouesa-backend/pkg/outbox"
	"github.com/thouesa/thouesa-backend/pkg/outbox/registry"
	"github.com/thouesa/thouesa-backend/pkg/pubsub"
)

func main() {
	ctx := context.Background()
	proc, err := bootstrap.Start(ctx, config.ServiceKindOutboxPublisher)
	if err != nil {
		logger.New(logger.Options{ServiceName: config.ServiceKindOutboxPublisher}).Error(ctx, "startup failed", err)
		os.Exit(1)
	}
	defer proc.Close()
	cfg, logg := proc.Config, proc.Logger

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		proc.Exit(ctx, "failed to bootstrap pubsub", err)
	}
	proc.Defer("pubsub", pubsubClient.Close)

	events, err := registry.NewEventRegistry(cfg.PubSub)
	if err != nil {
		proc.Exit(ctx, "failed to build event registry", err)
	}
	topics := newGCPTopics(pubsubClient)
	proc.Defer("publishers", func() error { topics.Stop(); return nil })

	conn := proc.DB.DB()
	dispatcher, err := NewDispatcher(DispatcherParams{
		Outbox:      cfg.Outbox,
		Logger:      logg,
		DB:          proc.DB,
		Broker:      pubsubClient,
		Events:      outbox.NewRepository(conn),
		DeadLetters: outbox.NewDLQRepository(conn),
		Resolver:    events,
		Topics:      topics.For,
		Metrics:     metrics.NewOutboxMetrics(prometheus.DefaultRegisterer),
	})
	if err != nil {
		proc.Exit(ctx, "failed to create outbox dispatcher", err)
	}

	ctx, stop := proc.SignalContext(map[string]any{"topics": events.Topics()})
	defer stop()
	logg.Info(ctx, "starting outbox publisher")

	if err := dispatcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		proc.Exit(ctx, "outbox publisher stopped unexpectedly", err)
	}
	logg.Info(ctx, "outbox publisher shutting down gracefully")
}
