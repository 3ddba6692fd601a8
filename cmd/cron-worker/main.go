package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/thouesa/thouesa-backend/internal/cron"
	"github.com/thouesa/thouesa-backend/internal/finance"
	"github.com/thouesa/thouesa-backend/internal/orders"
	"github.com/thouesa/thouesa-backend/internal/settings"
	"github.com/thouesa/thouesa-backend/pkg/bigquery"
	"github.com/thouesa/thouesa-backend/pkg/bootstrap"
	"github.com/thouesa/thouesa-backend/pkg/config"
	"github.com/thouesa/thouesa-backend/pkg/logger"
	"github.com/thouesa/thouesa-backend/pkg/metrics"
	"github.com/thouesa/thouesa-backend/pkg/outbox"
)

func main() {
	once := flag.Bool("once", false, "run every job a single time and exit")
	flag.Parse()

	ctx := context.Background()
	proc, err := bootstrap.Start(ctx, config.ServiceKindCron)
	if err != nil {
		logger.New(logger.Options{ServiceName: config.ServiceKindCron}).Error(ctx, "startup failed", err)
		os.Exit(1)
	}
	defer proc.Close()
	cfg, logg := proc.Config, proc.Logger

	redisClient, err := proc.Redis(ctx)
	if err != nil {
		proc.Exit(ctx, "startup failed", err)
	}
	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(config.ServiceKindCron), cfg.Cron.LockTTL)
	if err != nil {
		proc.Exit(ctx, "failed to create cron lock", err)
	}
	registry, err := buildRegistry(ctx, proc)
	if err != nil {
		proc.Exit(ctx, "failed to register cron jobs", err)
	}
	location, err := time.LoadLocation(cfg.Cron.Timezone)
	if err != nil {
		proc.Exit(ctx, "invalid cron timezone", err)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Schedule: cfg.Cron.Schedule,
		Location: location,
	})
	if err != nil {
		proc.Exit(ctx, "failed to create cron service", err)
	}

	ctx, stop := proc.SignalContext(map[string]any{"schedule": cfg.Cron.Schedule})
	defer stop()

	if *once {
		logg.Info(ctx, "running cron jobs once")
		if err := service.RunOnce(ctx); err != nil {
			proc.Exit(ctx, "cron run failed", err)
		}
		return
	}

	logg.Info(ctx, "starting cron worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		proc.Exit(ctx, "cron worker stopped unexpectedly", err)
	}
	logg.Info(ctx, "cron worker shutting down gracefully")
}

// buildRegistry wires every scheduled job. The finance snapshot is only
// registered when a GCP project is configured.
func buildRegistry(ctx context.Context, proc *bootstrap.Process) (*cron.Registry, error) {
	cfg, logg, dbClient := proc.Config, proc.Logger, proc.DB
	conn := dbClient.DB()
	outboxRepo := outbox.NewRepository(conn)
	registry := cron.NewRegistry()

	retention, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: outboxRepo,
		Retention:  cfg.Outbox.Retention,
		BatchSize:  cfg.Outbox.RetentionBatch,
	})
	if err != nil {
		return nil, err
	}
	overdue, err := cron.NewReviewOverdueJob(cron.ReviewOverdueJobParams{
		Logger: logg,
		DB:     dbClient,
		Orders: orders.NewRepository(conn),
		Outbox: outbox.NewService(outboxRepo, logg),
		After:  cfg.Cron.ReviewOverdue,
	})
	if err != nil {
		return nil, err
	}
	if err := registry.Register(retention, overdue); err != nil {
		return nil, err
	}

	if cfg.GCP.ProjectID == "" {
		logg.Warn(ctx, "gcp project not configured, finance snapshot disabled")
		return registry, nil
	}

	defaults, err := settings.DefaultsFromConfig(cfg.Pricing)
	if err != nil {
		return nil, err
	}
	settingsSvc, err := settings.NewService(settings.NewRepository(conn), defaults)
	if err != nil {
		return nil, err
	}
	financeSvc, err := finance.NewService(finance.NewRepository(conn), settingsSvc)
	if err != nil {
		return nil, err
	}
	bq, err := bigquery.NewClient(ctx, cfg.GCP, cfg.BigQuery, logg)
	if err != nil {
		return nil, err
	}
	proc.Defer("bigquery", bq.Close)

	writer, err := finance.NewSnapshotWriter(bq, bq.FinanceTable(), finance.DefaultRetryPolicy)
	if err != nil {
		return nil, err
	}
	snapshot, err := cron.NewFinanceSnapshotJob(cron.FinanceSnapshotJobParams{
		Logger:  logg,
		Finance: financeSvc,
		Writer:  writer,
	})
	if err != nil {
		return nil, err
	}
	return registry, registry.Register(snapshot)
}
