package main

import (
	"cmp"
	"context"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/thouesa/thouesa-backend/api"
	"github.com/thouesa/thouesa-backend/api/controllers"
	"github.com/thouesa/thouesa-backend/api/routes"
	"github.com/thouesa/thouesa-backend/internal/finance"
	"github.com/thouesa/thouesa-backend/internal/orders"
	"github.com/thouesa/thouesa-backend/internal/payments"
	"github.com/thouesa/thouesa-backend/internal/pricing"
	"github.com/thouesa/thouesa-backend/internal/sequence"
	"github.com/thouesa/thouesa-backend/internal/settings"
	"github.com/thouesa/thouesa-backend/pkg/bootstrap"
	"github.com/thouesa/thouesa-backend/pkg/config"
	"github.com/thouesa/thouesa-backend/pkg/db"
	"github.com/thouesa/thouesa-backend/pkg/logger"
	"github.com/thouesa/thouesa-backend/pkg/metrics"
	"github.com/thouesa/thouesa-backend/pkg/outbox"
	"github.com/thouesa/thouesa-backend/pkg/redis"
)

func main() {
	ctx := context.Background()
	proc, err := bootstrap.Start(ctx, config.ServiceKindAPI)
	if err != nil {
		logger.New(logger.Options{ServiceName: config.ServiceKindAPI}).Error(ctx, "startup failed", err)
		os.Exit(1)
	}
	defer proc.Close()

	redisClient, err := proc.Redis(ctx)
	if err != nil {
		proc.Exit(ctx, "startup failed", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	deps, err := buildDependencies(proc.Config, proc.Logger, proc.DB, redisClient, registry)
	if err != nil {
		proc.Exit(ctx, "failed to wire services", err)
	}

	// PORT is set by the hosting platform and wins over config.
	port := cmp.Or(os.Getenv("PORT"), proc.Config.App.Port)
	addr := ":" + port

	ctx, stop := proc.SignalContext(map[string]any{"addr": addr})
	defer stop()
	proc.Logger.Info(ctx, "starting api server")

	if err := api.Serve(ctx, api.NewServer(addr, routes.NewRouter(deps)), proc.Logger); err != nil {
		proc.Exit(ctx, "api server stopped unexpectedly", err)
	}
}

func buildDependencies(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client, registry *prometheus.Registry) (routes.Dependencies, error) {
	conn := dbClient.DB()

	defaults, err := settings.DefaultsFromConfig(cfg.Pricing)
	if err != nil {
		return routes.Dependencies{}, err
	}
	settingsSvc, err := settings.NewService(settings.NewRepository(conn), defaults)
	if err != nil {
		return routes.Dependencies{}, err
	}

	pricingRepo := pricing.NewRepository(conn)
	pricingEngine, err := pricing.NewEngine(settingsSvc, pricingRepo)
	if err != nil {
		return routes.Dependencies{}, err
	}
	rules, err := pricing.NewRuleService(pricingRepo)
	if err != nil {
		return routes.Dependencies{}, err
	}
	numbers, err := sequence.NewGenerator(sequence.NewRepository(conn))
	if err != nil {
		return routes.Dependencies{}, err
	}

	orderMetrics := metrics.NewOrderMetrics(registry)
	outboxSvc := outbox.NewService(outbox.NewRepository(conn), logg)
	ordersRepo := orders.NewRepository(conn)
	engine, err := orders.NewEngine(ordersRepo, outboxSvc, orderMetrics, logg)
	if err != nil {
		return routes.Dependencies{}, err
	}
	ordersSvc, err := orders.NewService(orders.ServiceParams{
		Repo:    ordersRepo,
		Tx:      dbClient,
		Engine:  engine,
		Pricing: pricingEngine,
		Numbers: numbers,
		Outbox:  outboxSvc,
		Metrics: orderMetrics,
		Logger:  logg,
	})
	if err != nil {
		return routes.Dependencies{}, err
	}
	paymentsSvc, err := payments.NewService(payments.ServiceParams{
		Repo:    payments.NewRepository(conn),
		Orders:  ordersRepo,
		Engine:  engine,
		Tx:      dbClient,
		Outbox:  outboxSvc,
		Metrics: orderMetrics,
		Logger:  logg,
	})
	if err != nil {
		return routes.Dependencies{}, err
	}
	financeSvc, err := finance.NewService(finance.NewRepository(conn), settingsSvc)
	if err != nil {
		return routes.Dependencies{}, err
	}

	return routes.Dependencies{
		Config: cfg,
		Logger: logg,
		Redis:  redisClient,
		Readiness: []controllers.Dependency{
			{Name: "database", Pinger: dbClient},
			{Name: "redis", Pinger: redisClient},
		},
		Gatherer:    registry,
		HTTPMetrics: metrics.NewHTTPMetrics(registry),
		Orders:      ordersSvc,
		Payments:    paymentsSvc,
		Pricing:     pricingEngine,
		Rules:       rules,
		Settings:    settingsSvc,
		Finance:     financeSvc,
	}, nil
}
