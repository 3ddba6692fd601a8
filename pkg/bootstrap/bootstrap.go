// Package bootstrap holds the startup sequence shared by every binary:
// environment, config, logger, database and an ordered shutdown stack.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/thouesa/thouesa-backend/pkg/config"
	"github.com/thouesa/thouesa-backend/pkg/db"
	"github.com/thouesa/thouesa-backend/pkg/instance"
	"github.com/thouesa/thouesa-backend/pkg/logger"
	"github.com/thouesa/thouesa-backend/pkg/migrate"
	"github.com/thouesa/thouesa-backend/pkg/redis"
)

// Process is one running binary. Resources opened through it are closed by
// Close in reverse order.
type Process struct {
	Kind   string
	Config *config.Config
	Logger *logger.Logger
	DB     *db.Client

	closers []closer
}

type closer struct {
	name string
	fn   func() error
}

// Start loads .env (when present) and config, builds the service logger,
// opens the database and applies dev migrations.
func Start(ctx context.Context, kind string) (*Process, error) {
	logg := logger.New(logger.Options{ServiceName: kind})
	if err := godotenv.Load(); err != nil {
		logg.Debug(ctx, ".env not loaded, using process environment")
	}

	cfg, err := config.LoadService(kind)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	p := &Process{
		Kind:   kind,
		Config: cfg,
		Logger: logger.New(logger.Options{
			ServiceName: kind,
			Level:       logger.ParseLevel(cfg.App.LogLevel),
			WarnStack:   cfg.App.LogWarnStack,
		}),
	}

	p.DB, err = db.New(ctx, cfg.DB, p.Logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	p.Defer("database", p.DB.Close)

	if err := migrate.MaybeRunDev(ctx, cfg, p.Logger, p.DB); err != nil {
		p.Close()
		return nil, fmt.Errorf("dev migrations: %w", err)
	}
	return p, nil
}

// Redis opens the shared Redis client and schedules it for Close.
func (p *Process) Redis(ctx context.Context) (*redis.Client, error) {
	client, err := redis.New(ctx, p.Config.Redis, p.Logger)
	if err != nil {
		return nil, fmt.Errorf("open redis: %w", err)
	}
	p.Defer("redis", client.Close)
	return client, nil
}

// Defer registers fn to run during Close.
func (p *Process) Defer(name string, fn func() error) {
	p.closers = append(p.closers, closer{name: name, fn: fn})
}

// Close releases resources last-opened first. Failures are logged, not returned.
func (p *Process) Close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		c := p.closers[i]
		if err := c.fn(); err != nil {
			p.Logger.Error(p.Logger.WithField(context.Background(), "resource", c.name), "shutdown.close_failed", err)
		}
	}
	p.closers = nil
}

// SignalContext is canceled on SIGINT or SIGTERM and carries the process
// identity as log fields.
func (p *Process) SignalContext(fields map[string]any) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	base := map[string]any{
		"env":         p.Config.App.Env,
		"serviceKind": p.Kind,
		"instance":    instance.ID(),
	}
	for k, v := range fields {
		base[k] = v
	}
	return p.Logger.WithFields(ctx, base), stop
}

// Exit logs a fatal startup or run error and terminates the process after
// releasing resources.
func (p *Process) Exit(ctx context.Context, msg string, err error) {
	p.Logger.Error(ctx, msg, err)
	p.Close()
	os.Exit(1)
}
