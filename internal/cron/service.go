package cron

import (
	"context"
	"fmt"
	"strings"
	"time"

	robfig "github.com/robfig/cron/v3"
	"go.uber.org/multierr"

	"github.com/thouesa/thouesa-backend/pkg/logger"
)

const defaultSchedule = "0 */15 * * * *"

type jobMetrics interface {
	ObserveRun(job string, took time.Duration, err error)
}

// ServiceParams configure the cron service.
type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Metrics  jobMetrics
	// Schedule is a six field cron expression (seconds first).
	Schedule string
	Location *time.Location
}

// Service executes registered jobs on a cron schedule, one replica at a time.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	lock     Lock
	metrics  jobMetrics
	schedule string
	location *time.Location
}

// NewService builds a cron service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Lock == nil {
		return nil, fmt.Errorf("lock required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	schedule := strings.TrimSpace(params.Schedule)
	if schedule == "" {
		schedule = defaultSchedule
	}
	if _, err := robfig.NewParser(parserOptions).Parse(schedule); err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", schedule, err)
	}
	location := params.Location
	if location == nil {
		location = time.UTC
	}
	return &Service{
		logg:     params.Logger,
		registry: registry,
		lock:     params.Lock,
		metrics:  params.Metrics,
		schedule: schedule,
		location: location,
	}, nil
}

const parserOptions = robfig.Second | robfig.Minute | robfig.Hour | robfig.Dom | robfig.Month | robfig.Dow | robfig.Descriptor

// Run schedules RunOnce until the context is canceled, then waits for the
// running cycle to finish.
func (s *Service) Run(ctx context.Context) error {
	scheduler := robfig.New(
		robfig.WithParser(robfig.NewParser(parserOptions)),
		robfig.WithLocation(s.location),
		robfig.WithChain(robfig.SkipIfStillRunning(robfig.DiscardLogger)),
	)
	if _, err := scheduler.AddFunc(s.schedule, func() {
		if err := s.RunOnce(ctx); err != nil {
			s.logg.Error(ctx, "scheduled run failed", err)
		}
	}); err != nil {
		return fmt.Errorf("register schedule: %w", err)
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{"schedule": s.schedule, "jobs": s.registry.Names()})
	s.logg.Info(logCtx, "cron scheduler started")
	scheduler.Start()

	<-ctx.Done()
	stopped := scheduler.Stop()
	<-stopped.Done()
	s.logg.Info(ctx, "cron scheduler stopped")
	return ctx.Err()
}

// RunOnce takes the lock and runs every job. Job failures do not stop the
// cycle; they are combined into the returned error.
func (s *Service) RunOnce(ctx context.Context) error {
	lease, err := s.lock.TryAcquire(ctx)
	if err != nil {
		return fmt.Errorf("lock acquire: %w", err)
	}
	if lease == nil {
		s.logg.Info(ctx, "another cron instance is running; skipping this cycle")
		return nil
	}
	defer func() {
		if relErr := lease.Release(context.WithoutCancel(ctx)); relErr != nil {
			s.logg.Error(ctx, "failed to release cron lock", relErr)
		}
	}()

	s.logg.Info(ctx, "scheduled run starting")
	var errs error
	for _, job := range s.registry.Jobs() {
		if err := s.runJob(ctx, job); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", job.Name(), err))
		}
	}
	s.logg.Info(ctx, "scheduled run complete")
	return errs
}

func (s *Service) runJob(ctx context.Context, job Job) error {
	jobCtx := s.logg.WithFields(ctx, map[string]any{"job": job.Name(), "event": "cron.job"})
	s.logg.Info(jobCtx, "job start")
	start := time.Now()
	err := job.Run(jobCtx)
	duration := time.Since(start)
	if s.metrics != nil {
		s.metrics.ObserveRun(job.Name(), duration, err)
	}
	jobCtx = s.logg.WithField(jobCtx, "duration_ms", duration.Milliseconds())
	if err != nil {
		s.logg.Error(jobCtx, "job failed", err)
		return err
	}
	s.logg.Info(jobCtx, "job completed")
	return nil
}
