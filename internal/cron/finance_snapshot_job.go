package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/thouesa/thouesa-backend/internal/finance"
	"github.com/thouesa/thouesa-backend/pkg/logger"
)

type FinanceSnapshotJobParams struct {
	Logger  *logger.Logger
	Finance revenueReporter
	Writer  snapshotWriter
}

// NewFinanceSnapshotJob exports the previous UTC day's revenue report.
func NewFinanceSnapshotJob(params FinanceSnapshotJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Finance == nil {
		return nil, fmt.Errorf("finance service required")
	}
	if params.Writer == nil {
		return nil, fmt.Errorf("snapshot writer required")
	}
	return &financeSnapshotJob{
		logg:    params.Logger,
		finance: params.Finance,
		writer:  params.Writer,
		now:     time.Now,
	}, nil
}

type financeSnapshotJob struct {
	logg    *logger.Logger
	finance revenueReporter
	writer  snapshotWriter
	now     func() time.Time
}

func (j *financeSnapshotJob) Name() string { return "finance-daily-snapshot" }

func (j *financeSnapshotJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	start := day
	end := day.Add(24*time.Hour - time.Nanosecond)

	report, err := j.finance.RevenueReport(ctx, &start, &end)
	if err != nil {
		return fmt.Errorf("revenue report for %s: %w", day.Format("2006-01-02"), err)
	}
	rows := finance.SnapshotRows(day, report, now)
	if err := j.writer.Write(ctx, rows); err != nil {
		return fmt.Errorf("write snapshot for %s: %w", day.Format("2006-01-02"), err)
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"day":         day.Format("2006-01-02"),
		"rows":        len(rows),
		"order_count": report.OrderCount,
	})
	j.logg.Info(logCtx, "finance snapshot exported")
	return nil
}
