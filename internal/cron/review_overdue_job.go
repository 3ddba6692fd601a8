package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/thouesa/thouesa-backend/pkg/enums"
	"github.com/thouesa/thouesa-backend/pkg/logger"
	"github.com/thouesa/thouesa-backend/pkg/outbox"
	"github.com/thouesa/thouesa-backend/pkg/outbox/payloads"
)

const defaultReviewOverdueAfter = 48 * time.Hour

type ReviewOverdueJobParams struct {
	Logger *logger.Logger
	DB     txRunner
	Orders staleOrderLister
	Outbox dedupEmitter
	After  time.Duration
}

// NewReviewOverdueJob flags orders whose receipt has been under review longer
// than After. Each order is flagged at most once.
func NewReviewOverdueJob(params ReviewOverdueJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	after := params.After
	if after <= 0 {
		after = defaultReviewOverdueAfter
	}
	return &reviewOverdueJob{
		logg:   params.Logger,
		db:     params.DB,
		orders: params.Orders,
		outbox: params.Outbox,
		after:  after,
		now:    time.Now,
	}, nil
}

type reviewOverdueJob struct {
	logg   *logger.Logger
	db     txRunner
	orders staleOrderLister
	outbox dedupEmitter
	after  time.Duration
	now    func() time.Time
}

func (j *reviewOverdueJob) Name() string { return "payment-review-overdue" }

func (j *reviewOverdueJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	cutoff := now.Add(-j.after)
	stale, err := j.orders.ListInStatusBefore(ctx, enums.OrderStatusPaymentUnderReview, cutoff)
	if err != nil {
		return fmt.Errorf("list overdue orders: %w", err)
	}

	var errs error
	flagged := 0
	for _, order := range stale {
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderReviewOverdue,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Data: payloads.OrderReviewOverdueEvent{
				OrderID:      order.ID,
				OrderNumber:  order.OrderNumber,
				WaitingSince: order.UpdatedAt.UTC(),
				WaitingHours: int(now.Sub(order.UpdatedAt).Hours()),
			},
		}
		err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
			return j.outbox.EmitIfNotExists(ctx, tx, event)
		})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("order %s: %w", order.OrderNumber, err))
			continue
		}
		flagged++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":  cutoff,
		"overdue": len(stale),
		"flagged": flagged,
	})
	j.logg.Info(logCtx, "payment review overdue scan complete")
	return errs
}
