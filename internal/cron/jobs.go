package cron

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/thouesa/thouesa-backend/internal/finance"
	"github.com/thouesa/thouesa-backend/pkg/db/models"
	"github.com/thouesa/thouesa-backend/pkg/enums"
	"github.com/thouesa/thouesa-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type staleOrderLister interface {
	ListInStatusBefore(ctx context.Context, status enums.OrderStatus, cutoff time.Time) ([]models.Order, error)
}

type dedupEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type revenueReporter interface {
	RevenueReport(ctx context.Context, start, end *time.Time) (*finance.Report, error)
}

type snapshotWriter interface {
	Write(ctx context.Context, rows []finance.SnapshotRow) error
}
