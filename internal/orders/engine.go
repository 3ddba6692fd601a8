package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thouesa/thouesa-backend/pkg/db/models"
	"github.com/thouesa/thouesa-backend/pkg/enums"
	pkgerrors "github.com/thouesa/thouesa-backend/pkg/errors"
	"github.com/thouesa/thouesa-backend/pkg/logger"
	"github.com/thouesa/thouesa-backend/pkg/outbox"
	"github.com/thouesa/thouesa-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type transitionRecorder interface {
	IncTransition(from, to string)
}

// Transition records one applied status change.
type Transition struct {
	OrderID uuid.UUID
	From    enums.OrderStatus
	To      enums.OrderStatus
}

// Engine validates status changes against the lifecycle and persists them
// with the audit log and outbox event in the caller's transaction.
type Engine struct {
	repo    Repository
	outbox  outboxPublisher
	metrics transitionRecorder
	logg    *logger.Logger
}

// NewEngine constructs the transition engine. Metrics and logger are optional.
func NewEngine(repo Repository, outbox outboxPublisher, metrics transitionRecorder, logg *logger.Logger) (*Engine, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &Engine{repo: repo, outbox: outbox, metrics: metrics, logg: logg}, nil
}

// Apply moves order to target inside tx. The order is updated with a
// compare-and-set on its current status; the log row and the outbox event are
// written in the same transaction. On success order.Status holds the target.
func (e *Engine) Apply(ctx context.Context, tx *gorm.DB, order *models.Order, target enums.OrderStatus, actor Actor, note string) (Transition, error) {
	if tx == nil {
		return Transition{}, pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	if order == nil {
		return Transition{}, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if !target.IsValid() {
		return Transition{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid status").
			WithDetails(map[string]any{"status": target})
	}
	from := order.Status
	if !CanTransition(from, target) {
		return Transition{}, pkgerrors.New(pkgerrors.CodeInvalidTransition, fmt.Sprintf("cannot move order from %s to %s", from, target)).
			WithDetails(map[string]any{"from": from, "to": target})
	}

	repo := e.repo.WithTx(tx)
	rows, err := repo.UpdateStatusCAS(ctx, order.ID, from, target)
	if err != nil {
		return Transition{}, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "update order status")
	}
	if rows == 0 {
		return Transition{}, pkgerrors.New(pkgerrors.CodeConcurrencyConflict, "order status changed concurrently").
			WithDetails(map[string]any{"expected": from})
	}

	note = strings.TrimSpace(note)
	if note == "" {
		note = fmt.Sprintf("status changed from %s to %s", from, target)
	}
	previous := from
	entry := &models.OrderStatusLog{
		OrderID:    order.ID,
		FromStatus: &previous,
		ToStatus:   target,
		ActorID:    actor.UserID,
		Note:       note,
	}
	if err := repo.CreateLog(ctx, entry); err != nil {
		return Transition{}, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "append status log")
	}

	changedAt := entry.CreatedAt
	if changedAt.IsZero() {
		changedAt = time.Now().UTC()
	}
	event := outbox.DomainEvent{
		EventType:     enums.EventOrderStatusChanged,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actor.Ref(),
		Data: payloads.OrderStatusChangedEvent{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			UserID:      order.UserID,
			FromStatus:  from,
			ToStatus:    target,
			Note:        note,
			ChangedAt:   changedAt,
		},
	}
	if err := e.outbox.Emit(ctx, tx, event); err != nil {
		return Transition{}, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "queue status event")
	}

	order.Status = target
	order.UpdatedAt = changedAt
	return Transition{OrderID: order.ID, From: from, To: target}, nil
}

// Committed records transitions once their transaction has committed. An
// empty From marks order creation.
func (e *Engine) Committed(ctx context.Context, transitions ...Transition) {
	for _, t := range transitions {
		if e.metrics != nil {
			e.metrics.IncTransition(t.From.String(), t.To.String())
		}
		if e.logg != nil && t.From != "" {
			logCtx := e.logg.WithFields(ctx, map[string]any{
				"order_id": t.OrderID.String(),
				"from":     t.From,
				"to":       t.To,
			})
			e.logg.Info(logCtx, "order status changed")
		}
	}
}
