package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thouesa/thouesa-backend/internal/orders"
	"github.com/thouesa/thouesa-backend/pkg/db/models"
	"github.com/thouesa/thouesa-backend/pkg/enums"
	pkgerrors "github.com/thouesa/thouesa-backend/pkg/errors"
	"github.com/thouesa/thouesa-backend/pkg/logger"
	"github.com/thouesa/thouesa-backend/pkg/outbox"
	"github.com/thouesa/thouesa-backend/pkg/outbox/payloads"
)

const noteReceiptSubmitted = "receipt submitted"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type reviewRecorder interface {
	IncReview(decision string)
}

// Service runs the receipt submission and payment review workflow.
type Service interface {
	SubmitReceipt(ctx context.Context, input SubmitReceiptInput) (*models.Payment, error)
	Review(ctx context.Context, input ReviewInput) (*ReviewResult, error)
	ListForOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error)
}

// ServiceParams wires the payment service.
type ServiceParams struct {
	Repo    Repository
	Orders  orders.Repository
	Engine  *orders.Engine
	Tx      txRunner
	Outbox  outboxPublisher
	Metrics reviewRecorder
	Logger  *logger.Logger
	Now     func() time.Time
}

type service struct {
	repo    Repository
	orders  orders.Repository
	engine  *orders.Engine
	tx      txRunner
	outbox  outboxPublisher
	metrics reviewRecorder
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds the payment service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Engine == nil {
		return nil, fmt.Errorf("transition engine required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:    params.Repo,
		orders:  params.Orders,
		engine:  params.Engine,
		tx:      params.Tx,
		outbox:  params.Outbox,
		metrics: params.Metrics,
		logg:    params.Logger,
		now:     now,
	}, nil
}

func (s *service) SubmitReceipt(ctx context.Context, input SubmitReceiptInput) (*models.Payment, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than zero")
	}
	receiptURL := strings.TrimSpace(input.ReceiptURL)
	if receiptURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "receipt url required")
	}
	method := input.Method
	if method == "" {
		method = enums.PaymentMethodManual
	}
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method").
			WithDetails(map[string]any{"method": input.Method})
	}

	var (
		payment *models.Payment
		applied []orders.Transition
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.loadOrder(ctx, s.orders.WithTx(tx), input.OrderID)
		if err != nil {
			return err
		}
		if !input.Actor.IsAdmin() && order.UserID != input.Actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another customer")
		}
		if order.Status != enums.OrderStatusPendingReview && order.Status != enums.OrderStatusPaymentUnderReview {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, fmt.Sprintf("cannot submit a receipt while order is %s", order.Status)).
				WithDetails(map[string]any{"from": order.Status, "to": enums.OrderStatusPaymentUnderReview})
		}

		repo := s.repo.WithTx(tx)
		existing, err := repo.FindUnderReview(ctx, order.ID)
		switch {
		case err == nil:
			receipt := models.PaymentReceipt{PaymentID: existing.ID, URL: receiptURL}
			if err := repo.AddReceipt(ctx, &receipt); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "append receipt")
			}
			existing.Receipts = append(existing.Receipts, receipt)
			payment = existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			payment = &models.Payment{
				ID:         uuid.New(),
				OrderID:    order.ID,
				Method:     method,
				Amount:     input.Amount,
				Currency:   order.Currency,
				Status:     enums.PaymentStatusUnderReview,
				ReceiptURL: &receiptURL,
				Reference:  trimmed(input.Reference),
				Receipts:   []models.PaymentReceipt{{URL: receiptURL}},
			}
			if err := repo.Create(ctx, payment); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "insert payment")
			}
		default:
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load payment under review")
		}

		if order.Status == enums.OrderStatusPendingReview {
			transition, err := s.engine.Apply(ctx, tx, order, enums.OrderStatusPaymentUnderReview, input.Actor, noteReceiptSubmitted)
			if err != nil {
				return err
			}
			applied = append(applied, transition)
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventPaymentSubmitted,
			AggregateType: enums.AggregatePayment,
			AggregateID:   payment.ID,
			Actor:         input.Actor.Ref(),
			Data: payloads.PaymentSubmittedEvent{
				PaymentID:    payment.ID,
				OrderID:      order.ID,
				OrderNumber:  order.OrderNumber,
				Method:       payment.Method,
				Amount:       payment.Amount,
				Currency:     payment.Currency,
				ReceiptURL:   receiptURL,
				ReceiptCount: len(payment.Receipts),
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "queue payment submitted event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.engine.Committed(ctx, applied...)
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id":   input.OrderID.String(),
			"payment_id": payment.ID.String(),
			"receipts":   len(payment.Receipts),
		})
		s.logg.Info(logCtx, "payment receipt submitted")
	}
	return payment, nil
}

// Review approves or rejects the most recent payment of the order. The order
// transition runs first so a repeated review fails before anything is written.
func (s *service) Review(ctx context.Context, input ReviewInput) (*ReviewResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.WeightFinalKg != nil && !input.WeightFinalKg.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "final weight must be greater than zero")
	}
	if input.PriceFinal != nil && input.PriceFinal.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "final price cannot be negative")
	}

	target := enums.OrderStatusRejected
	paymentStatus := enums.PaymentStatusRejected
	decision := enums.ReviewDecisionReject
	if input.Approve {
		target = enums.OrderStatusConfirmed
		paymentStatus = enums.PaymentStatusConfirmed
		decision = enums.ReviewDecisionApprove
	}
	note := ""
	if input.Note != nil {
		note = strings.TrimSpace(*input.Note)
	}

	var (
		result  ReviewResult
		applied orders.Transition
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		orderRepo := s.orders.WithTx(tx)
		order, err := s.loadOrder(ctx, orderRepo, input.OrderID)
		if err != nil {
			return err
		}
		repo := s.repo.WithTx(tx)
		payment, err := repo.Latest(ctx, order.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNoPayment, "order has no payment to review")
			}
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load payment")
		}

		applied, err = s.engine.Apply(ctx, tx, order, target, input.Actor, note)
		if err != nil {
			return err
		}

		reviewedAt := s.now()
		rows, err := repo.Review(ctx, ReviewUpdate{
			PaymentID:  payment.ID,
			Status:     paymentStatus,
			ReviewedBy: input.Actor.UserID,
			ReviewedAt: reviewedAt,
			Note:       trimmed(input.Note),
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "update payment status")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "payment already reviewed").
				WithDetails(map[string]any{"from": payment.Status, "to": paymentStatus})
		}
		reviewer := input.Actor.UserID
		payment.Status = paymentStatus
		payment.ReviewedBy = &reviewer
		payment.ReviewedAt = &reviewedAt
		payment.ReviewNote = trimmed(input.Note)

		if input.Approve {
			weight := order.WeightDeclaredKg
			if input.WeightFinalKg != nil {
				weight = *input.WeightFinalKg
			}
			price := order.PriceEstimated
			if input.PriceFinal != nil {
				price = input.PriceFinal.Round(2)
			}
			if err := orderRepo.SetFinals(ctx, order.ID, weight, price); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "set final weight and price")
			}
			order.WeightFinalKg = &weight
			order.PriceFinal = &price
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventPaymentReviewed,
			AggregateType: enums.AggregatePayment,
			AggregateID:   payment.ID,
			Actor:         input.Actor.Ref(),
			Data: payloads.PaymentReviewedEvent{
				PaymentID:     payment.ID,
				OrderID:       order.ID,
				OrderNumber:   order.OrderNumber,
				Approved:      input.Approve,
				PaymentStatus: payment.Status,
				OrderStatus:   order.Status,
				WeightFinalKg: order.WeightFinalKg,
				PriceFinal:    order.PriceFinal,
				ReviewedBy:    input.Actor.UserID,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "queue payment reviewed event")
		}

		result = ReviewResult{Order: order, Payment: payment}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.engine.Committed(ctx, applied)
	if s.metrics != nil {
		s.metrics.IncReview(decision.String())
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id":   result.Order.ID.String(),
			"payment_id": result.Payment.ID.String(),
			"decision":   decision,
		})
		s.logg.Info(logCtx, "payment reviewed")
	}
	return &result, nil
}

func (s *service) ListForOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	rows, err := s.repo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list payments")
	}
	return rows, nil
}

func (s *service) loadOrder(ctx context.Context, repo orders.Repository, id uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load order")
	}
	return order, nil
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
