package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/thouesa/thouesa-backend/internal/pricing"
	dbpkg "github.com/thouesa/thouesa-backend/pkg/db"
	"github.com/thouesa/thouesa-backend/pkg/db/models"
	"github.com/thouesa/thouesa-backend/pkg/enums"
	pkgerrors "github.com/thouesa/thouesa-backend/pkg/errors"
	"github.com/thouesa/thouesa-backend/pkg/logger"
	"github.com/thouesa/thouesa-backend/pkg/outbox"
	"github.com/thouesa/thouesa-backend/pkg/outbox/payloads"
	"github.com/thouesa/thouesa-backend/pkg/pagination"
)

const noteOrderCreated = "order created"

type quoter interface {
	Estimate(ctx context.Context, direction enums.Direction, weightKg decimal.Decimal) (pricing.Quote, error)
}

type numberSource interface {
	Next(ctx context.Context, direction enums.Direction) (string, error)
}

type creationRecorder interface {
	IncCreated(direction string)
}

// Service defines the order aggregate operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID, viewer Actor) (*models.Order, error)
	List(ctx context.Context, input ListInput) (*OrderList, error)
	Track(ctx context.Context, orderNumber string) (*TrackingView, error)
	Logs(ctx context.Context, id uuid.UUID) ([]models.OrderStatusLog, error)
	Transition(ctx context.Context, input TransitionInput) (*models.Order, error)
	Ship(ctx context.Context, id uuid.UUID, actor Actor, note string) (*models.Order, error)
}

// ServiceParams wires the order service.
type ServiceParams struct {
	Repo    Repository
	Tx      txRunner
	Engine  *Engine
	Pricing quoter
	Numbers numberSource
	Outbox  outboxPublisher
	Metrics creationRecorder
	Logger  *logger.Logger
}

type service struct {
	repo    Repository
	tx      txRunner
	engine  *Engine
	pricing quoter
	numbers numberSource
	outbox  outboxPublisher
	metrics creationRecorder
	logg    *logger.Logger
}

// NewService builds the order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Engine == nil {
		return nil, fmt.Errorf("transition engine required")
	}
	if params.Pricing == nil {
		return nil, fmt.Errorf("pricing engine required")
	}
	if params.Numbers == nil {
		return nil, fmt.Errorf("order number generator required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		engine:  params.Engine,
		pricing: params.Pricing,
		numbers: params.Numbers,
		outbox:  params.Outbox,
		metrics: params.Metrics,
		logg:    params.Logger,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	if err := validateCreate(&input); err != nil {
		return nil, err
	}

	quote, err := s.pricing.Estimate(ctx, input.Direction, input.WeightDeclaredKg)
	if err != nil {
		return nil, err
	}
	number, err := s.numbers.Next(ctx, input.Direction)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:                 uuid.New(),
		OrderNumber:        number,
		UserID:             input.Actor.UserID,
		Direction:          input.Direction,
		Status:             enums.OrderStatusPendingReview,
		Contents:           strings.TrimSpace(input.Contents),
		WeightDeclaredKg:   input.WeightDeclaredKg,
		Currency:           quote.Currency,
		PriceEstimated:     quote.TotalPrice,
		PriceBase:          quote.BasePrice,
		PriceCommission:    quote.Commission,
		PriceDiscount:      quote.Discount,
		DeclaredValueUSD:   input.DeclaredValueUSD,
		InsuranceRequested: input.InsuranceRequested,
		InsuranceValueUSD:  input.InsuranceValueUSD,
		AssistedPurchase:   input.PurchaseDetails.IsAssisted(),
		PurchaseDetails:    input.PurchaseDetails,
		SenderAddress:      input.SenderAddress,
		ReceiverAddress:    input.ReceiverAddress,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, order); err != nil {
			if dbpkg.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order number already used")
			}
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "insert order")
		}
		entry := &models.OrderStatusLog{
			OrderID:  order.ID,
			ToStatus: enums.OrderStatusPendingReview,
			ActorID:  input.Actor.UserID,
			Note:     noteOrderCreated,
		}
		if err := repo.CreateLog(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "append creation log")
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         input.Actor.Ref(),
			Data: payloads.OrderCreatedEvent{
				OrderID:          order.ID,
				OrderNumber:      order.OrderNumber,
				UserID:           order.UserID,
				Direction:        order.Direction,
				WeightDeclaredKg: order.WeightDeclaredKg,
				PriceEstimated:   order.PriceEstimated,
				Currency:         order.Currency,
				AssistedPurchase: order.AssistedPurchase,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "queue order created event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncCreated(order.Direction.String())
	}
	s.engine.Committed(ctx, Transition{OrderID: order.ID, To: order.Status})
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id":     order.ID.String(),
			"order_number": order.OrderNumber,
			"direction":    order.Direction,
		})
		s.logg.Info(logCtx, "order created")
	}
	return order, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID, viewer Actor) (*models.Order, error) {
	order, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if !viewer.IsAdmin() && order.UserID != viewer.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another customer")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*OrderList, error) {
	filters := ListFilters{Status: input.Status, Direction: input.Direction}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	if input.Direction != nil && !input.Direction.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid direction filter")
	}
	if _, err := pagination.ParseCursor(input.Params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if !input.Viewer.IsAdmin() {
		if input.Viewer.UserID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
		}
		userID := input.Viewer.UserID
		filters.UserID = &userID
	}
	list, err := s.repo.List(ctx, filters, input.Params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list orders")
	}
	return list, nil
}

func (s *service) Track(ctx context.Context, orderNumber string) (*TrackingView, error) {
	orderNumber = strings.ToUpper(strings.TrimSpace(orderNumber))
	if orderNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number required")
	}
	order, err := s.repo.FindByNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load order")
	}
	logs, err := s.repo.ListLogs(ctx, order.ID, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load status history")
	}
	history := make([]TrackingEntry, 0, len(logs))
	for _, entry := range logs {
		history = append(history, TrackingEntry{Status: entry.ToStatus, At: entry.CreatedAt})
	}
	return &TrackingView{
		OrderNumber: order.OrderNumber,
		Direction:   order.Direction,
		Status:      order.Status,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
		History:     history,
	}, nil
}

func (s *service) Logs(ctx context.Context, id uuid.UUID) ([]models.OrderStatusLog, error) {
	if _, err := s.load(ctx, s.repo, id); err != nil {
		return nil, err
	}
	logs, err := s.repo.ListLogs(ctx, id, true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load status history")
	}
	return logs, nil
}

func (s *service) Transition(ctx context.Context, input TransitionInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status").
			WithDetails(map[string]any{"status": input.Target})
	}
	if input.Target == enums.OrderStatusPaymentUnderReview {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment review starts with a receipt submission").
			WithDetails(map[string]any{"status": input.Target})
	}

	var (
		order   *models.Order
		applied Transition
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.load(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		applied, err = s.engine.Apply(ctx, tx, loaded, input.Target, input.Actor, input.Note)
		if err != nil {
			return err
		}
		if input.Target == enums.OrderStatusConfirmed && (loaded.WeightFinalKg == nil || loaded.PriceFinal == nil) {
			weight := loaded.WeightDeclaredKg
			if loaded.WeightFinalKg != nil {
				weight = *loaded.WeightFinalKg
			}
			price := loaded.PriceEstimated
			if loaded.PriceFinal != nil {
				price = *loaded.PriceFinal
			}
			if err := repo.SetFinals(ctx, loaded.ID, weight, price); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "set final weight and price")
			}
			loaded.WeightFinalKg = &weight
			loaded.PriceFinal = &price
		}
		order = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.engine.Committed(ctx, applied)
	return order, nil
}

func (s *service) Ship(ctx context.Context, id uuid.UUID, actor Actor, note string) (*models.Order, error) {
	return s.Transition(ctx, TransitionInput{
		OrderID: id,
		Target:  enums.OrderStatusShipped,
		Actor:   actor,
		Note:    note,
	})
}

func (s *service) load(ctx context.Context, repo Repository, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load order")
	}
	return order, nil
}

func validateCreate(input *CreateInput) error {
	if input.Actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Direction.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid direction").
			WithDetails(map[string]any{"direction": input.Direction})
	}
	if strings.TrimSpace(input.Contents) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "contents required")
	}
	if !input.WeightDeclaredKg.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "weight must be greater than zero")
	}
	input.SenderAddress.Normalize()
	input.ReceiverAddress.Normalize()
	if err := input.SenderAddress.Validate(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sender address")
	}
	if err := input.ReceiverAddress.Validate(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid receiver address")
	}
	if input.DeclaredValueUSD != nil && input.DeclaredValueUSD.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "declared value cannot be negative")
	}
	if input.InsuranceRequested {
		if input.InsuranceValueUSD == nil || !input.InsuranceValueUSD.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, "insurance value required when insurance is requested")
		}
	} else {
		input.InsuranceValueUSD = nil
	}
	return nil
}
