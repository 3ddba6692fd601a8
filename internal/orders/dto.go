package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thouesa/thouesa-backend/pkg/db/models"
	"github.com/thouesa/thouesa-backend/pkg/enums"
	"github.com/thouesa/thouesa-backend/pkg/outbox"
	"github.com/thouesa/thouesa-backend/pkg/pagination"
	"github.com/thouesa/thouesa-backend/pkg/types"
)

// Actor identifies who is acting on an order.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// IsAdmin reports whether the actor carries the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.UserRoleAdmin
}

// Ref converts the actor into the outbox envelope form.
func (a Actor) Ref() *outbox.ActorRef {
	return &outbox.ActorRef{UserID: a.UserID, Role: a.Role.String()}
}

// CreateInput carries a new shipping order.
type CreateInput struct {
	Actor              Actor
	Direction          enums.Direction
	Contents           string
	WeightDeclaredKg   decimal.Decimal
	DeclaredValueUSD   *decimal.Decimal
	InsuranceRequested bool
	InsuranceValueUSD  *decimal.Decimal
	PurchaseDetails    *types.PurchaseDetails
	SenderAddress      types.AddressSnapshot
	ReceiverAddress    types.AddressSnapshot
}

// TransitionInput asks the engine to move an order to a new status.
type TransitionInput struct {
	OrderID uuid.UUID
	Target  enums.OrderStatus
	Actor   Actor
	Note    string
}

// ListFilters narrows order listings.
type ListFilters struct {
	UserID    *uuid.UUID
	Status    *enums.OrderStatus
	Direction *enums.Direction
}

// ListInput is the service-level list request.
type ListInput struct {
	Viewer    Actor
	Status    *enums.OrderStatus
	Direction *enums.Direction
	Params    pagination.Params
}

// OrderList is one page of orders.
type OrderList struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"nextCursor,omitempty"`
}

// OrderView is the customer and admin representation of an order.
type OrderView struct {
	ID                 uuid.UUID              `json:"id"`
	OrderNumber        string                 `json:"orderNumber"`
	UserID             uuid.UUID              `json:"userId"`
	Direction          enums.Direction        `json:"direction"`
	Status             enums.OrderStatus      `json:"status"`
	Contents           string                 `json:"contents"`
	WeightDeclaredKg   decimal.Decimal        `json:"weightDeclaredKg"`
	WeightFinalKg      *decimal.Decimal       `json:"weightFinalKg,omitempty"`
	Currency           enums.Currency         `json:"currency"`
	PriceEstimated     decimal.Decimal        `json:"priceEstimated"`
	PriceBase          decimal.Decimal        `json:"priceBase"`
	PriceCommission    decimal.Decimal        `json:"priceCommission"`
	PriceDiscount      decimal.Decimal        `json:"priceDiscount"`
	PriceFinal         *decimal.Decimal       `json:"priceFinal,omitempty"`
	DeclaredValueUSD   *decimal.Decimal       `json:"declaredValueUsd,omitempty"`
	InsuranceRequested bool                   `json:"insuranceRequested"`
	InsuranceValueUSD  *decimal.Decimal       `json:"insuranceValueUsd,omitempty"`
	AssistedPurchase   bool                   `json:"assistedPurchase"`
	PurchaseDetails    *types.PurchaseDetails `json:"purchaseDetails,omitempty"`
	SenderAddress      types.AddressSnapshot  `json:"senderAddress"`
	ReceiverAddress    types.AddressSnapshot  `json:"receiverAddress"`
	AllowedNext        []enums.OrderStatus    `json:"allowedNext"`
	CreatedAt          time.Time              `json:"createdAt"`
	UpdatedAt          time.Time              `json:"updatedAt"`
}

// ToView maps the model into its JSON view.
func ToView(o models.Order) OrderView {
	return OrderView{
		ID:                 o.ID,
		OrderNumber:        o.OrderNumber,
		UserID:             o.UserID,
		Direction:          o.Direction,
		Status:             o.Status,
		Contents:           o.Contents,
		WeightDeclaredKg:   o.WeightDeclaredKg,
		WeightFinalKg:      o.WeightFinalKg,
		Currency:           o.Currency,
		PriceEstimated:     o.PriceEstimated,
		PriceBase:          o.PriceBase,
		PriceCommission:    o.PriceCommission,
		PriceDiscount:      o.PriceDiscount,
		PriceFinal:         o.PriceFinal,
		DeclaredValueUSD:   o.DeclaredValueUSD,
		InsuranceRequested: o.InsuranceRequested,
		InsuranceValueUSD:  o.InsuranceValueUSD,
		AssistedPurchase:   o.AssistedPurchase,
		PurchaseDetails:    o.PurchaseDetails,
		SenderAddress:      o.SenderAddress,
		ReceiverAddress:    o.ReceiverAddress,
		AllowedNext:        AllowedTargets(o.Status),
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
}

// ToViews maps a page of orders.
func ToViews(rows []models.Order) []OrderView {
	out := make([]OrderView, 0, len(rows))
	for _, row := range rows {
		out = append(out, ToView(row))
	}
	return out
}

// LogView is one status history entry.
type LogView struct {
	ID         uuid.UUID          `json:"id"`
	FromStatus *enums.OrderStatus `json:"fromStatus"`
	ToStatus   enums.OrderStatus  `json:"toStatus"`
	ActorID    uuid.UUID          `json:"actorId"`
	Note       string             `json:"note"`
	CreatedAt  time.Time          `json:"createdAt"`
}

// ToLogViews maps status log rows.
func ToLogViews(rows []models.OrderStatusLog) []LogView {
	out := make([]LogView, 0, len(rows))
	for _, row := range rows {
		out = append(out, LogView{
			ID:         row.ID,
			FromStatus: row.FromStatus,
			ToStatus:   row.ToStatus,
			ActorID:    row.ActorID,
			Note:       row.Note,
			CreatedAt:  row.CreatedAt,
		})
	}
	return out
}

// TrackingEntry is a status milestone shown on the public tracking page.
type TrackingEntry struct {
	Status enums.OrderStatus `json:"status"`
	At     time.Time         `json:"at"`
}

// TrackingView is the public, address and price free order summary.
type TrackingView struct {
	OrderNumber string            `json:"orderNumber"`
	Direction   enums.Direction   `json:"direction"`
	Status      enums.OrderStatus `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
	History     []TrackingEntry   `json:"history"`
}
