package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thouesa/thouesa-backend/pkg/enums"
)

// OrderCreatedEvent announces a new order awaiting review.
type OrderCreatedEvent struct {
	OrderID          uuid.UUID       `json:"orderId"`
	OrderNumber      string          `json:"orderNumber"`
	UserID           uuid.UUID       `json:"userId"`
	Direction        enums.Direction `json:"direction"`
	WeightDeclaredKg decimal.Decimal `json:"weightDeclaredKg"`
	PriceEstimated   decimal.Decimal `json:"priceEstimated"`
	Currency         enums.Currency  `json:"currency"`
	AssistedPurchase bool            `json:"assistedPurchase"`
}

// OrderStatusChangedEvent mirrors one appended status log entry.
type OrderStatusChangedEvent struct {
	OrderID     uuid.UUID         `json:"orderId"`
	OrderNumber string            `json:"orderNumber"`
	UserID      uuid.UUID         `json:"userId"`
	FromStatus  enums.OrderStatus `json:"fromStatus"`
	ToStatus    enums.OrderStatus `json:"toStatus"`
	Note        string            `json:"note"`
	ChangedAt   time.Time         `json:"changedAt"`
}

// OrderReviewOverdueEvent flags an order whose receipt has waited too long.
type OrderReviewOverdueEvent struct {
	OrderID      uuid.UUID `json:"orderId"`
	OrderNumber  string    `json:"orderNumber"`
	WaitingSince time.Time `json:"waitingSince"`
	WaitingHours int       `json:"waitingHours"`
}

// PaymentSubmittedEvent is emitted when a customer uploads a receipt.
type PaymentSubmittedEvent struct {
	PaymentID    uuid.UUID           `json:"paymentId"`
	OrderID      uuid.UUID           `json:"orderId"`
	OrderNumber  string              `json:"orderNumber"`
	Method       enums.PaymentMethod `json:"method"`
	Amount       decimal.Decimal     `json:"amount"`
	Currency     enums.Currency      `json:"currency"`
	ReceiptURL   string              `json:"receiptUrl"`
	ReceiptCount int                 `json:"receiptCount"`
}

// PaymentReviewedEvent records an admin decision on a payment.
type PaymentReviewedEvent struct {
	PaymentID     uuid.UUID           `json:"paymentId"`
	OrderID       uuid.UUID           `json:"orderId"`
	OrderNumber   string              `json:"orderNumber"`
	Approved      bool                `json:"approved"`
	PaymentStatus enums.PaymentStatus `json:"paymentStatus"`
	OrderStatus   enums.OrderStatus   `json:"orderStatus"`
	WeightFinalKg *decimal.Decimal    `json:"weightFinalKg,omitempty"`
	PriceFinal    *decimal.Decimal    `json:"priceFinal,omitempty"`
	ReviewedBy    uuid.UUID           `json:"reviewedBy"`
}
