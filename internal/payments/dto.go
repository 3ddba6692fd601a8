package payments

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thouesa/thouesa-backend/internal/orders"
	"github.com/thouesa/thouesa-backend/pkg/db/models"
	"github.com/thouesa/thouesa-backend/pkg/enums"
)

// SubmitReceiptInput is a customer's proof of payment for an order.
type SubmitReceiptInput struct {
	OrderID    uuid.UUID
	Actor      orders.Actor
	Amount     decimal.Decimal
	Method     enums.PaymentMethod
	ReceiptURL string
	Reference  *string
}

// ReviewInput is the admin decision on the latest payment of an order.
type ReviewInput struct {
	OrderID       uuid.UUID
	Approve       bool
	WeightFinalKg *decimal.Decimal
	PriceFinal    *decimal.Decimal
	Actor         orders.Actor
	Note          *string
}

// ReviewResult carries the order and payment after a review.
type ReviewResult struct {
	Order   *models.Order
	Payment *models.Payment
}

// ReceiptView is one uploaded receipt.
type ReceiptView struct {
	ID        uuid.UUID `json:"id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

// PaymentView is the JSON representation of a payment.
type PaymentView struct {
	ID         uuid.UUID           `json:"id"`
	OrderID    uuid.UUID           `json:"orderId"`
	Method     enums.PaymentMethod `json:"method"`
	Amount     decimal.Decimal     `json:"amount"`
	Currency   enums.Currency      `json:"currency"`
	Status     enums.PaymentStatus `json:"status"`
	ReceiptURL *string             `json:"receiptUrl,omitempty"`
	Reference  *string             `json:"reference,omitempty"`
	ReviewedBy *uuid.UUID          `json:"reviewedBy,omitempty"`
	ReviewedAt *time.Time          `json:"reviewedAt,omitempty"`
	ReviewNote *string             `json:"reviewNote,omitempty"`
	Receipts   []ReceiptView       `json:"receipts"`
	CreatedAt  time.Time           `json:"createdAt"`
}

// ToView maps a payment model.
func ToView(p models.Payment) PaymentView {
	receipts := make([]ReceiptView, 0, len(p.Receipts))
	for _, r := range p.Receipts {
		receipts = append(receipts, ReceiptView{ID: r.ID, URL: r.URL, CreatedAt: r.CreatedAt})
	}
	return PaymentView{
		ID:         p.ID,
		OrderID:    p.OrderID,
		Method:     p.Method,
		Amount:     p.Amount,
		Currency:   p.Currency,
		Status:     p.Status,
		ReceiptURL: p.ReceiptURL,
		Reference:  p.Reference,
		ReviewedBy: p.ReviewedBy,
		ReviewedAt: p.ReviewedAt,
		ReviewNote: p.ReviewNote,
		Receipts:   receipts,
		CreatedAt:  p.CreatedAt,
	}
}

// ToViews maps a list of payments.
func ToViews(rows []models.Payment) []PaymentView {
	out := make([]PaymentView, 0, len(rows))
	for _, row := range rows {
		out = append(out, ToView(row))
	}
	return out
}
