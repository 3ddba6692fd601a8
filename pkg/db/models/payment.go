package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thouesa/thouesa-backend/pkg/enums"
)

// Payment is one attempt to pay for an order, backed by receipt evidence.
type Payment struct {
	ID         uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderID    uuid.UUID           `gorm:"column:order_id;type:uuid;not null"`
	Method     enums.PaymentMethod `gorm:"column:method;type:payment_method;not null;default:'MANUAL'"`
	Amount     decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency   enums.Currency      `gorm:"column:currency;type:currency_code;not null"`
	Status     enums.PaymentStatus `gorm:"column:status;type:payment_status;not null;default:'PENDING'"`
	ReceiptURL *string             `gorm:"column:receipt_url"`
	Reference  *string             `gorm:"column:reference"`
	ReviewedBy *uuid.UUID          `gorm:"column:reviewed_by;type:uuid"`
	ReviewedAt *time.Time          `gorm:"column:reviewed_at"`
	ReviewNote *string             `gorm:"column:review_note"`
	Receipts   []PaymentReceipt    `gorm:"foreignKey:PaymentID"`
	CreatedAt  time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// PaymentReceipt is one uploaded proof of payment attached to a payment.
type PaymentReceipt struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	PaymentID uuid.UUID `gorm:"column:payment_id;type:uuid;not null"`
	URL       string    `gorm:"column:url;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
