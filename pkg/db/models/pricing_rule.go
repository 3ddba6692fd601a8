package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thouesa/thouesa-backend/pkg/enums"
)

// PricingRule is one weight band of the per-direction rate table.
type PricingRule struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Direction  enums.Direction `gorm:"column:direction;type:shipping_direction;not null"`
	MinWeight  decimal.Decimal `gorm:"column:min_weight;type:numeric(10,3);not null"`
	MaxWeight  decimal.Decimal `gorm:"column:max_weight;type:numeric(10,3);not null"`
	PricePerKg decimal.Decimal `gorm:"column:price_per_kg;type:numeric(12,3);not null"`
	Active     bool            `gorm:"column:active;not null;default:true"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
