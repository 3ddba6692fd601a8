package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettingsSingletonID is the primary key of the only settings row.
const SettingsSingletonID = "singleton"

// Setting holds the global rates, commission and promo configuration.
type Setting struct {
	ID                   string           `gorm:"column:id;primaryKey"`
	ShipJODPerKgJOToDZ   decimal.Decimal  `gorm:"column:ship_jod_per_kg_jo_to_dz;type:numeric(12,3);not null"`
	ShipDZDPerKgDZToJO   decimal.Decimal  `gorm:"column:ship_dzd_per_kg_dz_to_jo;type:numeric(12,3);not null"`
	CommissionPercent    decimal.Decimal  `gorm:"column:commission_percent;type:numeric(5,2);not null"`
	PromoActive          bool             `gorm:"column:promo_active;not null;default:false"`
	PromoName            *string          `gorm:"column:promo_name"`
	PromoDiscountPercent *decimal.Decimal `gorm:"column:promo_discount_percent;type:numeric(5,2)"`
	FacebookURL          *string          `gorm:"column:facebook_url"`
	WhatsappURL          *string          `gorm:"column:whatsapp_url"`
	USDTDZDPrice         *decimal.Decimal `gorm:"column:usdt_dzd_price;type:numeric(12,2)"`
	USDTMarkupPercent    *decimal.Decimal `gorm:"column:usdt_markup_percent;type:numeric(5,2)"`
	CreatedAt            time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
