package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thouesa/thouesa-backend/pkg/enums"
	"github.com/thouesa/thouesa-backend/pkg/types"
)

// Order is a customer shipping order between the two corridors.
type Order struct {
	ID                 uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber        string                 `gorm:"column:order_number;not null;uniqueIndex"`
	UserID             uuid.UUID              `gorm:"column:user_id;type:uuid;not null"`
	Direction          enums.Direction        `gorm:"column:direction;type:shipping_direction;not null"`
	Status             enums.OrderStatus      `gorm:"column:status;type:order_status;not null;default:'PENDING_REVIEW'"`
	Contents           string                 `gorm:"column:contents;not null"`
	WeightDeclaredKg   decimal.Decimal        `gorm:"column:weight_declared_kg;type:numeric(10,3);not null"`
	WeightFinalKg      *decimal.Decimal       `gorm:"column:weight_final_kg;type:numeric(10,3)"`
	Currency           enums.Currency         `gorm:"column:currency;type:currency_code;not null"`
	PriceEstimated     decimal.Decimal        `gorm:"column:price_estimated;type:numeric(12,2);not null"`
	PriceBase          decimal.Decimal        `gorm:"column:price_base;type:numeric(12,2);not null"`
	PriceCommission    decimal.Decimal        `gorm:"column:price_commission;type:numeric(12,2);not null"`
	PriceDiscount      decimal.Decimal        `gorm:"column:price_discount;type:numeric(12,2);not null"`
	PriceFinal         *decimal.Decimal       `gorm:"column:price_final;type:numeric(12,2)"`
	DeclaredValueUSD   *decimal.Decimal       `gorm:"column:declared_value_usd;type:numeric(12,2)"`
	InsuranceRequested bool                   `gorm:"column:insurance_requested;not null;default:false"`
	InsuranceValueUSD  *decimal.Decimal       `gorm:"column:insurance_value_usd;type:numeric(12,2)"`
	AssistedPurchase   bool                   `gorm:"column:assisted_purchase;not null;default:false"`
	PurchaseDetails    *types.PurchaseDetails `gorm:"column:purchase_details;type:jsonb"`
	SenderAddress      types.AddressSnapshot  `gorm:"column:sender_address;type:jsonb;not null"`
	ReceiverAddress    types.AddressSnapshot  `gorm:"column:receiver_address;type:jsonb;not null"`
	CreatedAt          time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

// RealizedAmount is the final price when set, otherwise the estimate.
func (o Order) RealizedAmount() decimal.Decimal {
	if o.PriceFinal != nil {
		return *o.PriceFinal
	}
	return o.PriceEstimated
}
