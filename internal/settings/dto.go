package settings

import (
	"github.com/shopspring/decimal"

	"github.com/thouesa/thouesa-backend/pkg/config"
	"github.com/thouesa/thouesa-backend/pkg/db/models"
)

// Defaults seeds the settings row the first time it is read.
type Defaults struct {
	JODPerKgJOToDZ    decimal.Decimal
	DZDPerKgDZToJO    decimal.Decimal
	CommissionPercent decimal.Decimal
}

// DefaultsFromConfig parses the configured seed values.
func DefaultsFromConfig(cfg config.PricingConfig) (Defaults, error) {
	jod, dzd, commission, err := cfg.Defaults()
	if err != nil {
		return Defaults{}, err
	}
	return Defaults{JODPerKgJOToDZ: jod, DZDPerKgDZToJO: dzd, CommissionPercent: commission}, nil
}

// UpdateInput carries a partial settings update; nil fields are left as-is.
type UpdateInput struct {
	ShipJODPerKgJOToDZ   *decimal.Decimal `json:"shipJodPerKgJoToDz"`
	ShipDZDPerKgDZToJO   *decimal.Decimal `json:"shipDzdPerKgDzToJo"`
	CommissionPercent    *decimal.Decimal `json:"commissionPercent"`
	PromoActive          *bool            `json:"promoActive"`
	PromoName            *string          `json:"promoName"`
	PromoDiscountPercent *decimal.Decimal `json:"promoDiscountPercent"`
	FacebookURL          *string          `json:"facebookUrl" validate:"omitempty,url"`
	WhatsappURL          *string          `json:"whatsappUrl" validate:"omitempty,url"`
	USDTDZDPrice         *decimal.Decimal `json:"usdtDzdPrice"`
	USDTMarkupPercent    *decimal.Decimal `json:"usdtMarkupPercent"`
}

// View is the admin representation of the settings row.
type View struct {
	ShipJODPerKgJOToDZ   decimal.Decimal  `json:"shipJodPerKgJoToDz"`
	ShipDZDPerKgDZToJO   decimal.Decimal  `json:"shipDzdPerKgDzToJo"`
	CommissionPercent    decimal.Decimal  `json:"commissionPercent"`
	PromoActive          bool             `json:"promoActive"`
	PromoName            *string          `json:"promoName,omitempty"`
	PromoDiscountPercent *decimal.Decimal `json:"promoDiscountPercent,omitempty"`
	FacebookURL          *string          `json:"facebookUrl,omitempty"`
	WhatsappURL          *string          `json:"whatsappUrl,omitempty"`
	USDTDZDPrice         *decimal.Decimal `json:"usdtDzdPrice,omitempty"`
	USDTMarkupPercent    *decimal.Decimal `json:"usdtMarkupPercent,omitempty"`
}

// PublicView is what the customer portal may see. Commission is folded into
// quotes and not exposed directly.
type PublicView struct {
	ShipJODPerKgJOToDZ   decimal.Decimal  `json:"shipJodPerKgJoToDz"`
	ShipDZDPerKgDZToJO   decimal.Decimal  `json:"shipDzdPerKgDzToJo"`
	PromoActive          bool             `json:"promoActive"`
	PromoName            *string          `json:"promoName,omitempty"`
	PromoDiscountPercent *decimal.Decimal `json:"promoDiscountPercent,omitempty"`
	FacebookURL          *string          `json:"facebookUrl,omitempty"`
	WhatsappURL          *string          `json:"whatsappUrl,omitempty"`
	USDTSellPriceDZD     *decimal.Decimal `json:"usdtSellPriceDzd,omitempty"`
}

// ToView maps the model to the admin representation.
func ToView(s models.Setting) View {
	return View{
		ShipJODPerKgJOToDZ:   s.ShipJODPerKgJOToDZ,
		ShipDZDPerKgDZToJO:   s.ShipDZDPerKgDZToJO,
		CommissionPercent:    s.CommissionPercent,
		PromoActive:          s.PromoActive,
		PromoName:            s.PromoName,
		PromoDiscountPercent: s.PromoDiscountPercent,
		FacebookURL:          s.FacebookURL,
		WhatsappURL:          s.WhatsappURL,
		USDTDZDPrice:         s.USDTDZDPrice,
		USDTMarkupPercent:    s.USDTMarkupPercent,
	}
}

// ToPublicView maps the model to the public representation. The USDT sell
// price is the base price plus the markup, rounded to 2 decimals.
func ToPublicView(s models.Setting) PublicView {
	view := PublicView{
		ShipJODPerKgJOToDZ: s.ShipJODPerKgJOToDZ,
		ShipDZDPerKgDZToJO: s.ShipDZDPerKgDZToJO,
		PromoActive:        s.PromoActive,
		FacebookURL:        s.FacebookURL,
		WhatsappURL:        s.WhatsappURL,
	}
	if s.PromoActive {
		view.PromoName = s.PromoName
		view.PromoDiscountPercent = s.PromoDiscountPercent
	}
	if s.USDTDZDPrice != nil {
		price := *s.USDTDZDPrice
		if s.USDTMarkupPercent != nil {
			price = price.Add(price.Mul(*s.USDTMarkupPercent).Div(decimal.NewFromInt(100)))
		}
		price = price.Round(2)
		view.USDTSellPriceDZD = &price
	}
	return view
}
