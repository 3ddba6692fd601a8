package pricing

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/thouesa/thouesa-backend/pkg/db/models"
	"github.com/thouesa/thouesa-backend/pkg/enums"
	pkgerrors "github.com/thouesa/thouesa-backend/pkg/errors"
)

const moneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// Quote is a priced shipping estimate. TotalPrice is the sum of the rounded
// components so stored values add up exactly.
type Quote struct {
	Direction         enums.Direction  `json:"direction"`
	WeightKg          decimal.Decimal  `json:"weightKg"`
	RatePerKg         decimal.Decimal  `json:"ratePerKg"`
	RateSource        enums.RateSource `json:"rateSource"`
	BasePrice         decimal.Decimal  `json:"basePrice"`
	Commission        decimal.Decimal  `json:"commission"`
	Discount          decimal.Decimal  `json:"discount"`
	TotalPrice        decimal.Decimal  `json:"totalPrice"`
	Currency          enums.Currency   `json:"currency"`
	CommissionPercent decimal.Decimal  `json:"commissionPercent"`
	PromoName         *string          `json:"promoName,omitempty"`
}

// Compute prices weightKg for direction against a settings snapshot and the
// bands for that direction. It performs no I/O.
//
// Bands are inclusive at both ends and the first match wins. Without a
// matching band the flat per-direction rate applies when positive.
func Compute(setting models.Setting, rules []models.PricingRule, direction enums.Direction, weightKg decimal.Decimal) (Quote, error) {
	if !direction.IsValid() {
		return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid direction").
			WithDetails(map[string]any{"direction": direction})
	}
	if !weightKg.IsPositive() {
		return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "weight must be positive").
			WithDetails(map[string]any{"weightKg": weightKg})
	}

	rate, source, err := resolveRate(setting, rules, direction, weightKg)
	if err != nil {
		return Quote{}, err
	}

	rawBase := weightKg.Mul(rate)
	base := rawBase.Round(moneyPlaces)
	commission := rawBase.Mul(setting.CommissionPercent).Div(hundred).Round(moneyPlaces)

	discount := decimal.Zero
	var promoName *string
	if setting.PromoActive && setting.PromoDiscountPercent != nil && setting.PromoDiscountPercent.IsPositive() {
		discount = rawBase.Mul(*setting.PromoDiscountPercent).Div(hundred).Round(moneyPlaces)
		promoName = setting.PromoName
	}

	return Quote{
		Direction:         direction,
		WeightKg:          weightKg,
		RatePerKg:         rate,
		RateSource:        source,
		BasePrice:         base,
		Commission:        commission,
		Discount:          discount,
		TotalPrice:        base.Add(commission).Sub(discount),
		Currency:          direction.Currency(),
		CommissionPercent: setting.CommissionPercent,
		PromoName:         promoName,
	}, nil
}

func resolveRate(setting models.Setting, rules []models.PricingRule, direction enums.Direction, weightKg decimal.Decimal) (decimal.Decimal, enums.RateSource, error) {
	ordered := make([]models.PricingRule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].MinWeight.LessThan(ordered[j].MinWeight)
	})

	bands := 0
	for _, rule := range ordered {
		if rule.Direction != direction || !rule.Active {
			continue
		}
		bands++
		if weightKg.GreaterThanOrEqual(rule.MinWeight) && weightKg.LessThanOrEqual(rule.MaxWeight) {
			return rule.PricePerKg, enums.RateSourceBand, nil
		}
	}

	flat := flatRate(setting, direction)
	if flat.IsPositive() {
		return flat, enums.RateSourceFlat, nil
	}

	details := map[string]any{"direction": direction, "weightKg": weightKg}
	if bands > 0 {
		return decimal.Zero, "", pkgerrors.New(pkgerrors.CodeWeightOutOfRange, "no pricing band covers this weight").
			WithDetails(details)
	}
	return decimal.Zero, "", pkgerrors.New(pkgerrors.CodeNoPricingRule, "no rate configured for direction").
		WithDetails(details)
}

func flatRate(setting models.Setting, direction enums.Direction) decimal.Decimal {
	switch direction {
	case enums.DirectionJOToDZ:
		return setting.ShipJODPerKgJOToDZ
	case enums.DirectionDZToJO:
		return setting.ShipDZDPerKgDZToJO
	default:
		return decimal.Zero
	}
}
