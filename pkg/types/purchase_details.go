package types

import (
	"database/sql/driver"
	"strings"
)

// PurchaseDetails describes an assisted purchase request. The payload is
// opaque to the order lifecycle.
type PurchaseDetails struct {
	ShippingMethod   string  `json:"shippingMethod,omitempty" validate:"omitempty,max=64"`
	PurchasePlatform string  `json:"purchasePlatform,omitempty" validate:"omitempty,max=64"`
	ProductURL       *string `json:"productUrl,omitempty" validate:"omitempty,url"`
	Notes            *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// IsAssisted reports whether the customer asked us to buy on their behalf.
func (p *PurchaseDetails) IsAssisted() bool {
	return p != nil && strings.TrimSpace(p.PurchasePlatform) != ""
}

func (p *PurchaseDetails) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return jsonValue(p)
}

func (p *PurchaseDetails) Scan(value any) error {
	return scanJSON(value, p)
}
