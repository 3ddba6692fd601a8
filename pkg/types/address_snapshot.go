package types

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// AddressSnapshot is the sender or receiver address copied onto an order at
// creation. It never changes afterwards.
type AddressSnapshot struct {
	FullName     string  `json:"fullName" validate:"required,max=120"`
	Phone        string  `json:"phone" validate:"required,max=32"`
	Country      string  `json:"country" validate:"required,max=64"`
	City         string  `json:"city" validate:"required,max=64"`
	AddressLine1 string  `json:"addressLine1" validate:"required,max=255"`
	AddressLine2 *string `json:"addressLine2,omitempty" validate:"omitempty,max=255"`
	Label        *string `json:"label,omitempty" validate:"omitempty,max=64"`
}

// Normalize trims whitespace in place.
func (a *AddressSnapshot) Normalize() {
	a.FullName = strings.TrimSpace(a.FullName)
	a.Phone = strings.TrimSpace(a.Phone)
	a.Country = strings.TrimSpace(a.Country)
	a.City = strings.TrimSpace(a.City)
	a.AddressLine1 = strings.TrimSpace(a.AddressLine1)
	if a.AddressLine2 != nil {
		v := strings.TrimSpace(*a.AddressLine2)
		a.AddressLine2 = &v
	}
}

// Validate reports the first missing mandatory field.
func (a AddressSnapshot) Validate() error {
	switch {
	case strings.TrimSpace(a.FullName) == "":
		return fmt.Errorf("address: missing fullName")
	case strings.TrimSpace(a.Phone) == "":
		return fmt.Errorf("address: missing phone")
	case strings.TrimSpace(a.Country) == "":
		return fmt.Errorf("address: missing country")
	case strings.TrimSpace(a.City) == "":
		return fmt.Errorf("address: missing city")
	case strings.TrimSpace(a.AddressLine1) == "":
		return fmt.Errorf("address: missing addressLine1")
	}
	return nil
}

func (a AddressSnapshot) Value() (driver.Value, error) {
	return jsonValue(a)
}

func (a *AddressSnapshot) Scan(value any) error {
	if err := scanJSON(value, a); err != nil {
		return fmt.Errorf("address snapshot: %w", err)
	}
	return nil
}
