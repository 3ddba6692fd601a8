package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/thouesa/thouesa-backend/pkg/errors"
)

func queryValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

func invalidQuery(key, message string, extra map[string]any) error {
	details := map[string]any{"field": key}
	for k, v := range extra {
		details[k] = v
	}
	return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(details)
}

// ParseQueryInt returns defaultVal when key is absent and rejects values
// outside [min, max].
func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidQuery(key, key+" must be an integer", nil)
	}
	if value < min || value > max {
		return 0, invalidQuery(key, key+" is out of range", map[string]any{"min": min, "max": max})
	}
	return value, nil
}

// ParseQueryDecimal requires key to be a positive decimal such as "2.5".
func ParseQueryDecimal(r *http.Request, key string) (decimal.Decimal, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return decimal.Zero, invalidQuery(key, key+" is required", nil)
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, invalidQuery(key, key+" must be numeric", nil)
	}
	if !value.IsPositive() {
		return decimal.Zero, invalidQuery(key, key+" must be greater than zero", nil)
	}
	return value, nil
}
