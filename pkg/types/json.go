package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// jsonValue encodes v for a JSONB column. Drivers accept text for jsonb, and
// sqlite stores it as TEXT.
func jsonValue(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// scanJSON decodes a JSONB column into dest, resetting it on NULL.
func scanJSON[T any](value any, dest *T) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		var zero T
		*dest = zero
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported scan type %T", value)
	}
	return json.Unmarshal(raw, dest)
}
