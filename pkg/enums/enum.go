package enums

import (
	"fmt"
	"slices"
)

// member reports whether v is one of values.
func member[T ~string](values []T, v T) bool {
	return slices.Contains(values, v)
}

// parse matches raw exactly against values; kind names the enum in the error.
func parse[T ~string](values []T, raw, kind string) (T, error) {
	if v := T(raw); member(values, v) {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q", kind, raw)
}
