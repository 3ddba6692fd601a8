// Package sequence issues human-facing order numbers of the form
// TH-YYYYMMDD-JO-0001, unique per UTC day and shipping direction.
package sequence

import (
	"context"
	"fmt"
	"time"

	"github.com/thouesa/thouesa-backend/pkg/enums"
	pkgerrors "github.com/thouesa/thouesa-backend/pkg/errors"
)

const (
	numberPrefix = "TH"
	dateLayout   = "20060102"
)

// Generator draws order numbers from the persistent counter.
type Generator struct {
	repo Repository
	now  func() time.Time
}

// NewGenerator constructs a Generator.
func NewGenerator(repo Repository) (*Generator, error) {
	if repo == nil {
		return nil, fmt.Errorf("sequence repository required")
	}
	return &Generator{repo: repo, now: time.Now}, nil
}

// Next returns the next order number for direction. Values are never reused;
// a caller that fails after drawing a number leaves a gap.
func (g *Generator) Next(ctx context.Context, direction enums.Direction) (string, error) {
	if !direction.IsValid() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid direction").
			WithDetails(map[string]any{"direction": direction})
	}
	day := g.now().UTC().Format(dateLayout)
	value, err := g.repo.NextValue(ctx, day, string(direction))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeStorage, err, "allocate order number")
	}
	return Format(day, direction, value), nil
}

// Format renders an order number. Values past 9999 widen the numeric part.
func Format(day string, direction enums.Direction, value int64) string {
	return fmt.Sprintf("%s-%s-%s-%04d", numberPrefix, day, direction.OriginCode(), value)
}
