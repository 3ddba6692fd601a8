package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/thouesa/thouesa-backend/pkg/db/models"
	"github.com/thouesa/thouesa-backend/pkg/enums"
	pkgerrors "github.com/thouesa/thouesa-backend/pkg/errors"
)

type settingsReader interface {
	Get(ctx context.Context) (*models.Setting, error)
}

// Engine prices shipments from the current settings and rule table.
type Engine struct {
	settings settingsReader
	rules    Repository
}

// NewEngine constructs a pricing engine.
func NewEngine(settings settingsReader, rules Repository) (*Engine, error) {
	if settings == nil {
		return nil, fmt.Errorf("settings reader required")
	}
	if rules == nil {
		return nil, fmt.Errorf("pricing rule repository required")
	}
	return &Engine{settings: settings, rules: rules}, nil
}

// Estimate loads the configuration and delegates to Compute.
func (e *Engine) Estimate(ctx context.Context, direction enums.Direction, weightKg decimal.Decimal) (Quote, error) {
	if !direction.IsValid() {
		return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid direction").
			WithDetails(map[string]any{"direction": direction})
	}
	setting, err := e.settings.Get(ctx)
	if err != nil {
		return Quote{}, err
	}
	rules, err := e.rules.ListActive(ctx, direction)
	if err != nil {
		return Quote{}, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load pricing rules")
	}
	return Compute(*setting, rules, direction, weightKg)
}
