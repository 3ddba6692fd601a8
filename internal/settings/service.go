package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/thouesa/thouesa-backend/pkg/db/models"
	pkgerrors "github.com/thouesa/thouesa-backend/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// Service owns the global rates, commission and promo configuration.
type Service interface {
	Get(ctx context.Context) (*models.Setting, error)
	Update(ctx context.Context, input UpdateInput) (*models.Setting, error)
	Public(ctx context.Context) (PublicView, error)
}

type service struct {
	repo     Repository
	defaults Defaults
}

// NewService builds the settings service.
func NewService(repo Repository, defaults Defaults) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	return &service{repo: repo, defaults: defaults}, nil
}

// Get returns the singleton, creating it from the defaults on first use.
func (s *service) Get(ctx context.Context) (*models.Setting, error) {
	setting, err := s.repo.Find(ctx)
	if err == nil {
		return setting, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load settings")
	}

	seed := &models.Setting{
		ID:                 models.SettingsSingletonID,
		ShipJODPerKgJOToDZ: s.defaults.JODPerKgJOToDZ,
		ShipDZDPerKgDZToJO: s.defaults.DZDPerKgDZToJO,
		CommissionPercent:  s.defaults.CommissionPercent,
	}
	if err := s.repo.CreateIfMissing(ctx, seed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "seed settings")
	}
	setting, err = s.repo.Find(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "reload settings")
	}
	return setting, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*models.Setting, error) {
	if err := validateUpdate(input); err != nil {
		return nil, err
	}
	setting, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	if input.ShipJODPerKgJOToDZ != nil {
		setting.ShipJODPerKgJOToDZ = *input.ShipJODPerKgJOToDZ
	}
	if input.ShipDZDPerKgDZToJO != nil {
		setting.ShipDZDPerKgDZToJO = *input.ShipDZDPerKgDZToJO
	}
	if input.CommissionPercent != nil {
		setting.CommissionPercent = *input.CommissionPercent
	}
	if input.PromoActive != nil {
		setting.PromoActive = *input.PromoActive
	}
	if input.PromoName != nil {
		setting.PromoName = optionalString(*input.PromoName)
	}
	if input.PromoDiscountPercent != nil {
		setting.PromoDiscountPercent = input.PromoDiscountPercent
	}
	if input.FacebookURL != nil {
		setting.FacebookURL = optionalString(*input.FacebookURL)
	}
	if input.WhatsappURL != nil {
		setting.WhatsappURL = optionalString(*input.WhatsappURL)
	}
	if input.USDTDZDPrice != nil {
		setting.USDTDZDPrice = input.USDTDZDPrice
	}
	if input.USDTMarkupPercent != nil {
		setting.USDTMarkupPercent = input.USDTMarkupPercent
	}

	if setting.PromoActive && (setting.PromoDiscountPercent == nil || !setting.PromoDiscountPercent.IsPositive()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "active promo requires a positive discount percent")
	}

	if err := s.repo.Save(ctx, setting); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "save settings")
	}
	return setting, nil
}

func (s *service) Public(ctx context.Context) (PublicView, error) {
	setting, err := s.Get(ctx)
	if err != nil {
		return PublicView{}, err
	}
	return ToPublicView(*setting), nil
}

func validateUpdate(input UpdateInput) error {
	checks := []struct {
		field string
		value *decimal.Decimal
		pct   bool
	}{
		{"shipJodPerKgJoToDz", input.ShipJODPerKgJOToDZ, false},
		{"shipDzdPerKgDzToJo", input.ShipDZDPerKgDZToJO, false},
		{"commissionPercent", input.CommissionPercent, true},
		{"promoDiscountPercent", input.PromoDiscountPercent, true},
		{"usdtDzdPrice", input.USDTDZDPrice, false},
		{"usdtMarkupPercent", input.USDTMarkupPercent, true},
	}
	for _, check := range checks {
		if check.value == nil {
			continue
		}
		if check.value.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, check.field+" must not be negative").
				WithDetails(map[string]any{"field": check.field})
		}
		if check.pct && check.value.GreaterThan(hundred) {
			return pkgerrors.New(pkgerrors.CodeValidation, check.field+" must be at most 100").
				WithDetails(map[string]any{"field": check.field})
		}
	}
	return nil
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
