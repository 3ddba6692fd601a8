package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/thouesa/thouesa-backend/pkg/db/models"
	"github.com/thouesa/thouesa-backend/pkg/enums"
	pkgerrors "github.com/thouesa/thouesa-backend/pkg/errors"
)

// RuleInput is the admin payload for creating or replacing a band.
type RuleInput struct {
	Direction  enums.Direction `json:"direction" validate:"required"`
	MinWeight  decimal.Decimal `json:"minWeight"`
	MaxWeight  decimal.Decimal `json:"maxWeight"`
	PricePerKg decimal.Decimal `json:"pricePerKg"`
	Active     *bool           `json:"active"`
}

// RuleService manages the pricing rule table.
type RuleService interface {
	List(ctx context.Context, direction *enums.Direction) ([]models.PricingRule, error)
	Create(ctx context.Context, input RuleInput) (*models.PricingRule, error)
	Update(ctx context.Context, id uuid.UUID, input RuleInput) (*models.PricingRule, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type ruleService struct {
	repo Repository
}

func NewRuleService(repo Repository) (RuleService, error) {
	if repo == nil {
		return nil, fmt.Errorf("pricing rule repository required")
	}
	return &ruleService{repo: repo}, nil
}

func (s *ruleService) List(ctx context.Context, direction *enums.Direction) ([]models.PricingRule, error) {
	if direction != nil && !direction.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid direction")
	}
	rules, err := s.repo.List(ctx, direction)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list pricing rules")
	}
	return rules, nil
}

func (s *ruleService) Create(ctx context.Context, input RuleInput) (*models.PricingRule, error) {
	if err := validateRule(input); err != nil {
		return nil, err
	}
	rule := &models.PricingRule{
		ID:         uuid.New(),
		Direction:  input.Direction,
		MinWeight:  input.MinWeight,
		MaxWeight:  input.MaxWeight,
		PricePerKg: input.PricePerKg,
		Active:     input.Active == nil || *input.Active,
	}
	if err := s.repo.Create(ctx, rule); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "create pricing rule")
	}
	return rule, nil
}

func (s *ruleService) Update(ctx context.Context, id uuid.UUID, input RuleInput) (*models.PricingRule, error) {
	if err := validateRule(input); err != nil {
		return nil, err
	}
	rule, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	rule.Direction = input.Direction
	rule.MinWeight = input.MinWeight
	rule.MaxWeight = input.MaxWeight
	rule.PricePerKg = input.PricePerKg
	if input.Active != nil {
		rule.Active = *input.Active
	}
	if err := s.repo.Save(ctx, rule); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "update pricing rule")
	}
	return rule, nil
}

// Deactivate retires a band without deleting it.
func (s *ruleService) Deactivate(ctx context.Context, id uuid.UUID) error {
	rule, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !rule.Active {
		return nil
	}
	rule.Active = false
	if err := s.repo.Save(ctx, rule); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "deactivate pricing rule")
	}
	return nil
}

func (s *ruleService) load(ctx context.Context, id uuid.UUID) (*models.PricingRule, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rule id required")
	}
	rule, err := s.repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pricing rule not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load pricing rule")
	}
	return rule, nil
}

func validateRule(input RuleInput) error {
	if !input.Direction.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid direction").
			WithDetails(map[string]any{"field": "direction"})
	}
	if input.MinWeight.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "minWeight must not be negative").
			WithDetails(map[string]any{"field": "minWeight"})
	}
	if !input.MaxWeight.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "maxWeight must be positive").
			WithDetails(map[string]any{"field": "maxWeight"})
	}
	if input.MinWeight.GreaterThan(input.MaxWeight) {
		return pkgerrors.New(pkgerrors.CodeValidation, "minWeight must not exceed maxWeight").
			WithDetails(map[string]any{"field": "minWeight"})
	}
	if input.PricePerKg.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "pricePerKg must not be negative").
			WithDetails(map[string]any{"field": "pricePerKg"})
	}
	return nil
}
