package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thouesa/thouesa-backend/api/responses"
	"github.com/thouesa/thouesa-backend/api/validators"
	"github.com/thouesa/thouesa-backend/internal/pricing"
	"github.com/thouesa/thouesa-backend/pkg/db/models"
	"github.com/thouesa/thouesa-backend/pkg/enums"
	pkgerrors "github.com/thouesa/thouesa-backend/pkg/errors"
	"github.com/thouesa/thouesa-backend/pkg/logger"
)

type estimator interface {
	Estimate(ctx context.Context, direction enums.Direction, weightKg decimal.Decimal) (pricing.Quote, error)
}

// PricingEstimate quotes a shipment from the weight and direction query params.
func PricingEstimate(engine estimator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		direction, err := parseDirectionQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if direction == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "direction is required").
				WithDetails(map[string]any{"field": "direction"}))
			return
		}
		weight, err := validators.ParseQueryDecimal(r, "weight")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := engine.Estimate(r.Context(), *direction, weight)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

type pricingRuleRequest struct {
	Direction  string          `json:"direction" validate:"required,oneof=JO_TO_DZ DZ_TO_JO"`
	MinWeight  decimal.Decimal `json:"minWeight"`
	MaxWeight  decimal.Decimal `json:"maxWeight"`
	PricePerKg decimal.Decimal `json:"pricePerKg"`
	Active     *bool           `json:"active"`
}

func (p pricingRuleRequest) input() pricing.RuleInput {
	return pricing.RuleInput{
		Direction:  enums.Direction(p.Direction),
		MinWeight:  p.MinWeight,
		MaxWeight:  p.MaxWeight,
		PricePerKg: p.PricePerKg,
		Active:     p.Active,
	}
}

type pricingRuleView struct {
	ID         uuid.UUID       `json:"id"`
	Direction  enums.Direction `json:"direction"`
	MinWeight  decimal.Decimal `json:"minWeight"`
	MaxWeight  decimal.Decimal `json:"maxWeight"`
	PricePerKg decimal.Decimal `json:"pricePerKg"`
	Active     bool            `json:"active"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

func toPricingRuleView(rule models.PricingRule) pricingRuleView {
	return pricingRuleView{
		ID:         rule.ID,
		Direction:  rule.Direction,
		MinWeight:  rule.MinWeight,
		MaxWeight:  rule.MaxWeight,
		PricePerKg: rule.PricePerKg,
		Active:     rule.Active,
		CreatedAt:  rule.CreatedAt,
		UpdatedAt:  rule.UpdatedAt,
	}
}

// AdminListPricingRules lists bands, optionally for one direction.
func AdminListPricingRules(svc pricing.RuleService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		direction, err := parseDirectionQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rules, err := svc.List(r.Context(), direction)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		views := make([]pricingRuleView, 0, len(rules))
		for _, rule := range rules {
			views = append(views, toPricingRuleView(rule))
		}
		responses.WriteSuccess(w, views)
	}
}

func AdminCreatePricingRule(svc pricing.RuleService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body pricingRuleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rule, err := svc.Create(r.Context(), body.input())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toPricingRuleView(*rule))
	}
}

func AdminUpdatePricingRule(svc pricing.RuleService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ruleID, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body pricingRuleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rule, err := svc.Update(r.Context(), ruleID, body.input())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toPricingRuleView(*rule))
	}
}

// AdminDeletePricingRule deactivates a band; rows are kept for history.
func AdminDeletePricingRule(svc pricing.RuleService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ruleID, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Deactivate(r.Context(), ruleID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": ruleID, "active": false})
	}
}
