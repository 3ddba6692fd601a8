package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/thouesa/thouesa-backend/api/responses"
	"github.com/thouesa/thouesa-backend/api/validators"
	"github.com/thouesa/thouesa-backend/internal/orders"
	"github.com/thouesa/thouesa-backend/internal/payments"
	"github.com/thouesa/thouesa-backend/pkg/enums"
	pkgerrors "github.com/thouesa/thouesa-backend/pkg/errors"
	"github.com/thouesa/thouesa-backend/pkg/logger"
)

type statusPatchRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note" validate:"max=500"`
}

// AdminUpdateOrderStatus moves an order along the lifecycle.
func AdminUpdateOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body statusPatchRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target, err := enums.ParseOrderStatus(strings.ToUpper(strings.TrimSpace(body.Status)))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").
				WithDetails(map[string]any{"field": "status"}))
			return
		}

		order, err := svc.Transition(r.Context(), orders.TransitionInput{
			OrderID: orderID,
			Target:  target,
			Actor:   actor,
			Note:    validators.SanitizeString(body.Note, 500),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders.ToView(*order))
	}
}

type reviewPaymentRequest struct {
	Decision      string           `json:"decision" validate:"required,oneof=APPROVE REJECT approve reject"`
	WeightFinalKg *decimal.Decimal `json:"weightFinalKg"`
	PriceFinal    *decimal.Decimal `json:"priceFinal"`
	Note          *string          `json:"note" validate:"omitempty,max=500"`
}

type confirmPaymentRequest struct {
	WeightFinalKg *decimal.Decimal `json:"weightFinalKg"`
	PriceFinal    *decimal.Decimal `json:"priceFinal"`
	Note          *string          `json:"note" validate:"omitempty,max=500"`
}

type reviewResponse struct {
	Order   orders.OrderView     `json:"order"`
	Payment payments.PaymentView `json:"payment"`
}

// AdminReviewPayment approves or rejects the latest payment of an order.
func AdminReviewPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body reviewPaymentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		decision, err := enums.ParseReviewDecision(strings.ToUpper(body.Decision))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid decision"))
			return
		}
		review(w, r, svc, logg, decision == enums.ReviewDecisionApprove, body.WeightFinalKg, body.PriceFinal, body.Note)
	}
}

// AdminConfirmPayment is the approve-only form of AdminReviewPayment.
func AdminConfirmPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body confirmPaymentRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		review(w, r, svc, logg, true, body.WeightFinalKg, body.PriceFinal, body.Note)
	}
}

func review(w http.ResponseWriter, r *http.Request, svc payments.Service, logg *logger.Logger, approve bool, weight, price *decimal.Decimal, note *string) {
	actor, err := actorFromRequest(r)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	orderID, err := parseUUIDParam(r, "id")
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	result, err := svc.Review(r.Context(), payments.ReviewInput{
		OrderID:       orderID,
		Approve:       approve,
		WeightFinalKg: weight,
		PriceFinal:    price,
		Actor:         actor,
		Note:          note,
	})
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, reviewResponse{
		Order:   orders.ToView(*result.Order),
		Payment: payments.ToView(*result.Payment),
	})
}

type shipRequest struct {
	Note string `json:"note" validate:"max=500"`
}

// AdminShipOrder marks a confirmed or returned order as shipped.
func AdminShipOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body shipRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		order, err := svc.Ship(r.Context(), orderID, actor, validators.SanitizeString(body.Note, 500))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders.ToView(*order))
	}
}

// AdminOrderLogs returns the audit trail of an order, newest first.
func AdminOrderLogs(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		logs, err := svc.Logs(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders.ToLogViews(logs))
	}
}

// AdminOrderPayments lists every payment recorded against an order.
func AdminOrderPayments(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListForOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payments.ToViews(rows))
	}
}
