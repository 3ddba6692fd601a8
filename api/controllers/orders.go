package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/thouesa/thouesa-backend/api/responses"
	"github.com/thouesa/thouesa-backend/api/validators"
	"github.com/thouesa/thouesa-backend/internal/orders"
	"github.com/thouesa/thouesa-backend/internal/payments"
	"github.com/thouesa/thouesa-backend/pkg/enums"
	pkgerrors "github.com/thouesa/thouesa-backend/pkg/errors"
	"github.com/thouesa/thouesa-backend/pkg/logger"
	"github.com/thouesa/thouesa-backend/pkg/types"
)

type createOrderRequest struct {
	Direction          string                 `json:"direction" validate:"required,oneof=JO_TO_DZ DZ_TO_JO"`
	Contents           string                 `json:"contents" validate:"required,max=1000"`
	WeightDeclaredKg   decimal.Decimal        `json:"weightDeclaredKg" validate:"gt=0"`
	DeclaredValueUSD   *decimal.Decimal       `json:"declaredValueUsd"`
	InsuranceRequested bool                   `json:"insuranceRequested"`
	InsuranceValueUSD  *decimal.Decimal       `json:"insuranceValueUsd"`
	PurchaseDetails    *types.PurchaseDetails `json:"purchaseDetails"`
	SenderAddress      types.AddressSnapshot  `json:"senderAddress" validate:"required"`
	ReceiverAddress    types.AddressSnapshot  `json:"receiverAddress" validate:"required"`
}

// CreateOrder places a shipping order for the caller.
func CreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), orders.CreateInput{
			Actor:              actor,
			Direction:          enums.Direction(body.Direction),
			Contents:           validators.SanitizeString(body.Contents, 1000),
			WeightDeclaredKg:   body.WeightDeclaredKg,
			DeclaredValueUSD:   body.DeclaredValueUSD,
			InsuranceRequested: body.InsuranceRequested,
			InsuranceValueUSD:  body.InsuranceValueUSD,
			PurchaseDetails:    body.PurchaseDetails,
			SenderAddress:      body.SenderAddress,
			ReceiverAddress:    body.ReceiverAddress,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, orders.ToView(*order))
	}
}

type orderListResponse struct {
	Orders     []orders.OrderView `json:"orders"`
	NextCursor string             `json:"nextCursor,omitempty"`
}

// ListOrders returns the caller's orders; admins see every order.
func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := parsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := parseStatusQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		direction, err := parseDirectionQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), orders.ListInput{
			Viewer:    actor,
			Status:    status,
			Direction: direction,
			Params:    params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orderListResponse{
			Orders:     orders.ToViews(list.Orders),
			NextCursor: list.NextCursor,
		})
	}
}

// GetOrder returns one order to its owner or an admin.
func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
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
		order, err := svc.Get(r.Context(), orderID, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders.ToView(*order))
	}
}

type submitReceiptRequest struct {
	Amount     decimal.Decimal `json:"amount" validate:"gt=0"`
	Method     string          `json:"method" validate:"omitempty,oneof=VISA CLICK_JO MANUAL"`
	ReceiptURL string          `json:"receiptUrl" validate:"required,url,max=2048"`
	Reference  *string         `json:"reference" validate:"omitempty,max=128"`
}

// SubmitReceipt attaches a payment receipt to the caller's order.
func SubmitReceipt(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
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
		var body submitReceiptRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.SubmitReceipt(r.Context(), payments.SubmitReceiptInput{
			OrderID:    orderID,
			Actor:      actor,
			Amount:     body.Amount,
			Method:     enums.PaymentMethod(strings.ToUpper(body.Method)),
			ReceiptURL: strings.TrimSpace(body.ReceiptURL),
			Reference:  body.Reference,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, payments.ToView(*payment))
	}
}

// TrackOrder is the public tracking lookup by order number.
func TrackOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number := strings.TrimSpace(chi.URLParam(r, "orderNumber"))
		if number == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order number is required"))
			return
		}
		view, err := svc.Track(r.Context(), number)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
