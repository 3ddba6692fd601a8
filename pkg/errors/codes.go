package errors

import "net/http"

// Code is the machine readable error identifier returned to API clients.
type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeIdempotency   Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit     Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeDependency    Code = "DEPENDENCY_ERROR"
	CodeStorage       Code = "STORAGE_ERROR"

	// Order lifecycle and pricing.
	CodeInvalidTransition   Code = "INVALID_TRANSITION"
	CodeNoPayment           Code = "NO_PAYMENT"
	CodeNoPricingRule       Code = "NO_PRICING_RULE"
	CodeWeightOutOfRange    Code = "WEIGHT_OUT_OF_RANGE"
	CodeConcurrencyConflict Code = "CONCURRENCY_CONFLICT"
)

// Metadata describes how a code is rendered over HTTP.
type Metadata struct {
	HTTPStatus    int
	Retryable     bool
	PublicMessage string
	// ExposeMessage lets the error's own message replace PublicMessage.
	ExposeMessage bool
	// DetailsAllowed lets structured details reach the client.
	DetailsAllowed bool
}

type exposure uint8

const (
	hidden exposure = iota
	messageOnly
	messageAndDetails
)

func entry(status int, retryable bool, exp exposure, public string) Metadata {
	return Metadata{
		HTTPStatus:     status,
		Retryable:      retryable,
		PublicMessage:  public,
		ExposeMessage:  exp >= messageOnly,
		DetailsAllowed: exp == messageAndDetails,
	}
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:    entry(http.StatusBadRequest, false, messageAndDetails, "validation failed"),
	CodeUnauthorized:  entry(http.StatusUnauthorized, false, messageOnly, "authentication required"),
	CodeForbidden:     entry(http.StatusForbidden, false, messageOnly, "access denied"),
	CodeNotFound:      entry(http.StatusNotFound, false, messageOnly, "resource not found"),
	CodeConflict:      entry(http.StatusConflict, false, messageOnly, "conflict detected"),
	CodeStateConflict: entry(http.StatusUnprocessableEntity, false, messageAndDetails, "state transition disallowed"),
	CodeIdempotency:   entry(http.StatusConflict, false, messageAndDetails, "idempotency key reused"),
	CodeRateLimit:     entry(http.StatusTooManyRequests, true, messageOnly, "rate limit exceeded"),
	CodeInternal:      entry(http.StatusInternalServerError, true, hidden, "internal server error"),
	CodeDependency:    entry(http.StatusServiceUnavailable, true, messageAndDetails, "dependency unavailable"),
	CodeStorage:       entry(http.StatusInternalServerError, true, hidden, "internal server error"),

	CodeInvalidTransition:   entry(http.StatusConflict, false, messageAndDetails, "status transition not allowed"),
	CodeNoPayment:           entry(http.StatusConflict, false, messageOnly, "order has no payment to review"),
	CodeNoPricingRule:       entry(http.StatusUnprocessableEntity, false, messageAndDetails, "no pricing rule configured"),
	CodeWeightOutOfRange:    entry(http.StatusUnprocessableEntity, false, messageAndDetails, "weight outside configured pricing bands"),
	CodeConcurrencyConflict: entry(http.StatusConflict, true, messageOnly, "resource was modified concurrently"),
}

// MetadataFor falls back to CodeInternal for unknown codes.
func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}
