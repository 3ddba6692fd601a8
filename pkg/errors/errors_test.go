package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataForDomainCodes(t *testing.T) {
	cases := []struct {
		code    Code
		status  int
		expose  bool
		details bool
	}{
		{CodeValidation, http.StatusBadRequest, true, true},
		{CodeUnauthorized, http.StatusUnauthorized, true, false},
		{CodeInternal, http.StatusInternalServerError, false, false},
		{CodeStorage, http.StatusInternalServerError, false, false},
		{CodeDependency, http.StatusServiceUnavailable, true, true},
		{CodeInvalidTransition, http.StatusConflict, true, true},
		{CodeNoPayment, http.StatusConflict, true, false},
		{CodeNoPricingRule, http.StatusUnprocessableEntity, true, true},
		{CodeWeightOutOfRange, http.StatusUnprocessableEntity, true, true},
		{CodeConcurrencyConflict, http.StatusConflict, true, false},
		{CodeRateLimit, http.StatusTooManyRequests, true, false},
	}
	for _, tc := range cases {
		meta := MetadataFor(tc.code)
		assert.Equal(t, tc.status, meta.HTTPStatus, tc.code)
		assert.Equal(t, tc.expose, meta.ExposeMessage, tc.code)
		assert.Equal(t, tc.details, meta.DetailsAllowed, tc.code)
		assert.NotEmpty(t, meta.PublicMessage, tc.code)
	}
}

func TestMetadataForUnknownCodeIsInternal(t *testing.T) {
	assert.Equal(t, MetadataFor(CodeInternal), MetadataFor("SOMETHING_ELSE"))
}

func TestConstructorsAndChain(t *testing.T) {
	err := Newf(CodeWeightOutOfRange, "weight %s kg outside bands", "45")
	assert.Equal(t, "weight 45 kg outside bands", err.Message())
	assert.Nil(t, err.Details())
	err.WithDetails(map[string]any{"weightKg": "45"})
	assert.NotNil(t, err.Details())

	cause := stdErrors.New("connection reset")
	wrapped := Wrap(CodeStorage, cause, "insert order")
	assert.ErrorIs(t, wrapped, cause)
	assert.Contains(t, wrapped.Error(), "connection reset")

	outer := fmt.Errorf("create: %w", wrapped)
	require.NotNil(t, As(outer))
	assert.True(t, IsCode(outer, CodeStorage))
	assert.False(t, IsCode(outer, CodeValidation))
	assert.Nil(t, As(nil))
	assert.Nil(t, As(cause))
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(New(CodeConcurrencyConflict, "retry")))
	assert.False(t, Retryable(New(CodeInvalidTransition, "SHIPPED -> CONFIRMED")))
	assert.True(t, Retryable(stdErrors.New("untyped")))
}

func TestLogFieldsIncludesChainAndPostgres(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "orders_order_number_key", TableName: "orders"}
	fields := LogFields(Wrap(CodeStorage, pgErr, "insert order"))

	assert.Equal(t, CodeStorage, fields["error_code"])
	assert.Equal(t, "23505", fields["pg_code"])
	assert.Equal(t, "orders_order_number_key", fields["pg_constraint"])
	assert.NotContains(t, fields, "pg_column")
	assert.Len(t, fields["error_chain"], 2)

	pqFields := LogFields(&pq.Error{Code: "40001", Message: "could not serialize access"})
	assert.Equal(t, "40001", pqFields["pg_code"])
	assert.Equal(t, "could not serialize access", pqFields["pg_message"])

	assert.Empty(t, LogFields(nil))
}
