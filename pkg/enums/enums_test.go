package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectionCurrencyAndCode(t *testing.T) {
	assert.Equal(t, CurrencyJOD, DirectionJOToDZ.Currency())
	assert.Equal(t, CurrencyDZD, DirectionDZToJO.Currency())
	assert.Equal(t, "JO", DirectionJOToDZ.OriginCode())
	assert.Equal(t, "DZ", DirectionDZToJO.OriginCode())
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("DZ_TO_JO")
	require.NoError(t, err)
	assert.Equal(t, DirectionDZToJO, d)

	_, err = ParseDirection("jo_to_dz")
	require.Error(t, err)
}

func TestOrderStatusClassification(t *testing.T) {
	for _, status := range OrderStatuses() {
		require.True(t, status.IsValid(), status)
	}
	assert.True(t, OrderStatusDelivered.IsTerminal())
	assert.True(t, OrderStatusCancelled.IsTerminal())
	assert.False(t, OrderStatusRejected.IsTerminal())
	assert.False(t, OrderStatusReturned.IsTerminal())

	assert.True(t, OrderStatusShipped.IsRealized())
	assert.False(t, OrderStatusPaymentUnderReview.IsRealized())

	_, err := ParseOrderStatus("PENDING")
	require.Error(t, err)
}

func TestPaymentStatusReviewable(t *testing.T) {
	assert.True(t, PaymentStatusUnderReview.IsReviewable())
	assert.True(t, PaymentStatusPending.IsReviewable())
	assert.False(t, PaymentStatusConfirmed.IsReviewable())
	assert.False(t, PaymentStatusRejected.IsReviewable())
}

func TestParseReviewDecision(t *testing.T) {
	d, err := ParseReviewDecision("REJECT")
	require.NoError(t, err)
	assert.Equal(t, ReviewDecisionReject, d)
	assert.True(t, ReviewDecisionApprove.IsValid())

	_, err = ParseReviewDecision("approve")
	require.Error(t, err)
}

func TestParseRejectsUnknownValues(t *testing.T) {
	_, err := ParsePaymentMethod("CASH")
	require.EqualError(t, err, `invalid payment method "CASH"`)

	method, err := ParsePaymentMethod("CLICK_JO")
	require.NoError(t, err)
	assert.Equal(t, PaymentMethodClickJO, method)

	_, err = ParseUserRole("admin")
	require.Error(t, err)
	assert.True(t, OutboxDLQReasonNonRetryable.IsValid())
	assert.False(t, OutboxDLQErrorReason("timeout").IsValid())
}

func TestOrderStatusesReturnsCopy(t *testing.T) {
	statuses := OrderStatuses()
	statuses[0] = OrderStatusReturned
	assert.Equal(t, OrderStatusPendingReview, OrderStatuses()[0])
}
