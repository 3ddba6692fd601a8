package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thouesa/thouesa-backend/pkg/enums"
)

func TestCanTransitionMatrix(t *testing.T) {
	cases := []struct {
		from, to enums.OrderStatus
		allowed  bool
	}{
		{enums.OrderStatusPendingReview, enums.OrderStatusConfirmed, true},
		{enums.OrderStatusPendingReview, enums.OrderStatusRejected, true},
		{enums.OrderStatusPendingReview, enums.OrderStatusPaymentUnderReview, true},
		{enums.OrderStatusPendingReview, enums.OrderStatusShipped, false},
		{enums.OrderStatusPaymentUnderReview, enums.OrderStatusConfirmed, true},
		{enums.OrderStatusPaymentUnderReview, enums.OrderStatusRejected, true},
		{enums.OrderStatusPaymentUnderReview, enums.OrderStatusPendingReview, false},
		{enums.OrderStatusConfirmed, enums.OrderStatusShipped, true},
		{enums.OrderStatusConfirmed, enums.OrderStatusCancelled, true},
		{enums.OrderStatusConfirmed, enums.OrderStatusConfirmed, false},
		{enums.OrderStatusShipped, enums.OrderStatusArrived, true},
		{enums.OrderStatusShipped, enums.OrderStatusDelivered, true},
		{enums.OrderStatusShipped, enums.OrderStatusConfirmed, false},
		{enums.OrderStatusArrived, enums.OrderStatusDelivered, true},
		{enums.OrderStatusArrived, enums.OrderStatusReturned, true},
		{enums.OrderStatusRejected, enums.OrderStatusPendingReview, true},
		{enums.OrderStatusRejected, enums.OrderStatusConfirmed, false},
		{enums.OrderStatusReturned, enums.OrderStatusShipped, true},
		{enums.OrderStatusDelivered, enums.OrderStatusReturned, false},
		{enums.OrderStatusCancelled, enums.OrderStatusPendingReview, false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.allowed, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTerminalStatusesHaveNoTargets(t *testing.T) {
	for _, status := range enums.OrderStatuses() {
		assert.Equalf(t, status.IsTerminal(), len(AllowedTargets(status)) == 0, "status %s", status)
	}
}

func TestAllowedTargetsReturnsCopy(t *testing.T) {
	targets := AllowedTargets(enums.OrderStatusConfirmed)
	targets[0] = enums.OrderStatusDelivered
	assert.True(t, CanTransition(enums.OrderStatusConfirmed, enums.OrderStatusShipped))
}
