package orders

import (
	"slices"

	"github.com/thouesa/thouesa-backend/pkg/enums"
)

var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPendingReview: {
		enums.OrderStatusConfirmed,
		enums.OrderStatusRejected,
		enums.OrderStatusPaymentUnderReview,
	},
	enums.OrderStatusPaymentUnderReview: {
		enums.OrderStatusConfirmed,
		enums.OrderStatusRejected,
	},
	enums.OrderStatusConfirmed: {
		enums.OrderStatusShipped,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusShipped: {
		enums.OrderStatusArrived,
		enums.OrderStatusDelivered,
	},
	enums.OrderStatusArrived: {
		enums.OrderStatusDelivered,
		enums.OrderStatusReturned,
	},
	enums.OrderStatusRejected: {
		enums.OrderStatusPendingReview,
	},
	enums.OrderStatusReturned: {
		enums.OrderStatusShipped,
	},
}

// CanTransition reports whether the lifecycle permits moving from -> to.
func CanTransition(from, to enums.OrderStatus) bool {
	return slices.Contains(allowedTransitions[from], to)
}

// AllowedTargets lists the statuses reachable from the given one.
func AllowedTargets(from enums.OrderStatus) []enums.OrderStatus {
	return append([]enums.OrderStatus{}, allowedTransitions[from]...)
}
