package enums

import "slices"

// OrderStatus tracks the lifecycle of a shipping order.
type OrderStatus string

const (
	OrderStatusPendingReview      OrderStatus = "PENDING_REVIEW"
	OrderStatusPaymentUnderReview OrderStatus = "PAYMENT_UNDER_REVIEW"
	OrderStatusConfirmed          OrderStatus = "CONFIRMED"
	OrderStatusShipped            OrderStatus = "SHIPPED"
	OrderStatusArrived            OrderStatus = "ARRIVED"
	OrderStatusDelivered          OrderStatus = "DELIVERED"
	OrderStatusRejected           OrderStatus = "REJECTED"
	OrderStatusCancelled          OrderStatus = "CANCELLED"
	OrderStatusReturned           OrderStatus = "RETURNED"
)

// lifecycle order; reports and stats iterate in this sequence.
var orderStatuses = []OrderStatus{
	OrderStatusPendingReview,
	OrderStatusPaymentUnderReview,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusArrived,
	OrderStatusDelivered,
	OrderStatusRejected,
	OrderStatusCancelled,
	OrderStatusReturned,
}

// RealizedOrderStatuses are the statuses counted as revenue.
var RealizedOrderStatuses = []OrderStatus{
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusArrived,
	OrderStatusDelivered,
}

// OrderStatuses returns a copy of every known status in lifecycle order.
func OrderStatuses() []OrderStatus {
	return slices.Clone(orderStatuses)
}

func (s OrderStatus) String() string { return string(s) }

func (s OrderStatus) IsValid() bool { return member(orderStatuses, s) }

// IsTerminal reports whether no further transition is possible.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// IsRealized reports whether the order counts toward revenue.
func (s OrderStatus) IsRealized() bool { return member(RealizedOrderStatuses, s) }

func ParseOrderStatus(value string) (OrderStatus, error) {
	return parse(orderStatuses, value, "order status")
}
