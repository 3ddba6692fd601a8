package enums

// PaymentMethod describes how a customer paid for an order.
type PaymentMethod string

const (
	PaymentMethodVisa    PaymentMethod = "VISA"
	PaymentMethodClickJO PaymentMethod = "CLICK_JO"
	PaymentMethodManual  PaymentMethod = "MANUAL"
)

var paymentMethods = []PaymentMethod{PaymentMethodVisa, PaymentMethodClickJO, PaymentMethodManual}

func (p PaymentMethod) String() string { return string(p) }

func (p PaymentMethod) IsValid() bool { return member(paymentMethods, p) }

func ParsePaymentMethod(value string) (PaymentMethod, error) {
	return parse(paymentMethods, value, "payment method")
}

// PaymentStatus tracks the review lifecycle of a payment.
type PaymentStatus string

const (
	PaymentStatusPending     PaymentStatus = "PENDING"
	PaymentStatusUnderReview PaymentStatus = "UNDER_REVIEW"
	PaymentStatusConfirmed   PaymentStatus = "CONFIRMED"
	PaymentStatusRejected    PaymentStatus = "REJECTED"
)

var paymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusUnderReview,
	PaymentStatusConfirmed,
	PaymentStatusRejected,
}

func (p PaymentStatus) String() string { return string(p) }

func (p PaymentStatus) IsValid() bool { return member(paymentStatuses, p) }

// IsReviewable reports whether an admin decision can still be recorded.
func (p PaymentStatus) IsReviewable() bool {
	return p == PaymentStatusPending || p == PaymentStatusUnderReview
}

func ParsePaymentStatus(value string) (PaymentStatus, error) {
	return parse(paymentStatuses, value, "payment status")
}

// ReviewDecision is the admin verdict on a submitted payment.
type ReviewDecision string

const (
	ReviewDecisionApprove ReviewDecision = "APPROVE"
	ReviewDecisionReject  ReviewDecision = "REJECT"
)

var reviewDecisions = []ReviewDecision{ReviewDecisionApprove, ReviewDecisionReject}

func (d ReviewDecision) String() string { return string(d) }

func (d ReviewDecision) IsValid() bool { return member(reviewDecisions, d) }

func ParseReviewDecision(value string) (ReviewDecision, error) {
	return parse(reviewDecisions, value, "review decision")
}
