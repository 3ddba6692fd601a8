package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics counts order lifecycle activity.
type OrderMetrics struct {
	transitions *prometheus.CounterVec
	created     *prometheus.CounterVec
	reviews     *prometheus.CounterVec
}

// NewOrderMetrics registers the order metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "thouesa_order_status_transitions_total",
		Help: "Committed order status transitions.",
	}, []string{"from", "to"})
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "thouesa_orders_created_total",
		Help: "Orders created by shipping direction.",
	}, []string{"direction"})
	reviews := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "thouesa_payment_reviews_total",
		Help: "Payment review decisions.",
	}, []string{"decision"})
	reg.MustRegister(transitions, created, reviews)
	return &OrderMetrics{
		transitions: transitions,
		created:     created,
		reviews:     reviews,
	}
}

// IncTransition counts a status change. An empty from marks order creation.
func (m *OrderMetrics) IncTransition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	if from == "" {
		from = "NONE"
	}
	m.transitions.WithLabelValues(from, normalizeLabel(to)).Inc()
}

func (m *OrderMetrics) IncCreated(direction string) {
	if m == nil || m.created == nil {
		return
	}
	m.created.WithLabelValues(normalizeLabel(direction)).Inc()
}

func (m *OrderMetrics) IncReview(decision string) {
	if m == nil || m.reviews == nil {
		return
	}
	m.reviews.WithLabelValues(normalizeLabel(decision)).Inc()
}
