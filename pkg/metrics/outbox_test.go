package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOutboxMetrics(reg)

	m.IncPublished("order_created")
	m.IncPublished("order_created")
	m.IncRetry("payment_submitted")
	m.IncDeadLettered("payment_reviewed", "max_attempts")

	mfs, err := reg.Gather()
	require.NoError(t, err)

	published, err := fetchCounterValue(mfs, "thouesa_outbox_published_total", "event_type", "order_created")
	require.NoError(t, err)
	assert.Equal(t, 2.0, published)

	retried, err := fetchCounterValue(mfs, "thouesa_outbox_retry_total", "event_type", "payment_submitted")
	require.NoError(t, err)
	assert.Equal(t, 1.0, retried)

	mf := findMetricFamily(mfs, "thouesa_outbox_dead_lettered_total")
	require.NotNil(t, mf)
	assert.Equal(t, 1.0, counterWithLabels(mf, map[string]string{"event_type": "payment_reviewed", "reason": "max_attempts"}))
}

func TestOutboxMetricsNilSafe(t *testing.T) {
	var m *OutboxMetrics
	m.IncPublished("order_created")
	m.IncRetry("order_created")
	m.IncDeadLettered("order_created", "")
	NewOutboxMetrics(nil).IncPublished("order_created")
}
