package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronJobMetricsSplitsResults(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)
	m.now = func() time.Time { return time.Unix(1768435200, 0) }

	m.ObserveRun("outbox-retention", 250*time.Millisecond, nil)
	m.ObserveRun("outbox-retention", time.Second, errors.New("db down"))
	m.ObserveRun("", time.Millisecond, nil)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	runs := findMetricFamily(mfs, "thouesa_cron_job_runs_total")
	require.NotNil(t, runs)
	assert.Equal(t, 1.0, counterWithLabels(runs, map[string]string{"job": "outbox-retention", "result": "success"}))
	assert.Equal(t, 1.0, counterWithLabels(runs, map[string]string{"job": "outbox-retention", "result": "failure"}))
	assert.Equal(t, 1.0, counterWithLabels(runs, map[string]string{"job": "unknown", "result": "success"}))

	sum, err := fetchHistogramSum(mfs, "thouesa_cron_job_duration_seconds", "job", "outbox-retention")
	require.NoError(t, err)
	assert.InDelta(t, 1.25, sum, 1e-9)

	gauge := findMetricFamily(mfs, "thouesa_cron_job_last_success_timestamp_seconds")
	require.NotNil(t, gauge)
	series := metricWithLabels(gauge, map[string]string{"job": "outbox-retention"})
	require.NotNil(t, series)
	assert.Equal(t, 1768435200.0, series.GetGauge().GetValue())
}

func TestCronJobMetricsNilSafe(t *testing.T) {
	var m *CronJobMetrics
	m.ObserveRun("job", time.Second, nil)
	NewCronJobMetrics(nil).ObserveRun("job", time.Second, errors.New("x"))
}
