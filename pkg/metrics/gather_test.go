package metrics

import (
	"fmt"

	dto "github.com/prometheus/client_model/go"
)

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	return counterWithLabels(mf, map[string]string{label: value}), nil
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

// metricWithLabels returns the first series carrying every wanted label.
func metricWithLabels(mf *dto.MetricFamily, want map[string]string) *dto.Metric {
	for _, metric := range mf.GetMetric() {
		matched := 0
		for _, pair := range metric.GetLabel() {
			if v, ok := want[pair.GetName()]; ok && v == pair.GetValue() {
				matched++
			}
		}
		if matched == len(want) {
			return metric
		}
	}
	return nil
}

func counterWithLabels(mf *dto.MetricFamily, want map[string]string) float64 {
	if metric := metricWithLabels(mf, want); metric != nil {
		return metric.GetCounter().GetValue()
	}
	return 0
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	metric := metricWithLabels(mf, map[string]string{label: value})
	if metric == nil {
		return 0, fmt.Errorf("histogram %q missing %s=%s", name, label, value)
	}
	return metric.GetHistogram().GetSampleSum(), nil
}
