package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestStorefrontExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewStorefront(reg)

	metrics.IncCartMutation("add", nil)
	metrics.IncCartMutation("add", nil)
	metrics.IncCartMutation("remove", errors.New("boom"))
	metrics.IncCheckout("session", nil)
	metrics.ObserveGateway("stripe", "checkout_session", 250*time.Millisecond)
	metrics.IncCacheLookup("catalog", true)
	metrics.IncCacheLookup("catalog", false)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	cases := []struct {
		name   string
		labels map[string]string
		want   float64
	}{
		{"cart_mutations_total", map[string]string{"op": "add", "result": ResultOK}, 2},
		{"cart_mutations_total", map[string]string{"op": "remove", "result": ResultError}, 1},
		{"checkout_requests_total", map[string]string{"kind": "session", "result": ResultOK}, 1},
		{"cache_lookups_total", map[string]string{"cache": "catalog", "result": ResultHit}, 1},
		{"cache_lookups_total", map[string]string{"cache": "catalog", "result": ResultMiss}, 1},
	}
	for _, tc := range cases {
		got, err := fetchCounterValue(mfs, tc.name, tc.labels)
		if err != nil {
			t.Fatalf("fetch %s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s%v: expected %f, got %f", tc.name, tc.labels, tc.want, got)
		}
	}

	if got, err := fetchHistogramSum(mfs, "payment_gateway_request_duration_seconds", map[string]string{"driver": "stripe"}); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestNilStorefrontIsNoop(t *testing.T) {
	var metrics *Storefront
	metrics.IncCartMutation("add", nil)
	metrics.IncCheckout("session", nil)
	metrics.ObserveGateway("stripe", "op", time.Second)
	metrics.IncCacheLookup("cart", true)

	NewStorefront(nil).IncCartMutation("add", nil)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing labels %v", name, labels)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
