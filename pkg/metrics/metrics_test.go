package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestOrderFlowMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewOrderFlowMetrics(reg)

	metrics.IncCheckout("success")
	metrics.IncCheckout("success")
	metrics.IncCheckout("rejected")
	metrics.IncCheckout("")
	metrics.IncTransition("delivered")
	metrics.AddDroppedRows(3)
	metrics.AddDroppedRows(0)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "checkout_total", "result", "success"); err != nil {
		t.Fatalf("fetch success: %v", err)
	} else if got != 2 {
		t.Fatalf("expected success=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "checkout_total", "result", "unknown"); err != nil {
		t.Fatalf("fetch unknown: %v", err)
	} else if got != 1 {
		t.Fatalf("expected unknown=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "order_status_transitions_total", "status", "delivered"); err != nil {
		t.Fatalf("fetch transition: %v", err)
	} else if got != 1 {
		t.Fatalf("expected delivered=1, got %f", got)
	}

	dropped := findMetricFamily(mfs, "cart_rows_dropped_total")
	if dropped == nil {
		t.Fatal("cart_rows_dropped_total not found")
	}
	if got := dropped.GetMetric()[0].GetCounter().GetValue(); got != 3 {
		t.Fatalf("expected dropped=3, got %f", got)
	}
}

func TestOrderFlowMetricsNilSafe(t *testing.T) {
	var metrics *OrderFlowMetrics
	metrics.IncCheckout("success")
	metrics.IncTransition("ready")
	metrics.AddDroppedRows(1)

	unregistered := NewOrderFlowMetrics(nil)
	unregistered.IncCheckout("success")
	unregistered.IncTransition("ready")
	unregistered.AddDroppedRows(1)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
