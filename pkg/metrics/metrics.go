package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderFlowMetrics records the customer and staff sides of the order lifecycle.
type OrderFlowMetrics struct {
	checkouts   *prometheus.CounterVec
	transitions *prometheus.CounterVec
	droppedRows prometheus.Counter
}

// NewOrderFlowMetrics registers the order flow metrics on the provided registerer.
func NewOrderFlowMetrics(reg prometheus.Registerer) *OrderFlowMetrics {
	if reg == nil {
		return &OrderFlowMetrics{}
	}
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_total",
		Help: "Checkout attempts by result.",
	}, []string{"result"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Staff-initiated order status transitions.",
	}, []string{"status"})
	droppedRows := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_rows_dropped_total",
		Help: "Cart rows silently dropped because the catalog item went missing or inactive.",
	})
	reg.MustRegister(checkouts, transitions, droppedRows)
	return &OrderFlowMetrics{
		checkouts:   checkouts,
		transitions: transitions,
		droppedRows: droppedRows,
	}
}

// IncCheckout increments the checkout counter for the given result label.
func (m *OrderFlowMetrics) IncCheckout(result string) {
	if m == nil || m.checkouts == nil {
		return
	}
	if result == "" {
		result = "unknown"
	}
	m.checkouts.WithLabelValues(result).Inc()
}

// IncTransition increments the transition counter for the target status.
func (m *OrderFlowMetrics) IncTransition(status string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(status).Inc()
}

// AddDroppedRows counts cart rows evicted during pricing.
func (m *OrderFlowMetrics) AddDroppedRows(n int) {
	if m == nil || m.droppedRows == nil || n <= 0 {
		return
	}
	m.droppedRows.Add(float64(n))
}
