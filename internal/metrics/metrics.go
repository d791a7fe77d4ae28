// Package metrics defines the Prometheus metrics exported by the service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "donations"

// Metrics holds the workflow and HTTP metrics.
type Metrics struct {
	// Workflows counts donation workflow runs by operation and outcome.
	Workflows *prometheus.CounterVec

	// WorkflowDuration measures workflow runs end to end, transaction included.
	WorkflowDuration *prometheus.HistogramVec

	// StockRejections counts requests refused for lack of stock, by condition.
	StockRejections *prometheus.CounterVec

	// StockAdjustments counts units moved through the ledger, by direction
	// (in, out) and condition.
	StockAdjustments *prometheus.CounterVec

	// HTTPRequests counts HTTP requests by route pattern, method and status.
	HTTPRequests *prometheus.CounterVec
}

// New registers the metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Workflows: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflows_total",
			Help:      "Donation workflow runs by operation and outcome.",
		}, []string{"operation", "outcome"}),
		WorkflowDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "workflow_duration_seconds",
			Help:      "Duration of donation workflow runs.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		StockRejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_rejections_total",
			Help:      "Requests rejected for insufficient stock, by item condition.",
		}, []string{"condition"}),
		StockAdjustments: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_units_total",
			Help:      "Units of stock added to or taken from inventory, by item condition.",
		}, []string{"direction", "condition"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
	}
}

// ObserveWorkflow records one finished workflow run. A nil receiver is a no-op.
func (m *Metrics) ObserveWorkflow(operation, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Workflows.WithLabelValues(operation, outcome).Inc()
	m.WorkflowDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// ObserveStockRejection records a request refused for lack of stock.
func (m *Metrics) ObserveStockRejection(condition string) {
	if m == nil {
		return
	}
	m.StockRejections.WithLabelValues(condition).Inc()
}

// ObserveAdjustment records units moved for one condition. Positive deltas
// go into stock, negative deltas come out of it.
func (m *Metrics) ObserveAdjustment(condition string, delta int) {
	if m == nil || delta == 0 {
		return
	}
	direction := "in"
	if delta < 0 {
		direction = "out"
		delta = -delta
	}
	m.StockAdjustments.WithLabelValues(direction, condition).Add(float64(delta))
}
