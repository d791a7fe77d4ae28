package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveWorkflow("create_outgoing", "success", 20*time.Millisecond)
	m.ObserveWorkflow("create_outgoing", "success", 10*time.Millisecond)
	m.ObserveStockRejection("Used")
	m.ObserveAdjustment("New", -4)
	m.ObserveAdjustment("New", 3)
	m.ObserveAdjustment("Used", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Workflows.WithLabelValues("create_outgoing", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StockRejections.WithLabelValues("Used")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.StockAdjustments.WithLabelValues("out", "New")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.StockAdjustments.WithLabelValues("in", "New")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.StockAdjustments, "donations_stock_units_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(m.WorkflowDuration))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveWorkflow("update_outgoing", "error", time.Second)
		m.ObserveStockRejection("New")
		m.ObserveAdjustment("New", 1)
	})
}
