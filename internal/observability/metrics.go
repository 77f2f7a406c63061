package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes the worker's report/store counters.
type Metrics struct {
	reportsStarted   prometheus.Counter
	reportsCompleted prometheus.Counter
	reportsFailed    prometheus.Counter
	storesProcessed  prometheus.Counter
	storesFailed     prometheus.Counter
	reportDuration   prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		reportsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storewatch_reports_started_total",
			Help: "Report jobs picked up from the queue.",
		}),
		reportsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storewatch_reports_completed_total",
			Help: "Report jobs that reached Complete.",
		}),
		reportsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storewatch_reports_failed_total",
			Help: "Report jobs that reached Failed.",
		}),
		storesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storewatch_stores_processed_total",
			Help: "Stores written to a report.",
		}),
		storesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storewatch_stores_failed_total",
			Help: "Stores skipped due to per-store computation errors.",
		}),
		reportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "storewatch_report_duration_seconds",
			Help:    "End-to-end report generation time.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}

	prometheus.MustRegister(
		m.reportsStarted,
		m.reportsCompleted,
		m.reportsFailed,
		m.storesProcessed,
		m.storesFailed,
		m.reportDuration,
	)
	return m
}

func (m *Metrics) ReportStarted() { m.reportsStarted.Inc() }

func (m *Metrics) ReportCompleted(seconds float64) {
	m.reportsCompleted.Inc()
	m.reportDuration.Observe(seconds)
}

func (m *Metrics) ReportFailed() { m.reportsFailed.Inc() }

func (m *Metrics) StoreProcessed() { m.storesProcessed.Inc() }

func (m *Metrics) StoreFailed() { m.storesFailed.Inc() }
