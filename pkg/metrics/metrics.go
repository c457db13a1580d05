// Package metrics exposes the coordination engine's Prometheus counters and
// histograms: DSS round trips, conformance checks, scheduler job outcomes,
// and KV store operations. Instances are created once at startup and
// threaded through to the components that call their Observe*/Record*
// methods; a nil *Metrics is safe to call and is a no-op, so components can
// be built without metrics enabled.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups every Prometheus collector the coordination engine emits.
type Metrics struct {
	dssRequests       *prometheus.CounterVec
	dssRequestLatency *prometheus.HistogramVec

	conformanceChecks        *prometheus.CounterVec
	conformanceCheckLatency  prometheus.Histogram
	nonconformingDeclarations prometheus.Counter

	schedulerJobs        *prometheus.CounterVec
	schedulerJobLatency  *prometheus.HistogramVec
	schedulerQueueDepth  prometheus.Gauge

	kvOps *prometheus.CounterVec
}

// New registers all collectors against reg and returns a ready-to-use
// Metrics. Pass a fresh prometheus.NewRegistry() in production and wire it
// to an HTTP handler via promhttp.HandlerFor.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		dssRequests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "flight_blender_dss_requests_total",
				Help: "Total DSS requests by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		dssRequestLatency: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flight_blender_dss_request_duration_seconds",
				Help:    "DSS request latency by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		conformanceChecks: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "flight_blender_conformance_checks_total",
				Help: "Total conformance checks by resulting code.",
			},
			[]string{"code"},
		),
		conformanceCheckLatency: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "flight_blender_conformance_check_duration_seconds",
				Help:    "Time to evaluate one conformance check.",
				Buckets: prometheus.DefBuckets,
			},
		),
		nonconformingDeclarations: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "flight_blender_nonconforming_declarations_total",
				Help: "Total declarations moved into the Nonconforming state.",
			},
		),
		schedulerJobs: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "flight_blender_scheduler_jobs_total",
				Help: "Total scheduler jobs by kind and outcome.",
			},
			[]string{"kind", "outcome"},
		),
		schedulerJobLatency: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flight_blender_scheduler_job_duration_seconds",
				Help:    "Scheduler job latency by kind.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		schedulerQueueDepth: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "flight_blender_scheduler_queue_depth",
				Help: "Current number of jobs waiting in the scheduler queue.",
			},
		),
		kvOps: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "flight_blender_kv_operations_total",
				Help: "Total KV store operations by verb and outcome.",
			},
			[]string{"verb", "outcome"},
		),
	}
}

func (m *Metrics) ObserveDSSRequest(operation, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dssRequests.WithLabelValues(operation, outcome).Inc()
	m.dssRequestLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *Metrics) ObserveConformanceCheck(code string, duration time.Duration) {
	if m == nil {
		return
	}
	m.conformanceChecks.WithLabelValues(code).Inc()
	m.conformanceCheckLatency.Observe(duration.Seconds())
}

func (m *Metrics) RecordNonconforming() {
	if m == nil {
		return
	}
	m.nonconformingDeclarations.Inc()
}

func (m *Metrics) ObserveSchedulerJob(kind, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.schedulerJobs.WithLabelValues(kind, outcome).Inc()
	m.schedulerJobLatency.WithLabelValues(kind).Observe(duration.Seconds())
}

func (m *Metrics) SetSchedulerQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.schedulerQueueDepth.Set(float64(depth))
}

func (m *Metrics) RecordKVOp(verb, outcome string) {
	if m == nil {
		return
	}
	m.kvOps.WithLabelValues(verb, outcome).Inc()
}
