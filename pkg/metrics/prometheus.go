// Package metrics provides Prometheus metrics for the decoy lab engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// riskScoreBuckets spans the clamped 0-100 risk score range.
var riskScoreBuckets = []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100} //nolint:gochecknoglobals // shared bucket layout

// Manager manages all Prometheus metrics for the lab engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Session lifecycle metrics
	sessionsStarted   prometheus.Counter
	sessionsCompleted prometheus.Counter
	sessionsReaped    prometheus.Counter
	activeSessions    prometheus.Gauge

	// Event ingestion metrics
	eventsIngested prometheus.Counter
	eventsDropped  prometheus.Counter

	// Evaluation metrics
	evaluationDuration prometheus.Histogram
	trapsTriggered     prometheus.Counter
	riskScore          prometheus.Histogram
	riskBand           *prometheus.CounterVec

	// Catalog metrics
	labsLoaded prometheus.Gauge

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System performance metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "decoy",
		subsystem:        "labs",
		histogramBuckets: prometheus.DefBuckets,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	// Session lifecycle
	m.sessionsStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_started_total",
		Help:      "Total number of lab sessions started",
	})

	m.sessionsCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_completed_total",
		Help:      "Total number of lab sessions completed and evaluated",
	})

	m.sessionsReaped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_reaped_total",
		Help:      "Total number of completed sessions removed by the reaper",
	})

	m.activeSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_active",
		Help:      "Current number of sessions held in the store",
	})

	// Event ingestion
	m.eventsIngested = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_ingested_total",
		Help:      "Total number of interaction events accepted into sessions",
	})

	m.eventsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_dropped_total",
		Help:      "Total number of malformed events dropped from batches",
	})

	// Evaluation
	m.evaluationDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "evaluation_duration_milliseconds",
		Help:      "Histogram of session evaluation duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.trapsTriggered = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "traps_triggered_total",
		Help:      "Total number of traps triggered across evaluated sessions",
	})

	m.riskScore = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "risk_score",
		Help:      "Distribution of clamped risk scores across completed sessions",
		Buckets:   riskScoreBuckets,
	})

	m.riskBand = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "risk_band_total",
			Help:      "Completed sessions by risk band classification",
		},
		[]string{"band"},
	)

	// Catalog
	m.labsLoaded = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "labs_loaded",
		Help:      "Number of lab definitions loaded into the catalog",
	})

	// HTTP performance
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	// System performance
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current allocated memory in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// Package-level helpers operating on the global manager.

// RecordSessionStarted increments the started-session counter.
func RecordSessionStarted() {
	globalManager.sessionsStarted.Inc()
}

// RecordSessionCompleted increments the completed-session counter.
func RecordSessionCompleted() {
	globalManager.sessionsCompleted.Inc()
}

// RecordSessionsReaped adds to the reaped-session counter.
func RecordSessionsReaped(n int) {
	globalManager.sessionsReaped.Add(float64(n))
}

// UpdateActiveSessions sets the active session gauge.
func UpdateActiveSessions(n int) {
	globalManager.activeSessions.Set(float64(n))
}

// RecordEventsIngested adds accepted events to the ingestion counter.
func RecordEventsIngested(n int) {
	globalManager.eventsIngested.Add(float64(n))
}

// RecordEventsDropped adds dropped events to the drop counter.
func RecordEventsDropped(n int) {
	globalManager.eventsDropped.Add(float64(n))
}

// RecordEvaluationDuration observes one evaluation duration in milliseconds.
func RecordEvaluationDuration(ms float64) {
	globalManager.evaluationDuration.Observe(ms)
}

// RecordTrapsTriggered adds to the triggered-trap counter.
func RecordTrapsTriggered(n int) {
	globalManager.trapsTriggered.Add(float64(n))
}

// RecordRiskScore observes one clamped risk score.
func RecordRiskScore(score int) {
	globalManager.riskScore.Observe(float64(score))
}

// RecordRiskBand increments the per-band completion counter.
func RecordRiskBand(band string) {
	globalManager.riskBand.WithLabelValues(band).Inc()
}

// UpdateLabsLoaded sets the loaded-lab gauge.
func UpdateLabsLoaded(n int) {
	globalManager.labsLoaded.Set(float64(n))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records an HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// UpdateSystemMemoryUsage sets the allocated memory gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime observes a GC pause duration in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by the service.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
