package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values shared with callers.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
	OutcomeHit   = "hit"
	OutcomeMiss  = "miss"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Leaderboard
	leaderboardBuilds       *prometheus.CounterVec
	leaderboardBuildLatency prometheus.Histogram
	toolsScored             prometheus.Gauge
	metricSubstitutions     *prometheus.CounterVec

	// Snapshots
	snapshotLoads        *prometheus.CounterVec
	snapshotSaves        *prometheus.CounterVec
	snapshotLastSaveUnix prometheus.Gauge

	// Comparisons
	compareResolutions *prometheus.CounterVec
	registryEntries    prometheus.Gauge
	registryConflicts  prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
	errorsByComponent   *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "toolboard",
		subsystem:        "",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: m.histogramBuckets}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.leaderboardBuilds = auto.NewCounterVec(
		m.counterOpts("leaderboard_builds_total", "Leaderboard payloads built, by outcome"),
		[]string{"outcome"},
	)
	m.leaderboardBuildLatency = auto.NewHistogram(
		m.histogramOpts("leaderboard_build_latency_milliseconds", "Time to score the catalog and diff it against the snapshot"),
	)
	m.toolsScored = auto.NewGauge(
		m.gaugeOpts("tools_scored", "Number of tools scored by the last leaderboard build"),
	)
	m.metricSubstitutions = auto.NewCounterVec(
		m.counterOpts("metric_substitutions_total", "Missing or invalid tool metrics replaced by the neutral default"),
		[]string{"metric"},
	)

	m.snapshotLoads = auto.NewCounterVec(
		m.counterOpts("snapshot_loads_total", "Snapshot loads by outcome (hit, miss, error)"),
		[]string{"outcome"},
	)
	m.snapshotSaves = auto.NewCounterVec(
		m.counterOpts("snapshot_saves_total", "Snapshot saves by outcome"),
		[]string{"outcome"},
	)
	m.snapshotLastSaveUnix = auto.NewGauge(
		m.gaugeOpts("snapshot_last_save_unix_seconds", "Unix time of the last successful snapshot save"),
	)

	m.compareResolutions = auto.NewCounterVec(
		m.counterOpts("compare_resolutions_total", "Comparison slug resolutions by result type"),
		[]string{"result"},
	)
	m.registryEntries = auto.NewGauge(
		m.gaugeOpts("compare_registry_entries", "Number of registered comparisons"),
	)
	m.registryConflicts = auto.NewGauge(
		m.gaugeOpts("compare_registry_conflicts", "Registrations ignored because an earlier entry claimed the key"),
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorsByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "HTTP errors by endpoint, method and error type"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorsByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Errors by component and error type"),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(
		m.gaugeOpts("system_memory_usage_bytes", "Heap bytes allocated"),
	)
	m.systemGoroutineCount = auto.NewGauge(
		m.gaugeOpts("system_goroutine_count", "Number of goroutines"),
	)
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_milliseconds", "Average GC pause in milliseconds"),
	)
}

// Leaderboard metrics.

func RecordLeaderboardBuild(outcome string, latencyMs float64) {
	globalManager.leaderboardBuilds.WithLabelValues(outcome).Inc()
	globalManager.leaderboardBuildLatency.Observe(latencyMs)
}

func UpdateToolsScored(count int) {
	globalManager.toolsScored.Set(float64(count))
}

func RecordMetricSubstitution(metric string) {
	globalManager.metricSubstitutions.WithLabelValues(metric).Inc()
}

// Snapshot metrics.

func RecordSnapshotLoad(outcome string) {
	globalManager.snapshotLoads.WithLabelValues(outcome).Inc()
}

func RecordSnapshotSave(outcome string, unixSeconds int64) {
	globalManager.snapshotSaves.WithLabelValues(outcome).Inc()
	if outcome == OutcomeOK {
		globalManager.snapshotLastSaveUnix.Set(float64(unixSeconds))
	}
}

// Comparison metrics.

func RecordCompareResolution(result string) {
	globalManager.compareResolutions.WithLabelValues(result).Inc()
}

func UpdateRegistry(entries, conflicts int) {
	globalManager.registryEntries.Set(float64(entries))
	globalManager.registryConflicts.Set(float64(conflicts))
}

// HTTP metrics.

func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// System metrics.

func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
