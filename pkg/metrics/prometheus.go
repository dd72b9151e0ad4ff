// Package metrics provides Prometheus metrics for the tally dashboard service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 5 * time.Second
)

// Manager manages all Prometheus metrics for the tally service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Core Business Metrics - what the office actually watches
	submissions      *prometheus.CounterVec
	activityLogged   *prometheus.CounterVec
	celebrations     prometheus.Counter
	boardEntries     prometheus.Gauge
	summaryLatency   prometheus.Histogram
	summaryCacheHits *prometheus.CounterVec

	// Store Metrics - adapter boundary
	storeLatency   *prometheus.HistogramVec
	storeErrors    *prometheus.CounterVec
	loads          *prometheus.CounterVec
	snapshotMerges prometheus.Counter
	loadStatus     *prometheus.GaugeVec

	// Gate Metrics
	unlockAttempts *prometheus.CounterVec
	activeSessions prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Notice Queue Metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker Metrics
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Stream Metrics
	streamSubscribers prometheus.Gauge
	streamDropped     prometheus.Counter

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "tally",
		subsystem:        "dashboard",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// RefreshInterval reports how often gauges should be sampled.
func (m *Manager) RefreshInterval() time.Duration {
	return m.refreshInterval
}

// RefreshInterval reports the sampling interval of the global manager.
func RefreshInterval() time.Duration {
	return globalManager.RefreshInterval()
}

// name applies the optional metric prefix.
func (m *Manager) name(base string) string {
	if m.metricPrefix == "" {
		return base
	}
	return m.metricPrefix + "_" + base
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	constLabels := prometheus.Labels(m.customLabels)

	counter := func(name, help string) prometheus.Counter {
		return auto.NewCounter(prometheus.CounterOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: constLabels,
		})
	}
	counterVec := func(name, help string, labels ...string) *prometheus.CounterVec {
		return auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: constLabels,
		}, labels)
	}
	gauge := func(name, help string) prometheus.Gauge {
		return auto.NewGauge(prometheus.GaugeOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: constLabels,
		})
	}
	histogram := func(name, help string, buckets []float64) prometheus.Histogram {
		return auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, Buckets: buckets, ConstLabels: constLabels,
		})
	}
	histogramVec := func(name, help string, labels ...string) *prometheus.HistogramVec {
		return auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, Buckets: m.histogramBuckets, ConstLabels: constLabels,
		}, labels)
	}

	// Core Business Metrics
	m.submissions = counterVec("submissions_total", "Entry submissions by result (ok, not_authorized, unknown_consultant, persistence_error)", "result")
	m.activityLogged = counterVec("activity_logged_total", "Activity counts logged by consultant and kind", "consultant", "kind")
	m.celebrations = counter("celebrations_total", "Submissions that carried at least one placement")
	m.boardEntries = gauge("board_entries", "Entries currently held in the in-memory board")
	m.summaryLatency = histogram("summary_latency_milliseconds", "Time to aggregate and rank the board in milliseconds", m.histogramBuckets)
	m.summaryCacheHits = counterVec("summary_cache_total", "Summary memo lookups by outcome (hit, miss)", "outcome")

	// Store Metrics
	m.storeLatency = histogramVec("store_latency_milliseconds", "Store adapter operation latency in milliseconds", "op")
	m.storeErrors = counterVec("store_errors_total", "Store adapter failures by operation", "op")
	m.loads = counterVec("loads_total", "Board loads by result (ok, failed, discarded)", "result")
	m.snapshotMerges = counter("snapshot_merges_total", "Pushed snapshots merged into the board")
	m.loadStatus = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name("load_status"),
		Help: "Current board status (1 for the active status label)", ConstLabels: constLabels,
	}, []string{"status"})

	// Gate Metrics
	m.unlockAttempts = counterVec("unlock_attempts_total", "Access code attempts by result", "result")
	m.activeSessions = gauge("active_sessions", "Unlocked sessions currently tracked")

	// HTTP Performance Metrics
	m.httpRequests = counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	// Notice Queue Metrics
	m.queueSize = gauge("notice_queue_size", "Current size of the notice queue")
	m.queueCapacity = gauge("notice_queue_capacity", "Maximum notice queue capacity")
	m.queueUtilization = gauge("notice_queue_utilization_ratio", "Notice queue utilization ratio (0-1)")
	m.queueEnqueueRate = counter("notice_queue_enqueue_total", "Notices enqueued")
	m.queueDequeueRate = counter("notice_queue_dequeue_total", "Notices dequeued")
	m.queueEnqueueErrors = counter("notice_queue_enqueue_errors_total", "Notices rejected by the queue")

	// Worker Metrics
	m.workerCount = gauge("notice_worker_count", "Notice dispatch workers running")
	m.workerProcessingLatency = histogram("notice_worker_latency_milliseconds", "Notice dispatch latency in milliseconds", m.histogramBuckets)
	m.workerErrors = counter("notice_worker_errors_total", "Notice dispatch failures")

	// Stream Metrics
	m.streamSubscribers = gauge("stream_subscribers", "Connected live stream subscribers")
	m.streamDropped = counter("stream_dropped_total", "Notices dropped for slow stream subscribers")

	// Error Metrics
	m.errorRateByComponent = counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
	m.errorRateByType = counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")
	m.errorRateByEndpoint = counterVec("errors_by_endpoint_total", "Errors by endpoint, method and type", "endpoint", "method", "error_type")
	m.errorLatency = histogramVec("error_latency_milliseconds", "Latency of operations that failed", "component", "error_type")

	// System Performance Metrics
	m.systemMemoryUsage = gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// Known board statuses exported on load_status.
var statuses = []string{"loading", "live", "degraded"} //nolint:gochecknoglobals // fixed label set

// RecordSubmission counts a submission attempt by result label.
func RecordSubmission(result string) {
	if !globalManager.enabled {
		return
	}
	globalManager.submissions.WithLabelValues(result).Inc()
}

// RecordActivity adds logged activity counts for a consultant.
func RecordActivity(consultant string, intakes, interviews, placements, prospects int) {
	if !globalManager.enabled {
		return
	}
	add := func(kind string, n int) {
		if n > 0 {
			globalManager.activityLogged.WithLabelValues(consultant, kind).Add(float64(n))
		}
	}
	add("intakes", intakes)
	add("interviews", interviews)
	add("placements", placements)
	add("prospects", prospects)
}

// RecordCelebration increments the celebrations counter.
func RecordCelebration() {
	globalManager.celebrations.Inc()
}

// UpdateBoardEntries sets the in-memory board size.
func UpdateBoardEntries(count int) {
	globalManager.boardEntries.Set(float64(count))
}

// RecordSummaryLatency records aggregation latency in milliseconds.
func RecordSummaryLatency(latencyMs float64) {
	globalManager.summaryLatency.Observe(latencyMs)
}

// RecordSummaryCache records a memo hit or miss.
func RecordSummaryCache(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	globalManager.summaryCacheHits.WithLabelValues(outcome).Inc()
}

// RecordStoreLatency records a store adapter call latency.
func RecordStoreLatency(op string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordStoreError counts a failed store adapter call.
func RecordStoreError(op string) {
	globalManager.storeErrors.WithLabelValues(op).Inc()
}

// RecordLoad counts a board load by result.
func RecordLoad(result string) {
	globalManager.loads.WithLabelValues(result).Inc()
}

// RecordSnapshotMerge counts a pushed snapshot merged into the board.
func RecordSnapshotMerge() {
	globalManager.snapshotMerges.Inc()
}

// UpdateLoadStatus marks status as the active board status.
func UpdateLoadStatus(status string) {
	for _, s := range statuses {
		v := 0.0
		if s == status {
			v = 1
		}
		globalManager.loadStatus.WithLabelValues(s).Set(v)
	}
}

// RecordUnlockAttempt counts an access code attempt.
func RecordUnlockAttempt(ok bool) {
	result := "rejected"
	if ok {
		result = "accepted"
	}
	globalManager.unlockAttempts.WithLabelValues(result).Inc()
}

// UpdateActiveSessions sets the tracked session count.
func UpdateActiveSessions(count int) {
	globalManager.activeSessions.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// Worker Metrics Functions.

// UpdateWorkerCount sets the number of running dispatch workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// Stream Metrics Functions.

// UpdateStreamSubscribers sets the connected stream subscriber count.
func UpdateStreamSubscribers(count int) {
	globalManager.streamSubscribers.Set(float64(count))
}

// RecordStreamDropped counts a notice dropped for a slow subscriber.
func RecordStreamDropped() {
	globalManager.streamDropped.Inc()
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Since returns the milliseconds elapsed since start, the unit every
// latency histogram in this package uses.
func Since(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
