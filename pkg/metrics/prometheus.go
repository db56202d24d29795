// Package metrics provides Prometheus metrics for the FightMatch pipeline and API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Latency buckets in milliseconds. Fetches include rate-limit waits and
// retry backoff, so the upper buckets reach well past a minute.
var defaultBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000} //nolint:gochecknoglobals // constant table

// Manager owns every FightMatch collector.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Acquisition
	fetchRequests      *prometheus.CounterVec
	fetchRetries       prometheus.Counter
	fetchLatency       prometheus.Histogram
	rateLimitWait      prometheus.Histogram
	cacheReads         *prometheus.CounterVec
	cacheWriteErrors   prometheus.Counter
	breakerState       *prometheus.GaugeVec
	breakerTransitions *prometheus.CounterVec

	// Normalization
	parsedRecords  *prometheus.CounterVec
	datasetRecords *prometheus.GaugeVec
	featureRows    prometheus.Gauge

	// Ranking
	rankingLatency   prometheus.Histogram
	boardsComputed   prometheus.Counter
	matchupsSelected prometheus.Counter
	boardsStored     prometheus.Gauge

	// Queue and workers
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors *prometheus.CounterVec
	workerActive       prometheus.Gauge
	workerLatency      prometheus.Histogram
	workerErrors       prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec

	// Process
	systemMemory     prometheus.Gauge
	systemGoroutines prometheus.Gauge
	systemGCPause    prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by the Record* helpers

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps Go runtime collectors out of /metrics

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "fightmatch",
		subsystem:        "pipeline",
		histogramBuckets: defaultBuckets,
		enabled:          true,
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
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: m.histogramBuckets, ConstLabels: m.constLabels}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.fetchRequests = auto.NewCounterVec(m.counterOpts("fetch_requests_total", "Fetch calls by outcome (cache_hit, success, failure, rejected)"), []string{"outcome"})
	m.fetchRetries = auto.NewCounter(m.counterOpts("fetch_retries_total", "HTTP attempts beyond the first"))
	m.fetchLatency = auto.NewHistogram(m.histogramOpts("fetch_latency_milliseconds", "Network fetch latency including retries"))
	m.rateLimitWait = auto.NewHistogram(m.histogramOpts("rate_limit_wait_milliseconds", "Time spent blocked in the rate limiter"))
	m.cacheReads = auto.NewCounterVec(m.counterOpts("cache_reads_total", "Cache reads by result (hit, miss, expired, error)"), []string{"result"})
	m.cacheWriteErrors = auto.NewCounter(m.counterOpts("cache_write_errors_total", "Cache writes that failed and were ignored"))
	m.breakerState = auto.NewGaugeVec(m.gaugeOpts("circuit_breaker_state", "Circuit breaker state (0 closed, 1 half-open, 2 open)"), []string{"name"})
	m.breakerTransitions = auto.NewCounterVec(m.counterOpts("circuit_breaker_transitions_total", "Circuit breaker state transitions"), []string{"name", "from", "to"})

	m.parsedRecords = auto.NewCounterVec(m.counterOpts("parsed_records_total", "Records recovered from markup by kind"), []string{"kind"})
	m.datasetRecords = auto.NewGaugeVec(m.gaugeOpts("dataset_records", "Records in the last built dataset by collection"), []string{"collection"})
	m.featureRows = auto.NewGauge(m.gaugeOpts("feature_rows", "Rows in the last built features table"))

	m.rankingLatency = auto.NewHistogram(m.histogramOpts("ranking_latency_milliseconds", "Time to rank one division and select its matchups"))
	m.boardsComputed = auto.NewCounter(m.counterOpts("boards_computed_total", "Division boards computed"))
	m.matchupsSelected = auto.NewCounter(m.counterOpts("matchups_selected_total", "Matchups accepted by selection"))
	m.boardsStored = auto.NewGauge(m.gaugeOpts("boards_stored", "Division boards held by the board store"))

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Jobs waiting in the division queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Capacity of the division queue"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueued_total", "Jobs accepted by the queue"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("queue_dequeued_total", "Jobs handed to workers"))
	m.queueEnqueueErrors = auto.NewCounterVec(m.counterOpts("queue_enqueue_errors_total", "Rejected enqueues by reason"), []string{"reason"})
	m.workerActive = auto.NewGauge(m.gaugeOpts("worker_active", "Workers in the pool"))
	m.workerLatency = auto.NewHistogram(m.histogramOpts("worker_processing_latency_milliseconds", "Job processing latency"))
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Jobs that failed"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total", "HTTP requests by route, method and status"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration"), []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(m.counterOpts("errors_total", "Errors by component and type"), []string{"component", "type"})

	m.systemMemory = auto.NewGauge(m.gaugeOpts("system_memory_bytes", "Heap bytes allocated"))
	m.systemGoroutines = auto.NewGauge(m.gaugeOpts("system_goroutines", "Live goroutines"))
	m.systemGCPause = auto.NewGauge(m.gaugeOpts("system_gc_pause_milliseconds", "Average GC pause"))
}

// RecordFetch counts one Fetch call by outcome.
func RecordFetch(outcome string) {
	if globalManager.enabled {
		globalManager.fetchRequests.WithLabelValues(outcome).Inc()
	}
}

// RecordFetchRetry counts one retried attempt.
func RecordFetchRetry() {
	if globalManager.enabled {
		globalManager.fetchRetries.Inc()
	}
}

// RecordFetchLatency records network fetch latency in milliseconds.
func RecordFetchLatency(ms float64) {
	if globalManager.enabled {
		globalManager.fetchLatency.Observe(ms)
	}
}

// RecordRateLimitWait records time blocked in the rate limiter.
func RecordRateLimitWait(ms float64) {
	if globalManager.enabled {
		globalManager.rateLimitWait.Observe(ms)
	}
}

// RecordCacheRead counts a cache read by result.
func RecordCacheRead(result string) {
	if globalManager.enabled {
		globalManager.cacheReads.WithLabelValues(result).Inc()
	}
}

// RecordCacheWriteError counts a failed cache write.
func RecordCacheWriteError() {
	if globalManager.enabled {
		globalManager.cacheWriteErrors.Inc()
	}
}

// UpdateBreakerState sets the state gauge for a named breaker.
func UpdateBreakerState(name string, state float64) {
	if globalManager.enabled {
		globalManager.breakerState.WithLabelValues(name).Set(state)
	}
}

// RecordBreakerTransition counts a breaker state change.
func RecordBreakerTransition(name, from, to string) {
	if globalManager.enabled {
		globalManager.breakerTransitions.WithLabelValues(name, from, to).Inc()
	}
}

// RecordParsed adds n parsed records of a kind.
func RecordParsed(kind string, n int) {
	if globalManager.enabled && n > 0 {
		globalManager.parsedRecords.WithLabelValues(kind).Add(float64(n))
	}
}

// UpdateDatasetRecords sets the size of a dataset collection.
func UpdateDatasetRecords(collection string, n int) {
	if globalManager.enabled {
		globalManager.datasetRecords.WithLabelValues(collection).Set(float64(n))
	}
}

// UpdateFeatureRows sets the number of feature rows built.
func UpdateFeatureRows(n int) {
	if globalManager.enabled {
		globalManager.featureRows.Set(float64(n))
	}
}

// RecordRankingLatency records the time to compute one board.
func RecordRankingLatency(ms float64) {
	if globalManager.enabled {
		globalManager.rankingLatency.Observe(ms)
	}
}

// RecordBoardComputed counts one division board.
func RecordBoardComputed() {
	if globalManager.enabled {
		globalManager.boardsComputed.Inc()
	}
}

// RecordMatchupsSelected adds n accepted matchups.
func RecordMatchupsSelected(n int) {
	if globalManager.enabled && n > 0 {
		globalManager.matchupsSelected.Add(float64(n))
	}
}

// UpdateBoardsStored sets the number of boards held in memory.
func UpdateBoardsStored(n int) {
	if globalManager.enabled {
		globalManager.boardsStored.Set(float64(n))
	}
}

// UpdateQueueSize sets the current queue length.
func UpdateQueueSize(size int) {
	if globalManager.enabled {
		globalManager.queueSize.Set(float64(size))
	}
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	if globalManager.enabled {
		globalManager.queueCapacity.Set(float64(capacity))
	}
}

// RecordQueueEnqueue counts an accepted job.
func RecordQueueEnqueue() {
	if globalManager.enabled {
		globalManager.queueEnqueued.Inc()
	}
}

// RecordQueueDequeue counts a job handed to a worker.
func RecordQueueDequeue() {
	if globalManager.enabled {
		globalManager.queueDequeued.Inc()
	}
}

// RecordQueueEnqueueError counts a rejected job.
func RecordQueueEnqueueError(reason string) {
	if globalManager.enabled {
		globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
	}
}

// UpdateWorkerActiveCount sets the worker pool size.
func UpdateWorkerActiveCount(n int) {
	if globalManager.enabled {
		globalManager.workerActive.Set(float64(n))
	}
}

// RecordWorkerProcessingLatency records job latency in milliseconds.
func RecordWorkerProcessingLatency(ms float64) {
	if globalManager.enabled {
		globalManager.workerLatency.Observe(ms)
	}
}

// RecordWorkerError counts a failed job.
func RecordWorkerError() {
	if globalManager.enabled {
		globalManager.workerErrors.Inc()
	}
}

// RecordHTTPRequest records one HTTP request and its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	}
}

// RecordErrorByComponent counts an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if globalManager.enabled {
		globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// UpdateSystemMemoryUsage sets the allocated heap size.
func UpdateSystemMemoryUsage(bytes uint64) {
	if globalManager.enabled {
		globalManager.systemMemory.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(n int) {
	if globalManager.enabled {
		globalManager.systemGoroutines.Set(float64(n))
	}
}

// RecordSystemGCPauseTime sets the average GC pause in milliseconds.
func RecordSystemGCPauseTime(ms float64) {
	if globalManager.enabled {
		globalManager.systemGCPause.Set(ms)
	}
}

// GetRegistry returns the registry backing the Record* helpers.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
