// Package metrics provides Prometheus metrics for the match simulator.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the simulator.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Simulation output
	matchesSimulated prometheus.Counter
	pointsPlayed     prometheus.Counter
	acesTotal        *prometheus.CounterVec
	doubleFaults     *prometheus.CounterVec
	invariantErrors  *prometheus.CounterVec

	// Work units
	unitsCompleted prometheus.Counter
	unitsFailed    prometheus.Counter
	unitDuration   prometheus.Histogram

	// Export
	exportBatches  prometheus.Counter
	exportRows     prometheus.Counter
	exportErrors   prometheus.Counter
	exportDuration prometheus.Histogram

	// Queue
	queueCapacity      prometheus.Gauge
	queueSize          prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers and runs
	workerActiveCount    prometheus.Gauge
	runDuration          prometheus.Gauge
	runInfo              *prometheus.GaugeVec
	errorRateByComponent *prometheus.CounterVec

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

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "matchsim",
		subsystem:        "simulation",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.customLabels,
		Buckets:     m.histogramBuckets,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	m.matchesSimulated = m.counter("matches_simulated_total", "Matches simulated to completion")
	m.pointsPlayed = m.counter("points_played_total", "Points played across all simulated matches")
	m.acesTotal = m.counterVec("aces_total", "Aces served, by player", "player")
	m.doubleFaults = m.counterVec("double_faults_total", "Double faults served, by player", "player")
	m.invariantErrors = m.counterVec("invariant_errors_total", "State machine invariant violations, by stage", "stage")

	m.unitsCompleted = m.counter("units_completed_total", "Work units simulated to completion")
	m.unitsFailed = m.counter("units_failed_total", "Work units aborted by an invariant violation")
	m.unitDuration = m.histogram("unit_duration_seconds", "Wall-clock time to simulate one work unit")

	m.exportBatches = m.counter("export_batches_total", "Point log batches written by the exporter")
	m.exportRows = m.counter("export_rows_total", "Point log rows written by the exporter")
	m.exportErrors = m.counter("export_errors_total", "Point log batches rejected by the exporter")
	m.exportDuration = m.histogram("export_duration_seconds", "Time to write one point log batch")

	m.queueCapacity = m.gauge("queue_capacity", "Capacity of the work unit queue")
	m.queueSize = m.gauge("queue_size", "Work units waiting in the queue")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Work units accepted by the queue")
	m.queueDequeued = m.counter("queue_dequeued_total", "Work units handed to workers")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Work units the queue refused")

	m.workerActiveCount = m.gauge("worker_active_count", "Workers currently simulating")
	m.runDuration = m.gauge("run_duration_seconds", "Wall-clock duration of the last batch run")
	m.runInfo = promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: "run_info",
		Help:        "Identity of batch runs executed by this process",
		ConstLabels: m.customLabels,
	}, []string{"run_id", "best_of", "final_set"})
	m.errorRateByComponent = m.counterVec("errors_total", "Errors by component and type", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
	m.systemGCPauseTime = promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: "system_gc_pause_milliseconds",
		Help:        "Average GC pause in milliseconds",
		ConstLabels: m.customLabels,
		Buckets:     []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50},
	})
}

// Simulation Metrics Functions.

// RecordMatch records one completed match.
func RecordMatch(points int) {
	globalManager.matchesSimulated.Inc()
	globalManager.pointsPlayed.Add(float64(points))
}

// RecordServeStats adds a player's aces and double faults.
func RecordServeStats(player string, aces, doubleFaults int64) {
	globalManager.acesTotal.WithLabelValues(player).Add(float64(aces))
	globalManager.doubleFaults.WithLabelValues(player).Add(float64(doubleFaults))
}

// RecordInvariantError counts an invariant violation at the given stage.
func RecordInvariantError(stage string) {
	globalManager.invariantErrors.WithLabelValues(stage).Inc()
}

// Work Unit Metrics Functions.

// RecordUnitCompleted records a finished unit and its duration.
func RecordUnitCompleted(d time.Duration) {
	globalManager.unitsCompleted.Inc()
	globalManager.unitDuration.Observe(d.Seconds())
}

// RecordUnitFailed records a unit aborted by an invariant violation.
func RecordUnitFailed() {
	globalManager.unitsFailed.Inc()
}

// Export Metrics Functions.

// RecordExportBatch records a written batch of rows.
func RecordExportBatch(rows int, d time.Duration) {
	globalManager.exportBatches.Inc()
	globalManager.exportRows.Add(float64(rows))
	globalManager.exportDuration.Observe(d.Seconds())
}

// RecordExportError records a batch the exporter could not write.
func RecordExportError() {
	globalManager.exportErrors.Inc()
}

// Queue Metrics Functions.

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueSize sets the number of queued units.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// RecordQueueEnqueue records an accepted unit.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue records a unit handed to a worker.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError records a refused unit.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// Worker and Run Metrics Functions.

// AddWorkerActive adjusts the number of active workers by delta.
func AddWorkerActive(delta int) {
	globalManager.workerActiveCount.Add(float64(delta))
}

// RecordRun records a finished batch run.
func RecordRun(runID string, bestOf int, finalSet string, d time.Duration) {
	globalManager.runDuration.Set(d.Seconds())
	globalManager.runInfo.WithLabelValues(runID, fmt.Sprint(bestOf), finalSet).Set(1)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
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

// WriteTextfile writes every registered metric to path in the text
// exposition format, for node_exporter's textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}
