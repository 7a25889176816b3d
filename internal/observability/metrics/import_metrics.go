package metrics

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/mensaplan/internal/mealplan/domain"
	"github.com/smallbiznis/mensaplan/pkg/db"
)

const (
	ImportOutcomeImported    = "imported"
	ImportOutcomeNotModified = "not_modified"
	ImportOutcomeUnchanged   = "unchanged"
	ImportOutcomeFailed      = "failed"
)

const (
	ImportReasonDeadlineExceeded = "deadline_exceeded"
	ImportReasonUpstream         = "upstream"
	ImportReasonInvalidRange     = "invalid_range"
	ImportReasonUniqueViolation  = "unique_violation"
	ImportReasonDBLockTimeout    = "db_lock_timeout"
	ImportReasonStorage          = "storage"
	ImportReasonUnknown          = "unknown"
)

const (
	TriggerScheduler = "scheduler"
	TriggerHTTP      = "http"
	TriggerCLI       = "cli"
)

// ImportMetrics captures range import health signals.
type ImportMetrics struct {
	runs       *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	errors     *prometheus.CounterVec
	rows       *prometheus.CounterVec
	runLoopLag prometheus.Observer
	lastOK     prometheus.Gauge
}

var (
	importMetricsOnce sync.Once
	importMetrics     *ImportMetrics
)

// Import returns the singleton import metrics registry.
func Import() *ImportMetrics {
	return ImportWithConfig(Config{})
}

// ImportWithConfig returns the singleton import metrics registry using config labels.
func ImportWithConfig(cfg Config) *ImportMetrics {
	importMetricsOnce.Do(func() {
		importMetrics = newImportMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return importMetrics
}

// ResetImportMetricsForTest resets the import metrics singleton for tests.
func ResetImportMetricsForTest() {
	importMetricsOnce = sync.Once{}
	importMetrics = nil
}

// NewImportMetricsForTest builds import metrics on an isolated registerer.
func NewImportMetricsForTest(registerer prometheus.Registerer) *ImportMetrics {
	return newImportMetrics(registerer, Config{ServiceName: "mensaplan", Environment: "test"})
}

func newImportMetrics(registerer prometheus.Registerer, cfg Config) *ImportMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	labels := constLabels(cfg)

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "mensaplan_import_runs_total",
		Help:        "Range import runs by trigger and outcome.",
		ConstLabels: labels,
	}, []string{"trigger", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "mensaplan_import_duration_seconds",
		Help:        "Range import latency including the vendor fetch.",
		Buckets:     []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60, 120, 300},
		ConstLabels: labels,
	}, []string{"trigger"})
	errs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "mensaplan_import_errors_total",
		Help:        "Range import errors by low-cardinality reason.",
		ConstLabels: labels,
	}, []string{"trigger", "reason"})
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "mensaplan_import_rows_total",
		Help:        "Rows touched by committed imports.",
		ConstLabels: labels,
	}, []string{"resource"})
	runLoopLag := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "mensaplan_scheduler_runloop_lag_seconds",
		Help:        "Scheduler run loop lag beyond the configured interval.",
		Buckets:     []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		ConstLabels: labels,
	})
	lastOK := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "mensaplan_import_last_success_timestamp_seconds",
		Help:        "Unix time of the last successful import.",
		ConstLabels: labels,
	})

	registerer.MustRegister(runs, duration, errs, rows, runLoopLag, lastOK)

	return &ImportMetrics{
		runs:       runs,
		duration:   duration,
		errors:     errs,
		rows:       rows,
		runLoopLag: runLoopLag,
		lastOK:     lastOK,
	}
}

// ObserveRun records one finished import.
func (m *ImportMetrics) ObserveRun(trigger, outcome string, duration time.Duration, at time.Time) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(trigger, outcome).Inc()
	m.duration.WithLabelValues(trigger).Observe(duration.Seconds())
	if outcome != ImportOutcomeFailed {
		m.lastOK.Set(float64(at.Unix()))
	}
}

// IncError increments the import error counter with classification.
func (m *ImportMetrics) IncError(trigger string, err error) {
	if m == nil || err == nil {
		return
	}
	m.errors.WithLabelValues(trigger, ClassifyImportError(err)).Inc()
}

// AddRows counts rows touched by a committed import.
func (m *ImportMetrics) AddRows(resource string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.rows.WithLabelValues(resource).Add(float64(count))
}

// ObserveRunLoopLag records lag between the scheduled tick and actual run start.
func (m *ImportMetrics) ObserveRunLoopLag(lag time.Duration) {
	if m == nil {
		return
	}
	if lag < 0 {
		lag = 0
	}
	m.runLoopLag.Observe(lag.Seconds())
}

// ClassifyImportError maps import errors to low-cardinality reasons.
func ClassifyImportError(err error) string {
	switch {
	case err == nil:
		return ImportReasonUnknown
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		return ImportReasonDeadlineExceeded
	case errors.Is(err, domain.ErrUpstream):
		return ImportReasonUpstream
	case errors.Is(err, domain.ErrInvalidRange):
		return ImportReasonInvalidRange
	case db.IsDuplicateKeyErr(err):
		return ImportReasonUniqueViolation
	case db.IsLockTimeoutErr(err):
		return ImportReasonDBLockTimeout
	case errors.Is(err, domain.ErrStorage):
		return ImportReasonStorage
	default:
		return ImportReasonUnknown
	}
}
