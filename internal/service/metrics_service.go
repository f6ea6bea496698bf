package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Junior-NGOY/masomo-sub003/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation. A nil receiver is a
// no-op so services can run without metrics in tests.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Histogram
	cacheWrite      prometheus.Histogram
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	dbQueryDuration *prometheus.HistogramVec

	sessionsOpened    prometheus.Counter
	sessionsCompleted prometheus.Counter
	recordsWritten    *prometheus.CounterVec
	autoMarkedAbsent  prometheus.Counter
	lockWait          prometheus.Histogram
	operationRetries  *prometheus.CounterVec
	exportJobs        *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		cacheLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_latency_seconds",
			Help:    "Latency for cache lookups",
			Buckets: prometheus.DefBuckets,
		}),
		cacheWrite: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_write_seconds",
			Help:    "Latency for cache set operations",
			Buckets: prometheus.DefBuckets,
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total cache hits",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total cache misses",
		}),
		dbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of attendance store operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"query"}),
		sessionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "attendance_sessions_opened_total",
			Help: "Attendance sessions opened",
		}),
		sessionsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "attendance_sessions_completed_total",
			Help: "Attendance sessions completed",
		}),
		recordsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_records_written_total",
			Help: "Attendance records written by status",
		}, []string{"status"}),
		autoMarkedAbsent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "attendance_auto_marked_absent_total",
			Help: "Students auto-marked absent on session completion",
		}),
		lockWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "attendance_session_lock_wait_seconds",
			Help:    "Time spent waiting for the per-session lock",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}),
		operationRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_operation_retries_total",
			Help: "Attendance operations retried after a transient failure",
		}, []string{"operation"}),
		exportJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_export_jobs_total",
			Help: "Export jobs by terminal status",
		}, []string{"status"}),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		m.requestDuration, m.requestTotal, m.cacheLatency, m.cacheWrite,
		m.cacheHits, m.cacheMisses, m.dbQueryDuration, m.sessionsOpened, m.sessionsCompleted, m.recordsWritten,
		m.autoMarkedAbsent, m.lockWait, m.operationRetries, m.exportJobs, goroutines,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records cache hit/miss metrics.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records store operation timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// SessionOpened counts a newly opened session.
func (m *MetricsService) SessionOpened() {
	if m == nil {
		return
	}
	m.sessionsOpened.Inc()
}

// SessionCompleted counts a completion and the absences it synthesised.
func (m *MetricsService) SessionCompleted(autoMarked int) {
	if m == nil {
		return
	}
	m.sessionsCompleted.Inc()
	m.autoMarkedAbsent.Add(float64(autoMarked))
	if autoMarked > 0 {
		m.recordsWritten.WithLabelValues(string(models.AttendanceStatusAbsent)).Add(float64(autoMarked))
	}
}

// RecordWritten counts one record write.
func (m *MetricsService) RecordWritten(status models.AttendanceStatus) {
	if m == nil {
		return
	}
	m.recordsWritten.WithLabelValues(string(status)).Inc()
}

// ObserveLockWait records how long an operation queued behind its session.
func (m *MetricsService) ObserveLockWait(d time.Duration) {
	if m == nil {
		return
	}
	m.lockWait.Observe(d.Seconds())
}

// OperationRetried counts a retry of the named operation.
func (m *MetricsService) OperationRetried(op string) {
	if m == nil {
		return
	}
	m.operationRetries.WithLabelValues(op).Inc()
}

// ExportJobFinished counts a job reaching a terminal state.
func (m *MetricsService) ExportJobFinished(status models.ExportStatus) {
	if m == nil {
		return
	}
	m.exportJobs.WithLabelValues(string(status)).Inc()
}
