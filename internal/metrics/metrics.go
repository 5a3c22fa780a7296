package metrics

import (
	"database/sql"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "lynx_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	reportGenerateTotal   *prometheus.CounterVec
	reportGenerateLatency *prometheus.HistogramVec
	reportRenderTotal     *prometheus.CounterVec
	reportRenderLatency   *prometheus.HistogramVec
	reportCacheLookups    *prometheus.CounterVec

	exportJobsTotal   *prometheus.CounterVec
	exportJobLatency  *prometheus.HistogramVec
	recordWritesTotal *prometheus.CounterVec

	rateLimitedTotal prometheus.Counter
	rateLimitClients prometheus.Gauge
	suspiciousTotal  prometheus.Counter
)

// Init registers the metrics with the default registry. When db is non-nil
// connection pool gauges are registered too.
func Init(db *sql.DB) {
	registerOnce.Do(func() {
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by method and status class",
			},
			[]string{"method", "status"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		)

		reportGenerateTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_generate_total",
				Help: "Total report builds by report and result",
			},
			[]string{"report", "result"},
		)
		reportGenerateLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_generate_latency_seconds",
				Help:    "Report build latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"report", "result"},
		)
		reportRenderTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_render_total",
				Help: "Total report renders by format and result",
			},
			[]string{"format", "result"},
		)
		reportRenderLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_render_latency_seconds",
				Help:    "Report render latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)
		reportCacheLookups = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_cache_lookups_total",
				Help: "Report cache lookups by outcome",
			},
			[]string{"outcome"},
		)

		exportJobsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_jobs_total",
				Help: "Export jobs by stage and result",
			},
			[]string{"stage", "result"},
		)
		exportJobLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_job_latency_seconds",
				Help:    "Export job processing latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		recordWritesTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "record_writes_total",
				Help: "Record writes by record type and operation",
			},
			[]string{"record", "operation"},
		)

		rateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "rate_limited_requests_total",
			Help: "Requests rejected by the rate limiter",
		})
		rateLimitClients = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "rate_limit_tracked_clients",
			Help: "Client addresses currently tracked by the rate limiter",
		})
		suspiciousTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "suspicious_requests_total",
			Help: "Requests matching a known attack pattern",
		})

		prometheus.MustRegister(
			httpRequests,
			httpLatency,
			reportGenerateTotal,
			reportGenerateLatency,
			reportRenderTotal,
			reportRenderLatency,
			reportCacheLookups,
			exportJobsTotal,
			exportJobLatency,
			recordWritesTotal,
			rateLimitedTotal,
			rateLimitClients,
			suspiciousTotal,
		)

		if db != nil {
			registerDBMetrics(db)
		}
	})
}

func registerDBMetrics(db *sql.DB) {
	prometheus.MustRegister(
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: metricPrefix + "db_open_connections",
				Help: "Open database connections",
			},
			func() float64 { return float64(db.Stats().OpenConnections) },
		),
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: metricPrefix + "db_in_use_connections",
				Help: "Database connections currently in use",
			},
			func() float64 { return float64(db.Stats().InUse) },
		),
	)
}

func result(err error) string {
	if err != nil {
		return resultError
	}
	return resultSuccess
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// ObserveHTTP records one served request. Status is reported by class (2xx, 4xx...).
func ObserveHTTP(method string, status int, duration time.Duration) {
	if httpRequests != nil {
		httpRequests.WithLabelValues(orUnknown(method), statusClass(status)).Inc()
	}
	if httpLatency != nil {
		httpLatency.WithLabelValues(orUnknown(method)).Observe(duration.Seconds())
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// ObserveReportGenerate records report build latency and result.
func ObserveReportGenerate(report string, err error, duration time.Duration) {
	res := result(err)
	if reportGenerateTotal != nil {
		reportGenerateTotal.WithLabelValues(orUnknown(report), res).Inc()
	}
	if reportGenerateLatency != nil {
		reportGenerateLatency.WithLabelValues(orUnknown(report), res).Observe(duration.Seconds())
	}
}

// ObserveReportRender records render latency and result per output format.
func ObserveReportRender(format string, err error, duration time.Duration) {
	res := result(err)
	if reportRenderTotal != nil {
		reportRenderTotal.WithLabelValues(orUnknown(format), res).Inc()
	}
	if reportRenderLatency != nil {
		reportRenderLatency.WithLabelValues(orUnknown(format), res).Observe(duration.Seconds())
	}
}

// IncCacheLookup counts a report cache hit or miss.
func IncCacheLookup(hit bool) {
	if reportCacheLookups == nil {
		return
	}
	if hit {
		reportCacheLookups.WithLabelValues("hit").Inc()
	} else {
		reportCacheLookups.WithLabelValues("miss").Inc()
	}
}

// IncExportJob counts an export job event at stage (published, consumed).
func IncExportJob(stage string, err error) {
	if exportJobsTotal != nil {
		exportJobsTotal.WithLabelValues(orUnknown(stage), result(err)).Inc()
	}
}

// ObserveExportJob records how long the worker spent on one job.
func ObserveExportJob(err error, duration time.Duration) {
	if exportJobLatency != nil {
		exportJobLatency.WithLabelValues(result(err)).Observe(duration.Seconds())
	}
}

// IncRecordWrite counts a successful write of one record type.
func IncRecordWrite(record, operation string) {
	if recordWritesTotal != nil {
		recordWritesTotal.WithLabelValues(orUnknown(record), orUnknown(operation)).Inc()
	}
}

// IncRateLimited counts a request rejected by the rate limiter.
func IncRateLimited() {
	if rateLimitedTotal != nil {
		rateLimitedTotal.Inc()
	}
}

// SetRateLimitClients reports how many clients the limiter tracks.
func SetRateLimitClients(n int) {
	if rateLimitClients != nil {
		rateLimitClients.Set(float64(n))
	}
}

// IncSuspiciousRequest counts a request flagged by the detector.
func IncSuspiciousRequest() {
	if suspiciousTotal != nil {
		suspiciousTotal.Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError

	StagePublished = "published"
	StageConsumed  = "consumed"
)
