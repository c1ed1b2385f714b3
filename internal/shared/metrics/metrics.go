package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	IngestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_total",
			Help: "Document ingestions by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	IngestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingest_duration_seconds",
			Help:    "End-to-end ingestion duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"kind"},
	)

	StoredBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingest_stored_bytes",
			Help:    "Size of the persisted artifact in bytes",
			Buckets: prometheus.ExponentialBuckets(16<<10, 4, 8),
		},
		[]string{"kind"},
	)

	ToolRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "external_tool_runs_total",
			Help: "External tool invocations by outcome",
		},
		[]string{"tool", "outcome"},
	)

	ToolDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "external_tool_duration_seconds",
			Help:    "External tool wall time in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 15, 30, 60, 120},
		},
		[]string{"tool"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		IngestTotal,
		IngestDuration,
		StoredBytes,
		ToolRunsTotal,
		ToolDuration,
	)
}

// ObserveRequest records one finished HTTP request.
func ObserveRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveIngest records one ingestion attempt.
func ObserveIngest(kind, outcome string, d time.Duration) {
	IngestTotal.WithLabelValues(kind, outcome).Inc()
	IngestDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// ObserveStoredBytes records the size of a persisted artifact.
func ObserveStoredBytes(kind string, n int) {
	StoredBytes.WithLabelValues(kind).Observe(float64(n))
}

// ObserveTool records one external tool invocation.
func ObserveTool(tool, outcome string, d time.Duration) {
	ToolRunsTotal.WithLabelValues(tool, outcome).Inc()
	ToolDuration.WithLabelValues(tool).Observe(d.Seconds())
}

// Handler exposes the default registry in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
