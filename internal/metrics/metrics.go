// File: internal/metrics/metrics.go
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "krishi_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "krishi_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Upstream (ML server, LLM, SMS gateway, weather) Metrics
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "krishi_upstream_request_duration_seconds",
			Help:    "Duration of calls to external services in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"upstream", "outcome"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "krishi_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Domain Metrics
	DiseaseAutoReportFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "krishi_disease_autoreport_failures_total",
			Help: "Disease detections whose report could not be read or persisted",
		},
	)

	DiseaseReportsSaved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "krishi_disease_reports_saved_total",
			Help: "Disease reports persisted from detections",
		},
	)

	OTPSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "krishi_otp_sent_total",
			Help: "OTP codes issued, by delivery mode",
		},
		[]string{"mode"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "krishi_cache_lookups_total",
			Help: "Cache lookups by cache and result",
		},
		[]string{"cache", "result"},
	)

	RetentionDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "krishi_retention_rows_total",
			Help: "Rows removed or expired by the retention job",
		},
		[]string{"table"},
	)
)

// Middleware records request counts and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
