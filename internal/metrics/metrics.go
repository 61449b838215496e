package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects the Prometheus series this service exposes on /metrics.
// Each field is grounded on a distinct subsystem: HTTP request shape, the
// Auto-Builder (C4), and the Order Engine's checkout outcomes (C5).
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "configurator_http_requests_total",
		Help: "Total HTTP requests, labeled by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "configurator_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	CatalogFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "configurator_catalog_fetches_total",
		Help: "Catalog Accessor reads, labeled by category slug.",
	}, []string{"category"})

	AutoBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "configurator_autobuild_duration_seconds",
		Help:    "Time spent generating a build in the Auto-Builder (buildFromPurpose or autoComplete).",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})

	CheckoutOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "configurator_checkout_outcomes_total",
		Help: "Checkout attempts, labeled by outcome: ok, insufficient_stock, or error.",
	}, []string{"outcome"})
)

// HTTPMiddleware records request count and latency for every route, the
// same shape the teacher's request logger already walks for each request.
func HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, statusBucket(c.Writer.Status())).Inc()
	}
}

func statusBucket(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// ObserveAutoBuild records how long the Auto-Builder took to generate a build.
func ObserveAutoBuild(d time.Duration) {
	AutoBuildDuration.Observe(d.Seconds())
}

// ObserveCatalogFetch records a Catalog Accessor read for the given category.
func ObserveCatalogFetch(category string) {
	CatalogFetchesTotal.WithLabelValues(category).Inc()
}

// ObserveCheckout records a checkout outcome: "ok", "insufficient_stock", or
// "error".
func ObserveCheckout(outcome string) {
	CheckoutOutcomesTotal.WithLabelValues(outcome).Inc()
}
