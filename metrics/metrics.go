package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricsRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "toyserver_http_requests_total",
		Help: "Number of HTTP requests served, by route, method and status",
	}, []string{"route", "method", "status"})

	metricsRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "toyserver_http_request_duration_seconds",
		Help:    "HTTP request latency, by route and method",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
)

// unmatchedRoute labels requests that hit no route, keeping label cardinality bounded.
const unmatchedRoute = "unmatched"

// Middleware records request count and latency, labelled with the route pattern
// (e.g. /all-toys/:id) rather than the raw path.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		method := c.Request.Method
		metricsRequests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		metricsRequestDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
