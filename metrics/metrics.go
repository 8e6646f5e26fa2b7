// Package metrics serves prometheus metrics for the API server.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const Namespace = "unpublished"

// unmatchedPath is the path label of requests that did not match a route, so
// that probing random paths does not create new series.
const unmatchedPath = "unmatched"

// Middleware registers the request metrics with promRegistry and returns a
// middleware that observes the duration of every request.
//
// The registry also receives the standard process and go collectors.
func Middleware(promRegistry prometheus.Registerer) gin.HandlerFunc {
	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "http",
		Name:      "request_duration_seconds",
		Help:      "A histogram of duration, in seconds, handling HTTP requests.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
	}, []string{"method", "path", "status"})

	promRegistry.MustRegister(requestDuration)
	promRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	promRegistry.MustRegister(collectors.NewGoCollector())

	return func(c *gin.Context) {
		t := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = unmatchedPath
		}

		requestDuration.With(prometheus.Labels{
			"method": c.Request.Method,
			"path":   path,
			"status": strconv.Itoa(c.Writer.Status()),
		}).Observe(time.Since(t).Seconds())
	}
}

// NewHandler returns a gin.Engine serving the metrics of promRegistry at
// 'GET /metrics'.
func NewHandler(promRegistry *prometheus.Registry) *gin.Engine {
	engine := gin.New()
	handler := promhttp.InstrumentMetricHandler(
		promRegistry,
		promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))

	engine.GET("/metrics", gin.WrapH(handler))
	return engine
}
