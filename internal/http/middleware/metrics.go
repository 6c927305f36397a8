// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file holds the Prometheus collectors for HTTP traffic. Labels stay
// bounded: path is the registered Gin route ("unmatched" otherwise) and
// audience is one of admin, visitor or anonymous. Feed WebSocket sessions
// live for minutes, so they are kept out of the request latency histogram
// and measured on their own.
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const unmatchedRoute = "unmatched"

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status", "audience"},
	)

	// status is left out to keep the histogram small
	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds, feed sessions excluded.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "Current number of in-flight HTTP requests, open feed sessions included.",
		},
	)

	httpRespSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_response_size_bytes",
			Help: "Size of HTTP responses in bytes.",
			Buckets: []float64{
				200, 500, 1 << 10, 2 << 10, 5 << 10,
				10 << 10, 25 << 10, 50 << 10,
				100 << 10, 250 << 10, 500 << 10,
				1 << 20,
			},
		},
		[]string{"method", "path"},
	)

	feedSessions = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "http_feed_session_seconds",
			Help:    "Lifetime of change-feed WebSocket sessions.",
			Buckets: []float64{1, 10, 30, 60, 300, 900, 1800, 3600, 4 * 3600},
		},
	)

	// rateLimited counts requests rejected with 429, by route.
	rateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Requests rejected by the rate limiter.",
		},
		[]string{"path"},
	)

	rateBucketsEvicted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "http_rate_buckets_evicted_total",
			Help: "Idle rate-limit buckets evicted.",
		},
	)

	// idemReplays counts writes recognised as retries of a stored write.
	idemReplays = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_idempotent_replays_total",
			Help: "Requests whose Idempotency-Key matched a completed write.",
		},
		[]string{"scope"},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, httpRespSize,
		feedSessions, rateLimited, rateBucketsEvicted, idemReplays)
}

// routeLabel is the registered route, or "unmatched" so stray URLs cannot
// grow the label set.
func routeLabel(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return unmatchedRoute
}

func audienceLabel(c *gin.Context) string {
	switch {
	case IsAdmin(c):
		return "admin"
	case VisitorFrom(c) != "":
		return "visitor"
	default:
		return "anonymous"
	}
}

// Metrics returns a Gin middleware that records the collectors above.
// Mount promhttp.Handler() on /metrics alongside it.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		dur := time.Since(start).Seconds()
		path := routeLabel(c)
		method := c.Request.Method
		status := c.Writer.Status()

		httpReqs.WithLabelValues(method, path, strconv.Itoa(status), audienceLabel(c)).Inc()
		if status == http.StatusSwitchingProtocols {
			feedSessions.Observe(dur)
			return
		}
		httpLat.WithLabelValues(method, path).Observe(dur)
		if size := c.Writer.Size(); size >= 0 {
			httpRespSize.WithLabelValues(method, path).Observe(float64(size))
		}
	}
}
