package middleware

import (
	"strconv"
	"time"

	"github.com/farmacia/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type httpMetrics struct {
	requestTotal    *telemetry.Counter
	requestDuration *telemetry.Histogram
	activeRequests  metric.Int64UpDownCounter
}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	requestTotal, err := telemetry.NewCounter(meter,
		"http_server_request_total",
		"Total number of HTTP requests",
		"{request}",
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_duration_seconds",
		Description: "HTTP request latency distribution in seconds",
		Unit:        "s",
		Boundaries:  telemetry.HTTPDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"http_server_active_requests",
		metric.WithDescription("Number of currently active HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &httpMetrics{
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		activeRequests:  activeRequests,
	}, nil
}

// HTTPMetrics counts requests by method, route and status class and records
// their latency. A nil meter disables collection.
func HTTPMetrics(meter metric.Meter) gin.HandlerFunc {
	if meter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	m, err := newHTTPMetrics(meter)
	if err != nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		route := getRoutePattern(c)
		method := attribute.String("method", c.Request.Method)

		m.activeRequests.Add(ctx, 1, metric.WithAttributes(method))
		defer m.activeRequests.Add(ctx, -1, metric.WithAttributes(method))

		c.Next()

		status := c.Writer.Status()
		m.requestTotal.Inc(ctx,
			method,
			attribute.String("route", route),
			attribute.String("status_code", strconv.Itoa(status)),
			attribute.String("status_group", HTTPMetricsStatusGroup(status)),
		)
		m.requestDuration.RecordDuration(ctx, time.Since(start),
			method,
			attribute.String("route", route),
		)
	}
}

// getRoutePattern prefers the registered route over the raw path to keep
// label cardinality bounded.
func getRoutePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}

// HTTPMetricsStatusGroup returns the status class label (2xx, 4xx, ...)
func HTTPMetricsStatusGroup(statusCode int) string {
	switch {
	case statusCode >= 500:
		return "5xx"
	case statusCode >= 400:
		return "4xx"
	case statusCode >= 300:
		return "3xx"
	case statusCode >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
