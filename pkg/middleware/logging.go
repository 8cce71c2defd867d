package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"subhub/internal/logger"
	"subhub/pkg/metrics"
)

// LoggingMiddleware writes one structured access log line per request.
func LoggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Set(logger.GinContextKey, log)
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		fields := []interface{}{
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", path,
			"query", raw,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		l := log.WithContext(c.Request.Context())
		switch status := c.Writer.Status(); {
		case status >= 500:
			l.Errorw("HTTP_REQUEST_ERROR", fields...)
		case status >= 400:
			l.Warnw("HTTP_REQUEST_WARNING", fields...)
		default:
			l.Infow("HTTP_REQUEST_INFO", fields...)
		}
	}
}

// MetricsMiddleware records request counts and latency keyed by route template.
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
