package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/iho/facturier/internal/infrastructure/metrics"
)

// MetricsMiddleware records request count and duration per route.
type MetricsMiddleware struct {
	metrics *metrics.Metrics
}

// NewMetricsMiddleware creates a new MetricsMiddleware.
func NewMetricsMiddleware(m *metrics.Metrics) *MetricsMiddleware {
	return &MetricsMiddleware{metrics: m}
}

// Wrap wraps an http.Handler with metrics recording.
func (m *MetricsMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &metricsRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		path := normalizePath(r.URL.Path)
		m.metrics.HTTPRequests.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		m.metrics.HTTPDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

type metricsRecorder struct {
	http.ResponseWriter

	statusCode int
}

func (r *metricsRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// normalizePath collapses key segments so label cardinality stays bounded.
// /api/v1/documents/FAC/42/export -> /api/v1/documents/:series/:number/export
func normalizePath(path string) string {
	for _, prefix := range []string{"/api/v1/documents/", "/api/v1/series/"} {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		rest := strings.Split(strings.TrimPrefix(path, prefix), "/")
		switch prefix {
		case "/api/v1/documents/":
			if len(rest) >= 2 {
				normalized := prefix + ":series/:number"
				if len(rest) > 2 {
					normalized += "/" + strings.Join(rest[2:], "/")
				}
				return normalized
			}
		case "/api/v1/series/":
			if len(rest) >= 1 && rest[0] != "" {
				normalized := prefix + ":series"
				if len(rest) > 1 {
					normalized += "/" + strings.Join(rest[1:], "/")
				}
				return normalized
			}
		}
	}
	return path
}
