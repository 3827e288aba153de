package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// MetricsMiddleware tracks request timing and counts per route
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// don't let the metrics endpoints pollute their own numbers
		if r.URL.Path == "/health" || r.URL.Path == "/api/v1/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		GetMetrics().Record(r.Method, r.URL.Path, wrapped.statusCode, duration)

		if duration > 1*time.Second {
			zap.S().Warnw("Slow request detected",
				"method", r.Method,
				"path", r.URL.Path,
				"duration", duration,
				"status", wrapped.statusCode,
			)
		}
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
