package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"usdt-perp-symbols/internal/infrastructure/logging"
)

// ResponseWriter wrapper to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.statusCode == 0 {
		rw.statusCode = http.StatusOK
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// RequestTracingMiddleware gives every request its own run ID and logs its outcome
func RequestTracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithStartTime(logging.WithRunID(r.Context()))
		w.Header().Set("X-Request-ID", logging.GetRunID(ctx))

		wrapped := &responseWriter{ResponseWriter: w}

		start := logging.GetStartTime(ctx)
		next.ServeHTTP(wrapped, r.WithContext(ctx))

		entry := logging.WithContext(ctx).WithFields(logrus.Fields{
			"http_method":           r.Method,
			"http_path":             r.URL.Path,
			"http_status":           wrapped.statusCode,
			"remote_ip":             getRemoteIP(r),
			"user_agent":            r.UserAgent(),
			"response_size":         wrapped.written,
			logging.FieldEvent:      "http_request",
			logging.FieldDurationMs: time.Since(start).Milliseconds(),
		})

		if wrapped.statusCode >= 500 {
			entry.Error("HTTP request completed")
		} else {
			entry.Info("HTTP request completed")
		}
	})
}

// getRemoteIP extracts the real client IP from request
func getRemoteIP(r *http.Request) string {
	if xForwardedFor := r.Header.Get("X-Forwarded-For"); xForwardedFor != "" {
		return xForwardedFor
	}

	if xRealIP := r.Header.Get("X-Real-IP"); xRealIP != "" {
		return xRealIP
	}

	return r.RemoteAddr
}
