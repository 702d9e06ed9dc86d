package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"usdt-perp-symbols/internal/infrastructure/config"
	"usdt-perp-symbols/internal/infrastructure/logging"
	"usdt-perp-symbols/internal/infrastructure/metrics"
)

const idleTimeout = 30 * time.Minute

// Middleware throttles API clients so that bursts of requests do not turn
// into bursts of exchangeInfo calls
type Middleware struct {
	limiter      *ClientLimiter
	skipPaths    map[string]bool
	enabled      bool
	trustHeaders bool
}

// NewMiddleware creates the middleware from configuration
func NewMiddleware(cfg config.RateLimitConfig) *Middleware {
	skipPaths := map[string]bool{
		"/health":  true,
		"/metrics": true,
	}

	return &Middleware{
		limiter:      NewClientLimiter(cfg.Capacity, cfg.RefillRate, idleTimeout),
		skipPaths:    skipPaths,
		enabled:      cfg.Enabled,
		trustHeaders: cfg.TrustProxyHeaders,
	}
}

// Handler returns the HTTP middleware handler
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled || m.skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		clientID := clientID(r, m.trustHeaders)
		allowed, remaining := m.limiter.Allow(clientID)
		metrics.RecordRateLimitResult(allowed)

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !allowed {
			logging.WithContext(r.Context()).WithFields(logrus.Fields{
				"client_id": clientID,
				"path":      r.URL.Path,
			}).Warn("Rate limit exceeded")

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"RATE_LIMIT_EXCEEDED","message":"Rate limit exceeded. Please slow down your requests."}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientID returns the peer IP without port. Forwarding headers are only
// honoured when trustHeaders is set, otherwise any client could pick its own bucket.
func clientID(r *http.Request, trustHeaders bool) string {
	if trustHeaders {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			first, _, _ := strings.Cut(forwarded, ",")
			return strings.TrimSpace(first)
		}

		if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
			return realIP
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
