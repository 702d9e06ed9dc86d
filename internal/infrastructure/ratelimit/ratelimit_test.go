package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usdt-perp-symbols/internal/infrastructure/config"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestTokenBucket_AllowAndRefill(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	bucket := newTokenBucketWithClock(2, 1, clock.Now)

	assert.True(t, bucket.Allow())
	assert.True(t, bucket.Allow())
	assert.False(t, bucket.Allow())
	assert.Equal(t, 0, bucket.Remaining())

	clock.Advance(500 * time.Millisecond)
	assert.False(t, bucket.Allow(), "half a token is not enough")

	clock.Advance(500 * time.Millisecond)
	assert.True(t, bucket.Allow())

	clock.Advance(time.Hour)
	assert.Equal(t, 2, bucket.Remaining(), "refill is capped at capacity")
}

func TestClientLimiter_SeparateBuckets(t *testing.T) {
	limiter := NewClientLimiter(1, 0.001, time.Hour)

	allowed, _ := limiter.Allow("10.0.0.1")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow("10.0.0.1")
	assert.False(t, allowed)

	allowed, remaining := limiter.Allow("10.0.0.2")
	assert.True(t, allowed)
	assert.Equal(t, 0, remaining)
	assert.Equal(t, 2, limiter.Clients())
}

func TestClientLimiter_SweepsIdleBuckets(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	limiter := NewClientLimiter(5, 1, time.Minute)
	limiter.now = clock.Now
	limiter.lastSweep = clock.Now()

	limiter.Allow("old")
	clock.Advance(2 * time.Minute)
	limiter.Allow("new")

	assert.Equal(t, 1, limiter.Clients())
}

func TestMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := NewMiddleware(config.RateLimitConfig{Enabled: true, Capacity: 1, RefillRate: 0.001}).Handler(next)

	request := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, request("/api/v1/symbols").Code)

	limited := request("/api/v1/symbols")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))
	assert.Contains(t, limited.Body.String(), "RATE_LIMIT_EXCEEDED")

	assert.Equal(t, http.StatusOK, request("/health").Code, "health is never limited")
}

func TestMiddleware_Disabled(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := NewMiddleware(config.RateLimitConfig{Enabled: false, Capacity: 1, RefillRate: 0.001}).Handler(next)

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/symbols", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestClientID(t *testing.T) {
	tests := []struct {
		name         string
		headers      map[string]string
		remote       string
		trustHeaders bool
		expected     string
	}{
		{"forwarded list trusted", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.1:80", true, "203.0.113.7"},
		{"real ip trusted", map[string]string{"X-Real-IP": "203.0.113.8"}, "10.0.0.1:80", true, "203.0.113.8"},
		{"forwarded ignored by default", map[string]string{"X-Forwarded-For": "203.0.113.7"}, "10.0.0.1:80", false, "10.0.0.1"},
		{"real ip ignored by default", map[string]string{"X-Real-IP": "203.0.113.8"}, "10.0.0.1:80", false, "10.0.0.1"},
		{"ipv4 peer", nil, "192.0.2.1:5555", false, "192.0.2.1"},
		{"ipv6 peer", nil, "[2001:db8::1]:5555", false, "2001:db8::1"},
		{"no port", nil, "192.0.2.1", false, "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.expected, clientID(req, tt.trustHeaders))
		})
	}
}

func TestMiddleware_RotatingForwardedHeaderSharesBucket(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := NewMiddleware(config.RateLimitConfig{Enabled: true, Capacity: 1, RefillRate: 0.001}).Handler(next)

	codes := make([]int, 0, 3)
	for _, forwarded := range []string{"198.51.100.1", "198.51.100.2", "198.51.100.3"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/symbols", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}

func TestMiddleware_TrustedProxyHeaders(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := NewMiddleware(config.RateLimitConfig{
		Enabled:           true,
		Capacity:          1,
		RefillRate:        0.001,
		TrustProxyHeaders: true,
	}).Handler(next)

	for _, forwarded := range []string{"198.51.100.1", "198.51.100.2"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/symbols", nil)
		req.RemoteAddr = "10.0.0.1:80"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, forwarded)
	}
}
