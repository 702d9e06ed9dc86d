package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the USDT perpetual symbol tools
var (
	// External API Metrics
	ExternalAPIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "perp_symbols_external_api_requests_total",
			Help: "Total number of external API requests",
		},
		[]string{"service", "endpoint", "status_code"},
	)

	ExternalAPIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "perp_symbols_external_api_request_duration_seconds",
			Help:    "External API request duration in seconds",
			Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
		},
		[]string{"service", "endpoint"},
	)

	ExternalAPIErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "perp_symbols_external_api_errors_total",
			Help: "Total number of failed external API requests by error kind",
		},
		[]string{"service", "endpoint", "kind"}, // kind: network/protocol
	)

	ExternalAPIRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "perp_symbols_external_api_retries_total",
			Help: "Total number of external API retry attempts",
		},
		[]string{"service", "endpoint", "attempt"},
	)

	// Business Metrics
	SymbolsEmitted = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "perp_symbols_emitted",
			Help: "Number of symbols emitted by the last run",
		},
		[]string{"front_end", "source"}, // source: live/snapshot
	)

	FallbackActivationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "perp_symbols_fallback_activations_total",
			Help: "Total number of times the cached snapshot replaced live data",
		},
		[]string{"front_end", "backend"},
	)

	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "perp_symbols_runs_total",
			Help: "Total number of fetch-sort-output runs",
		},
		[]string{"front_end", "result"}, // result: success/error
	)

	SnapshotOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "perp_symbols_snapshot_operations_total",
			Help: "Total number of snapshot store operations",
		},
		[]string{"backend", "operation", "result"}, // operation: load/save, result: hit/miss/success/error
	)

	// HTTP Metrics (symbols-api)
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "perp_symbols_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "perp_symbols_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	RateLimitRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "perp_symbols_rate_limit_requests_total",
			Help: "API requests checked by the per-client rate limiter",
		},
		[]string{"result"}, // allowed/limited
	)
)

// RecordExternalAPICall records external API call metrics
func RecordExternalAPICall(service, endpoint string, statusCode int, durationSeconds float64) {
	ExternalAPIRequestsTotal.WithLabelValues(service, endpoint, strconv.Itoa(statusCode)).Inc()
	ExternalAPIRequestDuration.WithLabelValues(service, endpoint).Observe(durationSeconds)
}

// RecordExternalAPIError records a failed external API call
func RecordExternalAPIError(service, endpoint, kind string) {
	ExternalAPIErrorsTotal.WithLabelValues(service, endpoint, kind).Inc()
}

// RecordExternalAPIRetry records external API retry attempts
func RecordExternalAPIRetry(service, endpoint string, attempt int) {
	ExternalAPIRetries.WithLabelValues(service, endpoint, strconv.Itoa(attempt)).Inc()
}

// RecordSymbolsEmitted sets the size of the list a front end produced
func RecordSymbolsEmitted(frontEnd, source string, count int) {
	SymbolsEmitted.WithLabelValues(frontEnd, source).Set(float64(count))
}

// RecordFallbackActivation records a switch to the cached snapshot
func RecordFallbackActivation(frontEnd, backend string) {
	FallbackActivationsTotal.WithLabelValues(frontEnd, backend).Inc()
}

// RecordRun records the outcome of a run
func RecordRun(frontEnd string, success bool) {
	result := "error"
	if success {
		result = "success"
	}
	RunsTotal.WithLabelValues(frontEnd, result).Inc()
}

// RecordSnapshotOperation records snapshot store operations
func RecordSnapshotOperation(backend, operation, result string) {
	SnapshotOperationsTotal.WithLabelValues(backend, operation, result).Inc()
}

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, path string, statusCode int, durationSeconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(durationSeconds)
}

// RecordRateLimitResult records a rate limiter decision
func RecordRateLimitResult(allowed bool) {
	result := "limited"
	if allowed {
		result = "allowed"
	}
	RateLimitRequestsTotal.WithLabelValues(result).Inc()
}
