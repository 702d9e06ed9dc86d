package logging

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Standard field names
const (
	FieldRunID      = "run_id"
	FieldEvent      = "event"
	FieldService    = "service"
	FieldError      = "error"
	FieldURL        = "url"
	FieldStatusCode = "status_code"
	FieldDurationMs = "duration_ms"
	FieldSource     = "source"
	FieldCount      = "symbols_count"
	FieldPath       = "path"
	FieldBackend    = "backend"
)

// WithContext returns an entry carrying the run ID stored in ctx
func WithContext(ctx context.Context) *logrus.Entry {
	entry := log.WithField(FieldRunID, GetRunID(ctx))
	if startTime := GetStartTime(ctx); !startTime.IsZero() {
		entry = entry.WithField("elapsed_ms", time.Since(startTime).Milliseconds())
	}
	return entry
}

// LogExchangeRequest logs an outbound exchange API request
func LogExchangeRequest(ctx context.Context, service, url string, attempt int) {
	WithContext(ctx).WithFields(logrus.Fields{
		FieldURL:     url,
		FieldService: service,
		FieldEvent:   "exchange_request",
		"attempt":    attempt,
	}).Debug("Requesting exchange metadata")
}

// LogExchangeResponse logs an exchange API response
func LogExchangeResponse(ctx context.Context, service string, statusCode int, duration time.Duration, recordsCount int) {
	entry := WithContext(ctx).WithFields(logrus.Fields{
		FieldService:       service,
		FieldStatusCode:    statusCode,
		FieldDurationMs:    duration.Milliseconds(),
		"records_received": recordsCount,
		FieldEvent:         "exchange_response",
	})

	if statusCode >= 500 {
		entry.Error("Exchange API response received")
	} else if statusCode >= 400 {
		entry.Warn("Exchange API response received")
	} else {
		entry.Info("Exchange API response received")
	}
}

// LogExchangeError logs a failed exchange API attempt
func LogExchangeError(ctx context.Context, service string, err error, attempt, maxAttempts int) {
	WithContext(ctx).WithFields(logrus.Fields{
		FieldService:   service,
		FieldError:     err.Error(),
		"attempt":      attempt,
		"max_attempts": maxAttempts,
		FieldEvent:     "exchange_error",
	}).Warn("Exchange API request failed")
}

// LogFallback logs the switch from live data to the cached snapshot
func LogFallback(ctx context.Context, err error, backend string) {
	WithContext(ctx).WithFields(logrus.Fields{
		FieldError:   err.Error(),
		FieldBackend: backend,
		FieldEvent:   "snapshot_fallback",
	}).Warn("Could not reach exchange API, using cached snapshot")
}

// LogSymbolsWritten logs a completed file export
func LogSymbolsWritten(ctx context.Context, path, source string, count int) {
	WithContext(ctx).WithFields(logrus.Fields{
		FieldPath:   path,
		FieldSource: source,
		FieldCount:  count,
		FieldEvent:  "symbols_written",
	}).Info("Symbols written to file")
}

// LogServiceEvent logs general service events
func LogServiceEvent(ctx context.Context, event string, message string, fields map[string]interface{}) {
	logFields := logrus.Fields{
		FieldEvent: event,
	}

	for k, v := range fields {
		logFields[k] = v
	}

	WithContext(ctx).WithFields(logFields).Info(message)
}
