package binance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"usdt-perp-symbols/internal/domain/entities"
	"usdt-perp-symbols/internal/infrastructure/config"
	"usdt-perp-symbols/internal/infrastructure/logging"
	"usdt-perp-symbols/internal/infrastructure/metrics"
)

const (
	ServiceName      = "binance"
	DefaultBaseURL   = "https://fapi.binance.com"
	ExchangeInfoPath = "/fapi/v1/exchangeInfo"
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "Mozilla/5.0"
	MaxBackoff       = 2 * time.Second
	// exchangeInfo is a few MB; anything far beyond that is not a real response
	maxBodyBytes = 64 << 20
)

// RestClient fetches futures metadata from the Binance REST API
type RestClient struct {
	baseURL     string
	path        string
	userAgent   string
	timeout     time.Duration
	maxAttempts uint
	retryDelay  time.Duration
	httpClient  *http.Client
}

// NewRestClient creates a client with the default endpoint, a 30s timeout and a single attempt
func NewRestClient() *RestClient {
	return &RestClient{
		baseURL:     DefaultBaseURL,
		path:        ExchangeInfoPath,
		userAgent:   DefaultUserAgent,
		timeout:     DefaultTimeout,
		maxAttempts: 1,
		retryDelay:  200 * time.Millisecond,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// NewRestClientWithConfig creates a client from configuration
func NewRestClientWithConfig(cfg config.BinanceConfig) *RestClient {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &RestClient{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		path:        cfg.ExchangeInfoPath,
		userAgent:   cfg.UserAgent,
		timeout:     cfg.Timeout,
		maxAttempts: uint(attempts),
		retryDelay:  cfg.RetryDelay,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// URL returns the full exchangeInfo URL
func (c *RestClient) URL() string {
	return c.baseURL + c.path
}

// FetchExchangeInfo performs the exchangeInfo request. With the default single
// attempt exactly one request goes out; errors wrap ErrNetwork or ErrProtocol.
func (c *RestClient) FetchExchangeInfo(ctx context.Context) (*entities.ExchangeInfo, error) {
	var info *entities.ExchangeInfo
	attempt := 0

	retryErr := retry.Do(
		func() error {
			attempt++
			reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			result, err := c.doExchangeInfoRequest(reqCtx, attempt)
			if err != nil {
				return err
			}
			info = result
			return nil
		},
		retry.Attempts(c.maxAttempts),
		retry.Delay(c.retryDelay),
		retry.MaxDelay(MaxBackoff),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(isRetryableError),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			// also invoked after the final attempt
			if n+1 < c.maxAttempts {
				metrics.RecordExternalAPIRetry(ServiceName, c.path, int(n+1))
			}
			logging.LogExchangeError(ctx, ServiceName, err, int(n+1), int(c.maxAttempts))
		}),
	)

	if retryErr != nil {
		if !IsFetchError(retryErr) {
			// retry.Context surfaces ctx.Err() when the caller gives up between attempts
			retryErr = fmt.Errorf("%w: %w", ErrNetwork, retryErr)
		}
		return nil, fmt.Errorf("failed to fetch exchange info after %d attempt(s): %w", attempt, retryErr)
	}

	return info, nil
}

// doExchangeInfoRequest performs a single HTTP GET
func (c *RestClient) doExchangeInfoRequest(ctx context.Context, attempt int) (*entities.ExchangeInfo, error) {
	url := c.URL()
	logging.LogExchangeRequest(ctx, ServiceName, url, attempt)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrNetwork, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	requestDuration := time.Since(requestStart)

	if err != nil {
		metrics.RecordExternalAPIError(ServiceName, c.path, "network")
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: request timed out after %v: %v", ErrNetwork, requestDuration.Round(time.Millisecond), err)
		}
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	metrics.RecordExternalAPICall(ServiceName, c.path, resp.StatusCode, requestDuration.Seconds())

	if resp.StatusCode != http.StatusOK {
		metrics.RecordExternalAPIError(ServiceName, c.path, "protocol")
		logging.LogExchangeResponse(ctx, ServiceName, resp.StatusCode, requestDuration, 0)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, fmt.Errorf("%w: %w: unexpected status code: %d", ErrProtocol, errRetryableStatus, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: unexpected status code: %d", ErrProtocol, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.RecordExternalAPIError(ServiceName, c.path, "network")
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrNetwork, err)
	}

	info, skipped, err := decodeExchangeInfo(body)
	if err != nil {
		metrics.RecordExternalAPIError(ServiceName, c.path, "protocol")
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrProtocol, err)
	}

	logging.LogExchangeResponse(ctx, ServiceName, resp.StatusCode, requestDuration, len(info.Symbols))
	if skipped > 0 {
		logging.WithContext(ctx).WithField("skipped_records", skipped).Debug("Skipped malformed symbol records")
	}

	return info, nil
}

// isRetryableError retries transport failures and 429/5xx responses only
func isRetryableError(err error) bool {
	return errors.Is(err, ErrNetwork) || errors.Is(err, errRetryableStatus)
}
