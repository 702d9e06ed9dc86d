package binance

import "errors"

var (
	// ErrNetwork covers transport failures: unreachable host, refused connection, timeout
	ErrNetwork = errors.New("binance API unreachable")
	// ErrProtocol covers non-200 responses and bodies that are not a JSON object
	ErrProtocol = errors.New("binance API protocol error")

	// errRetryableStatus marks 429 and 5xx responses
	errRetryableStatus = errors.New("retryable status")
)

// IsFetchError reports whether err is one of the fetch failures a caller may recover from
func IsFetchError(err error) bool {
	return errors.Is(err, ErrNetwork) || errors.Is(err, ErrProtocol)
}
