package snapshot

import (
	"context"
	_ "embed"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"usdt-perp-symbols/internal/infrastructure/metrics"
)

const BackendEmbedded = "embedded"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// cached_symbols.json is a manually refreshed copy of the USDT-margined
// perpetual contracts listed on fapi.binance.com (base assets only).
//
//go:embed cached_symbols.json
var cachedSymbolsJSON []byte

var cachedSymbols = mustDecodeSymbols(cachedSymbolsJSON)

func mustDecodeSymbols(data []byte) []string {
	var symbols []string
	if err := json.Unmarshal(data, &symbols); err != nil {
		panic(fmt.Sprintf("snapshot: invalid embedded symbol list: %v", err))
	}
	return symbols
}

// CachedSymbols returns a copy of the embedded snapshot in stored order
func CachedSymbols() []string {
	out := make([]string, len(cachedSymbols))
	copy(out, cachedSymbols)
	return out
}

// EmbeddedStore serves the snapshot compiled into the binary. It is read-only.
type EmbeddedStore struct{}

// NewEmbeddedStore creates the read-only embedded store
func NewEmbeddedStore() *EmbeddedStore {
	return &EmbeddedStore{}
}

// Load returns a copy of the embedded snapshot
func (s *EmbeddedStore) Load(ctx context.Context) ([]string, error) {
	metrics.RecordSnapshotOperation(BackendEmbedded, "load", "hit")
	return CachedSymbols(), nil
}

// Save is a no-op; the embedded list only changes with a new build
func (s *EmbeddedStore) Save(ctx context.Context, symbols []string) error {
	return nil
}

// Backend returns the backend name
func (s *EmbeddedStore) Backend() string {
	return BackendEmbedded
}

// Close is a no-op
func (s *EmbeddedStore) Close() error {
	return nil
}
