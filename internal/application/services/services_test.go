package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"usdt-perp-symbols/internal/domain/entities"
	"usdt-perp-symbols/internal/infrastructure/config"
	"usdt-perp-symbols/internal/infrastructure/exchange/binance"
	"usdt-perp-symbols/internal/infrastructure/output"
	"usdt-perp-symbols/internal/infrastructure/repositories/snapshot"
)

// MockSource is a mock of interfaces.ExchangeInfoSource
type MockSource struct {
	mock.Mock
}

func (m *MockSource) FetchExchangeInfo(ctx context.Context) (*entities.ExchangeInfo, error) {
	args := m.Called(ctx)
	info, _ := args.Get(0).(*entities.ExchangeInfo)
	return info, args.Error(1)
}

// memoryStore is an in-memory snapshot store that records saves
type memoryStore struct {
	symbols []string
	saved   [][]string
	loadErr error
	saveErr error
}

func (s *memoryStore) Load(ctx context.Context) ([]string, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return append([]string(nil), s.symbols...), nil
}

func (s *memoryStore) Save(ctx context.Context, symbols []string) error {
	s.saved = append(s.saved, symbols)
	return s.saveErr
}

func (s *memoryStore) Backend() string { return "memory" }

func (s *memoryStore) Close() error { return nil }

func record(symbol, contractType, quote string) entities.SymbolRecord {
	return entities.SymbolRecord{Symbol: symbol, ContractType: contractType, QuoteAsset: quote}
}

func sampleInfo() *entities.ExchangeInfo {
	return &entities.ExchangeInfo{Symbols: []entities.SymbolRecord{
		record("ETHUSDT", "PERPETUAL", "USDT"),
		record("1000PEPEUSDT", "PERPETUAL", "USDT"),
		record("BTCUSDT_250926", "CURRENT_QUARTER", "USDT"),
		record("BTCUSD", "PERPETUAL", "USD"),
		record("BTCUSDT", "PERPETUAL", "USDT"),
		record("ETHUSDT", "PERPETUAL", "USDT"),
	}}
}

func TestSymbolService_GetSymbols(t *testing.T) {
	tests := []struct {
		name     string
		opts     []Option
		expected []string
	}{
		{
			name:     "keeps duplicates by default",
			expected: []string{"BTCUSDT", "ETHUSDT", "ETHUSDT", "1000PEPEUSDT"},
		},
		{
			name:     "deduplicates when asked",
			opts:     []Option{WithDeduplication()},
			expected: []string{"BTCUSDT", "ETHUSDT", "1000PEPEUSDT"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &MockSource{}
			source.On("FetchExchangeInfo", mock.Anything).Return(sampleInfo(), nil).Once()

			symbols, err := NewSymbolService(source, tt.opts...).GetSymbols(context.Background())

			require.NoError(t, err)
			assert.Equal(t, tt.expected, symbols)
			source.AssertExpectations(t)
		})
	}
}

func TestSymbolService_PropagatesFetchError(t *testing.T) {
	source := &MockSource{}
	source.On("FetchExchangeInfo", mock.Anything).
		Return(nil, fmt.Errorf("%w: connection refused", binance.ErrNetwork))

	symbols, err := NewSymbolService(source).GetSymbols(context.Background())

	assert.Nil(t, symbols)
	assert.ErrorIs(t, err, binance.ErrNetwork)
}

func TestFallbackResolver_LiveSavesSnapshot(t *testing.T) {
	source := &MockSource{}
	source.On("FetchExchangeInfo", mock.Anything).Return(sampleInfo(), nil)
	store := &memoryStore{}

	resolver := NewFallbackResolver(NewSymbolService(source, WithDeduplication()), store, FrontEndSavePairs)
	symbols, src, err := resolver.Resolve(context.Background())

	require.NoError(t, err)
	assert.Equal(t, SourceLive, src)
	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT", "1000PEPEUSDT"}, symbols)
	require.Len(t, store.saved, 1)
	assert.Equal(t, symbols, store.saved[0])
}

func TestFallbackResolver_SaveFailureIsNotFatal(t *testing.T) {
	source := &MockSource{}
	source.On("FetchExchangeInfo", mock.Anything).Return(sampleInfo(), nil)
	store := &memoryStore{saveErr: errors.New("redis down")}

	_, src, err := NewFallbackResolver(NewSymbolService(source), store, FrontEndSavePairs).
		Resolve(context.Background())

	require.NoError(t, err)
	assert.Equal(t, SourceLive, src)
}

func TestFallbackResolver_UsesSortedSnapshot(t *testing.T) {
	fetchErrors := []error{
		fmt.Errorf("%w: timeout", binance.ErrNetwork),
		fmt.Errorf("%w: unexpected status 503", binance.ErrProtocol),
	}

	for _, fetchErr := range fetchErrors {
		t.Run(fetchErr.Error(), func(t *testing.T) {
			source := &MockSource{}
			source.On("FetchExchangeInfo", mock.Anything).Return(nil, fetchErr)
			store := &memoryStore{symbols: []string{"ZEC", "1INCH", "ACE", "1000PEPE", "BTC"}}

			symbols, src, err := NewFallbackResolver(NewSymbolService(source), store, FrontEndSavePairs).
				Resolve(context.Background())

			require.NoError(t, err)
			assert.Equal(t, SourceSnapshot, src)
			assert.Equal(t, entities.SortSymbols(store.symbols), symbols)
			assert.Equal(t, []string{"ACE", "BTC", "ZEC", "1000PEPE", "1INCH"}, symbols)
			assert.Empty(t, store.saved)
		})
	}
}

func TestFallbackResolver_OtherErrorsAreNotAbsorbed(t *testing.T) {
	source := &MockSource{}
	source.On("FetchExchangeInfo", mock.Anything).Return(nil, errors.New("unexpected"))
	store := &memoryStore{symbols: []string{"BTC"}}

	_, _, err := NewFallbackResolver(NewSymbolService(source), store, FrontEndSavePairs).
		Resolve(context.Background())

	assert.EqualError(t, err, "unexpected")
}

func TestFallbackResolver_SnapshotLoadFailure(t *testing.T) {
	source := &MockSource{}
	source.On("FetchExchangeInfo", mock.Anything).Return(nil, binance.ErrNetwork)
	store := &memoryStore{loadErr: errors.New("corrupt")}

	_, _, err := NewFallbackResolver(NewSymbolService(source), store, FrontEndSavePairs).
		Resolve(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt")
}

func TestFileExporter_FallbackWritesEmbeddedSnapshot(t *testing.T) {
	source := &MockSource{}
	source.On("FetchExchangeInfo", mock.Anything).Return(nil, binance.ErrNetwork)
	fs := afero.NewMemMapFs()

	exporter := NewFileExporter(
		NewFallbackResolver(NewSymbolService(source, WithDeduplication()), snapshot.NewEmbeddedStore(), FrontEndSavePairs),
		output.NewJSONFileWriterWithFs(fs, "pairs.json"),
		"pairs.json",
	)
	result, err := exporter.Export(context.Background())

	require.NoError(t, err)
	assert.Equal(t, SourceSnapshot, result.Source)
	assert.Equal(t, len(snapshot.CachedSymbols()), result.Count)

	data, err := afero.ReadFile(fs, "pairs.json")
	require.NoError(t, err)
	var written []string
	require.NoError(t, json.Unmarshal(data, &written))
	assert.Equal(t, entities.SortSymbols(snapshot.CachedSymbols()), written)
}

func TestFileExporter_WriteFailure(t *testing.T) {
	source := &MockSource{}
	source.On("FetchExchangeInfo", mock.Anything).Return(sampleInfo(), nil)

	exporter := NewFileExporter(
		NewFallbackResolver(NewSymbolService(source), &memoryStore{}, FrontEndSavePairs),
		output.NewJSONFileWriterWithFs(afero.NewReadOnlyFs(afero.NewMemMapFs()), "pairs.json"),
		"pairs.json",
	)
	result, err := exporter.Export(context.Background())

	assert.Nil(t, result)
	assert.ErrorIs(t, err, output.ErrWrite)
}

func TestConsoleLister_FailureWritesNothing(t *testing.T) {
	source := &MockSource{}
	source.On("FetchExchangeInfo", mock.Anything).
		Return(nil, fmt.Errorf("%w: unexpected status 500", binance.ErrProtocol))
	var stdout bytes.Buffer

	count, err := NewConsoleLister(NewSymbolService(source), output.NewConsoleWriter(&stdout)).
		List(context.Background())

	assert.ErrorIs(t, err, binance.ErrProtocol)
	assert.Zero(t, count)
	assert.Empty(t, stdout.String())
}

func newExchangeServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func newClient(baseURL string) *binance.RestClient {
	return binance.NewRestClientWithConfig(config.BinanceConfig{
		BaseURL:          baseURL,
		ExchangeInfoPath: binance.ExchangeInfoPath,
		UserAgent:        "test",
		Timeout:          2 * time.Second,
		MaxAttempts:      1,
	})
}

const endToEndPayload = `{"symbols":[
	{"symbol":"BTCUSDT","contractType":"PERPETUAL","quoteAsset":"USDT"},
	{"symbol":"1000PEPEUSDT","contractType":"PERPETUAL","quoteAsset":"USDT"},
	{"symbol":"BTCUSD","contractType":"PERPETUAL","quoteAsset":"USD"}
]}`

func TestEndToEnd_BothFrontEnds(t *testing.T) {
	server := newExchangeServer(t, endToEndPayload)
	ctx := context.Background()

	fs := afero.NewMemMapFs()
	exporter := NewFileExporter(
		NewFallbackResolver(NewSymbolService(newClient(server.URL), WithDeduplication()), snapshot.NewEmbeddedStore(), FrontEndSavePairs),
		output.NewJSONFileWriterWithFs(fs, "pairs.json"),
		"pairs.json",
	)
	result, err := exporter.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, &ExportResult{Count: 2, Source: SourceLive, Path: "pairs.json"}, result)

	data, err := afero.ReadFile(fs, "pairs.json")
	require.NoError(t, err)
	assert.Equal(t, "[\n  \"BTCUSDT\",\n  \"1000PEPEUSDT\"\n]", string(data))

	var stdout bytes.Buffer
	count, err := NewConsoleLister(NewSymbolService(newClient(server.URL)), output.NewConsoleWriter(&stdout)).List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, "BTCUSDT\n1000PEPEUSDT\n", stdout.String())
}

func TestEndToEnd_EmptySymbols(t *testing.T) {
	server := newExchangeServer(t, `{"symbols":[]}`)
	ctx := context.Background()

	fs := afero.NewMemMapFs()
	exporter := NewFileExporter(
		NewFallbackResolver(NewSymbolService(newClient(server.URL), WithDeduplication()), snapshot.NewEmbeddedStore(), FrontEndSavePairs),
		output.NewJSONFileWriterWithFs(fs, "pairs.json"),
		"pairs.json",
	)
	result, err := exporter.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Count)
	assert.Equal(t, SourceLive, result.Source)

	data, err := afero.ReadFile(fs, "pairs.json")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	var stdout bytes.Buffer
	count, err := NewConsoleLister(NewSymbolService(newClient(server.URL)), output.NewConsoleWriter(&stdout)).List(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, stdout.String())
}
