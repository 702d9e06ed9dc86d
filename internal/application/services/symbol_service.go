package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"usdt-perp-symbols/internal/domain/entities"
	"usdt-perp-symbols/internal/domain/interfaces"
	"usdt-perp-symbols/internal/infrastructure/exchange/binance"
	"usdt-perp-symbols/internal/infrastructure/logging"
	"usdt-perp-symbols/internal/infrastructure/metrics"
)

// Front end names used as metric labels
const (
	FrontEndSavePairs  = "savepairs"
	FrontEndListPairs  = "listpairs"
	FrontEndSymbolsAPI = "symbols-api"
)

// Where an emitted list came from
const (
	SourceLive     = "live"
	SourceSnapshot = "snapshot"
)

// SymbolService turns exchange metadata into a sorted list of USDT perpetual symbols
type SymbolService struct {
	source interfaces.ExchangeInfoSource
	dedupe bool
}

// Option configures a SymbolService
type Option func(*SymbolService)

// WithDeduplication drops repeated symbols before sorting
func WithDeduplication() Option {
	return func(s *SymbolService) {
		s.dedupe = true
	}
}

// NewSymbolService creates a new instance of the symbol service
func NewSymbolService(source interfaces.ExchangeInfoSource, opts ...Option) *SymbolService {
	s := &SymbolService{source: source}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetSymbols fetches exchange metadata and returns the filtered, sorted symbols.
// Fetch errors are returned unchanged so callers can test them with errors.Is.
func (s *SymbolService) GetSymbols(ctx context.Context) ([]string, error) {
	info, err := s.source.FetchExchangeInfo(ctx)
	if err != nil {
		return nil, err
	}

	symbols := entities.ExtractPerpetualUSDT(info)
	extracted := len(symbols)
	if s.dedupe {
		symbols = entities.Deduplicate(symbols)
	}

	logging.WithContext(ctx).WithFields(logrus.Fields{
		"records":          len(info.Symbols),
		"extracted":        extracted,
		logging.FieldCount: len(symbols),
		"deduplicated":     s.dedupe,
	}).Debug("Extracted USDT perpetual symbols")

	return entities.SortSymbols(symbols), nil
}

// FallbackResolver serves live symbols and substitutes the stored snapshot
// when the exchange cannot be reached or answers with garbage
type FallbackResolver struct {
	symbols  *SymbolService
	snapshot interfaces.SnapshotStore
	frontEnd string
}

// NewFallbackResolver creates a resolver for the given front end
func NewFallbackResolver(symbols *SymbolService, snapshot interfaces.SnapshotStore, frontEnd string) *FallbackResolver {
	return &FallbackResolver{
		symbols:  symbols,
		snapshot: snapshot,
		frontEnd: frontEnd,
	}
}

// Resolve returns the sorted symbol list and its source. Errors other than
// fetch failures are not absorbed.
func (r *FallbackResolver) Resolve(ctx context.Context) ([]string, string, error) {
	symbols, err := r.symbols.GetSymbols(ctx)
	if err == nil {
		if saveErr := r.snapshot.Save(ctx, symbols); saveErr != nil {
			logging.WithContext(ctx).WithFields(logrus.Fields{
				logging.FieldBackend: r.snapshot.Backend(),
				logging.FieldError:   saveErr.Error(),
			}).Warn("Failed to store live symbols as snapshot")
		}
		return symbols, SourceLive, nil
	}

	if !binance.IsFetchError(err) {
		return nil, "", err
	}

	logging.LogFallback(ctx, err, r.snapshot.Backend())
	metrics.RecordFallbackActivation(r.frontEnd, r.snapshot.Backend())

	cached, loadErr := r.snapshot.Load(ctx)
	if loadErr != nil {
		return nil, "", fmt.Errorf("failed to load snapshot after %v: %w", err, loadErr)
	}

	return entities.SortSymbols(cached), SourceSnapshot, nil
}
