package services

import (
	"context"

	"usdt-perp-symbols/internal/domain/interfaces"
	"usdt-perp-symbols/internal/infrastructure/metrics"
)

// ConsoleLister prints the live symbol list. It never falls back to a snapshot.
type ConsoleLister struct {
	symbols *SymbolService
	writer  interfaces.SymbolWriter
}

// NewConsoleLister creates a console lister
func NewConsoleLister(symbols *SymbolService, writer interfaces.SymbolWriter) *ConsoleLister {
	return &ConsoleLister{
		symbols: symbols,
		writer:  writer,
	}
}

// List fetches and prints the symbols. Nothing is written when the fetch fails.
func (l *ConsoleLister) List(ctx context.Context) (int, error) {
	symbols, err := l.symbols.GetSymbols(ctx)
	if err != nil {
		metrics.RecordRun(FrontEndListPairs, false)
		return 0, err
	}

	if err := l.writer.Write(symbols); err != nil {
		metrics.RecordRun(FrontEndListPairs, false)
		return 0, err
	}

	metrics.RecordSymbolsEmitted(FrontEndListPairs, SourceLive, len(symbols))
	metrics.RecordRun(FrontEndListPairs, true)
	return len(symbols), nil
}
