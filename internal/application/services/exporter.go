package services

import (
	"context"

	"usdt-perp-symbols/internal/domain/interfaces"
	"usdt-perp-symbols/internal/infrastructure/logging"
	"usdt-perp-symbols/internal/infrastructure/metrics"
)

// ExportResult describes a completed file export
type ExportResult struct {
	Count  int
	Source string
	Path   string
}

// FileExporter writes the symbol list to a file, using the snapshot when the
// exchange is unavailable
type FileExporter struct {
	resolver *FallbackResolver
	writer   interfaces.SymbolWriter
	path     string
}

// NewFileExporter creates a file exporter. path is only used for reporting.
func NewFileExporter(resolver *FallbackResolver, writer interfaces.SymbolWriter, path string) *FileExporter {
	return &FileExporter{
		resolver: resolver,
		writer:   writer,
		path:     path,
	}
}

// Export resolves the symbol list and writes it. Write failures are returned
// wrapped in output.ErrWrite.
func (e *FileExporter) Export(ctx context.Context) (*ExportResult, error) {
	symbols, source, err := e.resolver.Resolve(ctx)
	if err != nil {
		metrics.RecordRun(FrontEndSavePairs, false)
		return nil, err
	}

	if err := e.writer.Write(symbols); err != nil {
		metrics.RecordRun(FrontEndSavePairs, false)
		return nil, err
	}

	metrics.RecordSymbolsEmitted(FrontEndSavePairs, source, len(symbols))
	metrics.RecordRun(FrontEndSavePairs, true)
	logging.LogSymbolsWritten(ctx, e.path, source, len(symbols))

	return &ExportResult{
		Count:  len(symbols),
		Source: source,
		Path:   e.path,
	}, nil
}
