package handlers

import (
	"context"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"usdt-perp-symbols/internal/application/dto"
	"usdt-perp-symbols/internal/application/services"
	"usdt-perp-symbols/internal/infrastructure/logging"
	"usdt-perp-symbols/internal/infrastructure/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SymbolResolver produces the current symbol list and where it came from
type SymbolResolver interface {
	Resolve(ctx context.Context) ([]string, string, error)
}

// SymbolsHandler serves the USDT perpetual symbol list
type SymbolsHandler struct {
	resolver SymbolResolver
}

// NewSymbolsHandler creates a new symbols handler
func NewSymbolsHandler(resolver SymbolResolver) *SymbolsHandler {
	return &SymbolsHandler{
		resolver: resolver,
	}
}

// GetSymbols handles GET /api/v1/symbols
func (h *SymbolsHandler) GetSymbols(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	symbols, source, err := h.resolver.Resolve(ctx)
	if err != nil {
		logging.WithContext(ctx).WithField(logging.FieldError, err.Error()).Error("Failed to resolve symbols")
		writeJSONResponse(w, http.StatusServiceUnavailable,
			dto.NewErrorResponse("SYMBOLS_UNAVAILABLE", "Symbol list is temporarily unavailable"))
		return
	}

	metrics.RecordSymbolsEmitted(services.FrontEndSymbolsAPI, source, len(symbols))
	writeJSONResponse(w, http.StatusOK, dto.NewSymbolsResponse(symbols, source))
}
