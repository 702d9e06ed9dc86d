package dto

import (
	"time"
)

// SymbolsResponse represents the response from /api/v1/symbols
type SymbolsResponse struct {
	Symbols []string `json:"symbols"` // Sorted USDT perpetual symbols
	Count   int      `json:"count"`   // Number of symbols
	Source  string   `json:"source"`  // live or snapshot
}

// ErrorResponse represents a standard error response for endpoints
type ErrorResponse struct {
	Error   string `json:"error"`             // Error code
	Message string `json:"message,omitempty"` // Detailed error description
}

// HealthResponse represents the health check response with service status
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services,omitempty"`
}

// NewSymbolsResponse creates a response from a resolved symbol list
func NewSymbolsResponse(symbols []string, source string) *SymbolsResponse {
	if symbols == nil {
		symbols = []string{}
	}
	return &SymbolsResponse{
		Symbols: symbols,
		Count:   len(symbols),
		Source:  source,
	}
}

// NewErrorResponse creates a new error response
func NewErrorResponse(err, message string) *ErrorResponse {
	return &ErrorResponse{
		Error:   err,
		Message: message,
	}
}

// NewHealthResponse creates a new health response
func NewHealthResponse(status string, services map[string]string) *HealthResponse {
	return &HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Services:  services,
	}
}
