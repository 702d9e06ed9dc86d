package handlers

import (
	"net/http"

	"usdt-perp-symbols/internal/application/dto"
)

// HealthHandler maneja los endpoints de health check
type HealthHandler struct {
	snapshotBackend string
}

// NewHealthHandler crea una nueva instancia del health handler
func NewHealthHandler(snapshotBackend string) *HealthHandler {
	return &HealthHandler{
		snapshotBackend: snapshotBackend,
	}
}

// Health responde rápido sin consultar el exchange
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	services := map[string]string{
		"service":  "running",
		"snapshot": h.snapshotBackend,
	}

	writeJSONResponse(w, http.StatusOK, dto.NewHealthResponse("healthy", services))
}

// writeJSONResponse escribe una respuesta JSON
func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"ENCODING_ERROR","message":"Failed to encode response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}
