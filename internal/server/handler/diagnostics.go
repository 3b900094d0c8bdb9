package handler

import (
	"log/slog"
	"net/http"
)

// DiagnosticsHandler serves the latest cycle's stage counters.
type DiagnosticsHandler struct {
	log    *slog.Logger
	cycles CycleSource
}

// NewDiagnosticsHandler creates a DiagnosticsHandler.
func NewDiagnosticsHandler(log *slog.Logger, cycles CycleSource) *DiagnosticsHandler {
	return &DiagnosticsHandler{log: log, cycles: cycles}
}

// GetDiagnostics returns the diagnostics block of the most recent cycle.
// GET /api/diagnostics
func (h *DiagnosticsHandler) GetDiagnostics(w http.ResponseWriter, r *http.Request) {
	result, ok := h.cycles.Latest()
	if !ok {
		writeError(w, http.StatusNotFound, "no cycle has completed yet")
		return
	}
	writeJSON(w, http.StatusOK, result.Diagnostics)
}
