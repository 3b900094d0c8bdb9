package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/predmarkets/arbscan/internal/domain"
)

// ScanTrigger runs one scan cycle on demand.
type ScanTrigger interface {
	RunCycle(ctx context.Context) (domain.CycleResult, error)
}

// ScanHandler exposes the manual scan trigger.
type ScanHandler struct {
	log     *slog.Logger
	trigger ScanTrigger
}

// NewScanHandler creates a ScanHandler.
func NewScanHandler(log *slog.Logger, trigger ScanTrigger) *ScanHandler {
	return &ScanHandler{log: log, trigger: trigger}
}

// TriggerScan runs a cycle synchronously and returns its result.
// POST /api/scan
func (h *ScanHandler) TriggerScan(w http.ResponseWriter, r *http.Request) {
	result, err := h.trigger.RunCycle(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrInconsistentMatch) {
			writeError(w, http.StatusConflict, "cycle discarded: inconsistent match set")
			return
		}
		h.log.Error("triggered scan failed", "error", err)
		writeError(w, http.StatusInternalServerError, "scan failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
