package handler

import (
	"log/slog"
	"net/http"

	"github.com/predmarkets/arbscan/internal/domain"
)

// CycleSource exposes the most recent completed cycle.
type CycleSource interface {
	Latest() (domain.CycleResult, bool)
}

// OpportunityHandler serves the current opportunity list and, when a history
// store is attached, past cycles.
type OpportunityHandler struct {
	log     *slog.Logger
	cycles  CycleSource
	history domain.OpportunityStore // optional
}

// NewOpportunityHandler creates an OpportunityHandler. history may be nil.
func NewOpportunityHandler(log *slog.Logger, cycles CycleSource, history domain.OpportunityStore) *OpportunityHandler {
	return &OpportunityHandler{log: log, cycles: cycles, history: history}
}

// ListCurrent returns the ranked opportunities from the latest cycle.
// GET /api/opportunities
func (h *OpportunityHandler) ListCurrent(w http.ResponseWriter, r *http.Request) {
	result, ok := h.cycles.Latest()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{
			"cycle_id":      "",
			"opportunities": []domain.Opportunity{},
		})
		return
	}

	opps := result.Opportunities
	if opps == nil {
		opps = []domain.Opportunity{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"cycle_id":      result.Diagnostics.CycleID,
		"detected_at":   result.Diagnostics.StartedAt,
		"opportunities": opps,
	})
}

// ListHistory returns recent persisted opportunities, newest first.
// GET /api/opportunities/history?limit=N
func (h *OpportunityHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, http.StatusServiceUnavailable, "history store not configured")
		return
	}

	limit := queryLimit(r, 50, 500)
	opps, err := h.history.ListRecent(r.Context(), limit)
	if err != nil {
		h.log.Error("list history failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to query history")
		return
	}
	if opps == nil {
		opps = []domain.Opportunity{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"opportunities": opps})
}
