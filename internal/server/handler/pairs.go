package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/predmarkets/arbscan/internal/domain"
)

// PairHandler administers the verified pair table behind the exact-key
// match method.
type PairHandler struct {
	log   *slog.Logger
	pairs domain.PairStore // optional
}

// NewPairHandler creates a PairHandler. pairs may be nil when no persistent
// store is configured.
func NewPairHandler(log *slog.Logger, pairs domain.PairStore) *PairHandler {
	return &PairHandler{log: log, pairs: pairs}
}

func (h *PairHandler) unavailable(w http.ResponseWriter) bool {
	if h.pairs == nil {
		writeError(w, http.StatusServiceUnavailable, "pair store not configured")
		return true
	}
	return false
}

// ListPairs returns every active verified pair.
// GET /api/pairs
func (h *PairHandler) ListPairs(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w) {
		return
	}
	pairs, err := h.pairs.ListActive(r.Context())
	if err != nil {
		h.log.Error("list verified pairs failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to query pairs")
		return
	}
	if pairs == nil {
		pairs = []domain.VerifiedPair{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"pairs": pairs})
}

type insertPairRequest struct {
	KalshiID     string `json:"kalshi_id"`
	PolymarketID string `json:"polymarket_id"`
	VerifiedBy   string `json:"verified_by"`
}

// InsertPair adds or reactivates a verified association.
// POST /api/pairs
func (h *PairHandler) InsertPair(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w) {
		return
	}

	var req insertPairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.KalshiID == "" || req.PolymarketID == "" {
		writeError(w, http.StatusBadRequest, "kalshi_id and polymarket_id are required")
		return
	}
	if req.VerifiedBy == "" {
		req.VerifiedBy = "api"
	}

	pair := domain.VerifiedPair{
		Key:        domain.PairKey{KalshiID: req.KalshiID, PolymarketID: req.PolymarketID},
		VerifiedBy: req.VerifiedBy,
		VerifiedAt: time.Now().UTC(),
		Active:     true,
	}
	if err := h.pairs.Insert(r.Context(), pair); err != nil {
		h.log.Error("insert verified pair failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to insert pair")
		return
	}
	writeJSON(w, http.StatusCreated, pair)
}

// DeactivatePair retires a verified association.
// DELETE /api/pairs/{kalshiID}/{polymarketID}
func (h *PairHandler) DeactivatePair(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w) {
		return
	}

	key := domain.PairKey{
		KalshiID:     r.PathValue("kalshiID"),
		PolymarketID: r.PathValue("polymarketID"),
	}
	if err := h.pairs.Deactivate(r.Context(), key); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "pair not found")
			return
		}
		h.log.Error("deactivate verified pair failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to deactivate pair")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
