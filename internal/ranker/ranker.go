// Package ranker applies the final admission filters to valued opportunities
// and orders the survivors for presentation.
package ranker

import (
	"log/slog"
	"sort"

	"github.com/predmarkets/arbscan/internal/config"
	"github.com/predmarkets/arbscan/internal/domain"
)

// Ranker filters on the engine thresholds and sorts by urgency.
type Ranker struct {
	log *slog.Logger
	cfg config.EngineConfig
}

// New creates a Ranker.
func New(log *slog.Logger, cfg config.EngineConfig) *Ranker {
	return &Ranker{
		log: log.With("component", "ranker"),
		cfg: cfg,
	}
}

// Rank returns the opportunities that pass every filter, ordered by profit
// per hour descending, with execution certainty breaking ties. The input
// slice is not modified.
func (r *Ranker) Rank(opps []domain.Opportunity) []domain.Opportunity {
	passed := make([]domain.Opportunity, 0, len(opps))
	for _, o := range opps {
		if r.admit(o) {
			passed = append(passed, o)
		}
	}

	sort.SliceStable(passed, func(i, j int) bool {
		if passed[i].ProfitPerHour != passed[j].ProfitPerHour {
			return passed[i].ProfitPerHour > passed[j].ProfitPerHour
		}
		return passed[i].ExecutionCertainty > passed[j].ExecutionCertainty
	})

	r.log.Debug("ranked opportunities", "in", len(opps), "passed", len(passed))
	return passed
}

// admit checks one opportunity against the configured floors and the expiry
// window.
func (r *Ranker) admit(o domain.Opportunity) bool {
	if o.GuaranteedProfitUSD < r.cfg.MinProfitUSD {
		return false
	}
	if o.ProfitPercentage < r.cfg.MinProfitPercentage {
		return false
	}
	if o.Pair.Confidence < r.cfg.MinConfidence {
		return false
	}
	if o.TimeToExpiryHours < r.cfg.MinTimeToExpiryHours {
		return false
	}
	if o.TimeToExpiryHours > r.cfg.MaxTimeToExpiryHours {
		return false
	}
	return true
}
