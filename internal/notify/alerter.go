package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/predmarkets/arbscan/internal/domain"
)

// Events the alerter emits through the notifier's filter.
const (
	EventOpportunity = "opportunity"
	EventCycleError  = "cycle_error"
)

// maxAlertsPerCycle caps one cycle's outbound messages; the ranked list is
// already ordered best-first.
const maxAlertsPerCycle = 5

// Alerter implements domain.CyclePublisher: it renders the top ranked
// opportunities and pushes them through the notifier, suppressing repeats
// with the dedup store.
type Alerter struct {
	log      *slog.Logger
	notifier *Notifier
	dedup    domain.DedupStore // optional; nil alerts every cycle
}

// NewAlerter creates an Alerter. dedup may be nil.
func NewAlerter(log *slog.Logger, notifier *Notifier, dedup domain.DedupStore) *Alerter {
	return &Alerter{
		log:      log.With("component", "alerter"),
		notifier: notifier,
		dedup:    dedup,
	}
}

// PublishCycle alerts on the top opportunities of a completed cycle. Dedup
// store failures fail open: a lost suppression record is better than a lost
// alert.
func (a *Alerter) PublishCycle(ctx context.Context, result domain.CycleResult) error {
	sent := 0
	for _, opp := range result.Opportunities {
		if sent >= maxAlertsPerCycle {
			break
		}
		if opp.Recommendation == domain.RecommendSkip {
			continue
		}

		if a.dedup != nil {
			seen, err := a.dedup.Seen(ctx, opp.DedupKey(), opp.GuaranteedProfitUSD)
			if err != nil {
				a.log.Warn("dedup store unavailable, alerting anyway", "error", err)
			} else if seen {
				continue
			}
		}

		title := fmt.Sprintf("Arbitrage: %.2f%% / $%.2f profit", opp.ProfitPercentage, opp.GuaranteedProfitUSD)
		if err := a.notifier.Notify(ctx, EventOpportunity, title, renderOpportunity(opp)); err != nil {
			return err
		}
		sent++
	}
	return nil
}

// renderOpportunity formats one opportunity for a chat channel.
func renderOpportunity(o domain.Opportunity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", o.Pair.Kalshi.QuestionText)
	fmt.Fprintf(&b, "Buy %s on %s @ %.3f, buy %s on %s @ %.3f\n",
		o.BuySide, o.BuyVenue, o.BuyExecutionPrice,
		o.SellSide, o.SellVenue, o.SellExecutionPrice)
	fmt.Fprintf(&b, "Size $%.0f | profit $%.2f (%.2f%%) | fees $%.2f\n",
		o.TradeSizeUSD, o.GuaranteedProfitUSD, o.ProfitPercentage, o.FeesUSD)
	fmt.Fprintf(&b, "Certainty %.0f/100 | liquidity %.0f/100 | expires in %.1fh\n",
		o.ExecutionCertainty, o.LiquidityScore, o.TimeToExpiryHours)
	fmt.Fprintf(&b, "Match: %s (%.2f) | %s", o.Pair.Method, o.Pair.Confidence, o.Recommendation)
	return b.String()
}
