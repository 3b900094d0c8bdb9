// Package valuator turns matched pairs into valued opportunities. Both arb
// directions are priced (YES here + NO there, and the reverse) with slippage
// and venue fees applied; only the better direction survives, and only when
// it clears the fee buffer with positive guaranteed profit.
package valuator

import (
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/predmarkets/arbscan/internal/config"
	"github.com/predmarkets/arbscan/internal/domain"
)

// Valuator prices matched pairs under the configured engine thresholds.
type Valuator struct {
	log *slog.Logger
	cfg config.EngineConfig
}

// New creates a Valuator.
func New(log *slog.Logger, cfg config.EngineConfig) *Valuator {
	return &Valuator{
		log: log.With("component", "valuator"),
		cfg: cfg,
	}
}

// Value prices one matched pair. ok is false when no direction produces a
// viable opportunity: quotes don't clear the fee buffer, a leg has no
// liquidity, or guaranteed profit ends up non-positive.
func (v *Valuator) Value(pair domain.MatchedPair, cycleID string, now time.Time) (domain.Opportunity, bool) {
	// A side with no book depth can't be sized; the slippage model divides
	// by liquidity.
	if pair.Kalshi.LiquidityUSD <= 0 || pair.Polymarket.LiquidityUSD <= 0 {
		return domain.Opportunity{}, false
	}

	a, okA := v.direction(pair, pair.Kalshi, domain.SideYes, pair.Polymarket, domain.SideNo, cycleID, now)
	b, okB := v.direction(pair, pair.Polymarket, domain.SideYes, pair.Kalshi, domain.SideNo, cycleID, now)

	switch {
	case okA && okB:
		if a.GuaranteedProfitUSD >= b.GuaranteedProfitUSD {
			return a, true
		}
		return b, true
	case okA:
		return a, true
	case okB:
		return b, true
	default:
		return domain.Opportunity{}, false
	}
}

// direction prices one leg assignment: buy buySide on buyC and the opposite
// leg on sellC. Both legs are buys; "sell" names the venue covering the
// other outcome.
func (v *Valuator) direction(pair domain.MatchedPair, buyC domain.Contract, buySide domain.Side, sellC domain.Contract, sellSide domain.Side, cycleID string, now time.Time) (domain.Opportunity, bool) {
	buyQuote := buyC.Price(buySide)
	sellQuote := sellC.Price(sellSide)

	// The arbitrage precondition on raw quotes: combined cost must leave
	// room for the fee buffer.
	if buyQuote+sellQuote >= 1-v.cfg.FeeBufferPercentage/100 {
		return domain.Opportunity{}, false
	}

	minLiquidity := math.Min(buyC.LiquidityUSD, sellC.LiquidityUSD)
	tradeSize := math.Min(v.cfg.MaxTradeSizeUSD, v.cfg.LiquidityUtilizationCap*minLiquidity)
	if tradeSize <= 0 {
		return domain.Opportunity{}, false
	}

	buySlip := slippagePct(v.cfg.SlippageBasePct, v.cfg.SlippageScalePct, v.cfg.SlippageExponent, tradeSize, buyC.LiquidityUSD)
	sellSlip := slippagePct(v.cfg.SlippageBasePct, v.cfg.SlippageScalePct, v.cfg.SlippageExponent, tradeSize, sellC.LiquidityUSD)

	buyExec := applySlippage(buyQuote, buySlip)
	sellExec := applySlippage(sellQuote, sellSlip)

	unitCost := buyExec + sellExec
	if unitCost >= 1 {
		return domain.Opportunity{}, false
	}

	// Each matched unit pays $1 at settlement whichever way it resolves.
	contracts := tradeSize / unitCost
	grossProfit := contracts * (1 - unitCost)

	fees := feeUSD(buyC.Venue, buyC.ExternalID, contracts, buyExec) +
		feeUSD(sellC.Venue, sellC.ExternalID, contracts, sellExec)

	profit := grossProfit - fees
	if profit <= 0 {
		return domain.Opportunity{}, false
	}

	hoursToExpiry := earliestExpiry(buyC, sellC).Sub(now).Hours()
	if hoursToExpiry <= 0 {
		return domain.Opportunity{}, false
	}

	profitPct := profit / tradeSize * 100
	liqScore := liquidityScore(minLiquidity)
	certainty := executionCertainty(pair.Confidence, buySlip+sellSlip, liqScore, hoursToExpiry)

	opp := domain.Opportunity{
		ID:         uuid.NewString(),
		CycleID:    cycleID,
		Pair:       pair,
		DetectedAt: now,

		BuyVenue:  buyC.Venue,
		BuySide:   buySide,
		SellVenue: sellC.Venue,
		SellSide:  sellSide,

		BuyExecutionPrice:  buyExec,
		SellExecutionPrice: sellExec,
		BuySlippagePct:     buySlip,
		SellSlippagePct:    sellSlip,
		FeesUSD:            fees,

		TradeSizeUSD:        tradeSize,
		GuaranteedProfitUSD: profit,
		ProfitPercentage:    profitPct,
		ProfitPerHour:       profit / hoursToExpiry,

		LiquidityScore:     liqScore,
		ExecutionCertainty: certainty,
		TimeToExpiryHours:  hoursToExpiry,
	}
	opp.Recommendation = v.recommend(opp)
	return opp, true
}

// recommend applies the action policy to a valued opportunity.
func (v *Valuator) recommend(o domain.Opportunity) domain.Recommendation {
	if o.ProfitPercentage < v.cfg.SkipBelowProfitPct || o.TimeToExpiryHours < v.cfg.SkipBelowExpiryHours {
		return domain.RecommendSkip
	}
	if o.ProfitPercentage >= v.cfg.ExecuteMinProfitPct && o.ExecutionCertainty >= v.cfg.ExecuteMinCertainty {
		return domain.RecommendExecute
	}
	return domain.RecommendMonitor
}

// earliestExpiry returns whichever leg settles first; profit is locked only
// until then.
func earliestExpiry(a, b domain.Contract) time.Time {
	if a.Expiry.Before(b.Expiry) {
		return a.Expiry
	}
	return b.Expiry
}
