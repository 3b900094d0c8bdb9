package valuator

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/predmarkets/arbscan/internal/config"
	"github.com/predmarkets/arbscan/internal/domain"
)

func testEngineCfg() config.EngineConfig {
	return config.EngineConfig{
		MaxTradeSizeUSD:         10_000,
		LiquidityUtilizationCap: 0.10,
		FeeBufferPercentage:     2.0,
		SlippageBasePct:         0.5,
		SlippageScalePct:        15.0,
		SlippageExponent:        1.5,
		ExecuteMinProfitPct:     3.0,
		ExecuteMinCertainty:     80.0,
		SkipBelowProfitPct:      0.5,
		SkipBelowExpiryHours:    2.0,
	}
}

func testPair(kalshiYes, kalshiNo, polyYes, polyNo, liquidity float64, expiry time.Time) domain.MatchedPair {
	return domain.MatchedPair{
		Kalshi: domain.Contract{
			Venue:        domain.VenueKalshi,
			ExternalID:   "CPI-26AUG-T3.0",
			Expiry:       expiry,
			YesPrice:     kalshiYes,
			NoPrice:      kalshiNo,
			LiquidityUSD: liquidity,
		},
		Polymarket: domain.Contract{
			Venue:        domain.VenuePolymarket,
			ExternalID:   "0xabc",
			Expiry:       expiry,
			YesPrice:     polyYes,
			NoPrice:      polyNo,
			LiquidityUSD: liquidity,
		},
		Confidence: 0.9,
		Method:     domain.MatchThresholdAligned,
	}
}

// Kalshi YES at 0.40 plus Polymarket NO at 0.55 leaves a 5-cent raw edge
// against a 2% fee buffer, which survives slippage and fees at this depth.
func TestValueFindsOpportunity(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	pair := testPair(0.40, 0.62, 0.47, 0.55, 100_000, now.Add(72*time.Hour))

	v := New(slog.Default(), testEngineCfg())
	opp, ok := v.Value(pair, "cycle-1", now)
	require.True(t, ok)

	assert.Equal(t, domain.VenueKalshi, opp.BuyVenue)
	assert.Equal(t, domain.SideYes, opp.BuySide)
	assert.Equal(t, domain.VenuePolymarket, opp.SellVenue)
	assert.Equal(t, domain.SideNo, opp.SellSide)

	assert.Greater(t, opp.GuaranteedProfitUSD, 0.0)
	assert.Greater(t, opp.ProfitPercentage, 1.0)
	assert.Less(t, opp.ProfitPercentage, 6.0)
	assert.InDelta(t, 10_000, opp.TradeSizeUSD, 1e-9)
	assert.InDelta(t, 72, opp.TimeToExpiryHours, 1e-6)
	assert.Greater(t, opp.FeesUSD, 0.0)
	assert.NotEmpty(t, opp.ID)
	assert.Equal(t, "cycle-1", opp.CycleID)
}

func TestValueRejectsInsufficientEdge(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	// 0.50 + 0.49 = 0.99 does not clear the 2% buffer in either direction.
	pair := testPair(0.50, 0.53, 0.52, 0.49, 100_000, now.Add(72*time.Hour))

	v := New(slog.Default(), testEngineCfg())
	_, ok := v.Value(pair, "cycle-1", now)
	assert.False(t, ok)
}

func TestValueRespectsLiquidityCap(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	pair := testPair(0.30, 0.75, 0.72, 0.40, 50, now.Add(72*time.Hour))

	v := New(slog.Default(), testEngineCfg())
	opp, ok := v.Value(pair, "cycle-1", now)
	require.True(t, ok)
	// 10% of the $50 thin side, not the $10k ceiling.
	assert.InDelta(t, 5.0, opp.TradeSizeUSD, 1e-9)
}

func TestValueRejectsZeroLiquidity(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	pair := testPair(0.40, 0.62, 0.47, 0.55, 100_000, now.Add(72*time.Hour))
	pair.Polymarket.LiquidityUSD = 0

	v := New(slog.Default(), testEngineCfg())
	_, ok := v.Value(pair, "cycle-1", now)
	assert.False(t, ok)
}

func TestValuePicksBetterDirection(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	// Both directions viable; buying YES on Polymarket is cheaper overall.
	pair := testPair(0.48, 0.45, 0.40, 0.47, 100_000, now.Add(72*time.Hour))

	v := New(slog.Default(), testEngineCfg())
	opp, ok := v.Value(pair, "cycle-1", now)
	require.True(t, ok)
	assert.Equal(t, domain.VenuePolymarket, opp.BuyVenue)
	assert.Equal(t, domain.SideYes, opp.BuySide)
	assert.Equal(t, domain.VenueKalshi, opp.SellVenue)
}

func TestKalshiFeeUSD(t *testing.T) {
	tests := []struct {
		name      string
		ticker    string
		contracts float64
		price     float64
		want      float64
	}{
		{"general exact cent", "CPI-26AUG", 100, 0.5, 1.75},
		{"general exact cent larger fill", "CPI-26AUG", 200, 0.5, 3.50},
		{"general rounds up", "CPI-26AUG", 10, 0.5, 0.18},
		{"index half factor", "KXINX-26AUG", 100, 0.5, 0.88},
		{"nasdaq prefix", "NASDAQ100-26AUG", 100, 0.5, 0.88},
		{"free at bounds", "CPI-26AUG", 100, 1.0, 0},
		{"no contracts", "CPI-26AUG", 0, 0.5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, kalshiFeeUSD(tt.ticker, tt.contracts, tt.price), 1e-9)
		})
	}
}

func TestFeeUSDPolymarketFree(t *testing.T) {
	assert.Zero(t, feeUSD(domain.VenuePolymarket, "0xabc", 100, 0.5))
	assert.Greater(t, feeUSD(domain.VenueKalshi, "CPI-26AUG", 100, 0.5), 0.0)
}

func TestSlippageMonotonic(t *testing.T) {
	small := slippagePct(0.5, 15, 1.5, 100, 100_000)
	large := slippagePct(0.5, 15, 1.5, 10_000, 100_000)
	assert.Greater(t, large, small)
	assert.Equal(t, 0.5, slippagePct(0.5, 15, 1.5, 0, 100_000), "zero size pays only the base")
}

func TestApplySlippageCapped(t *testing.T) {
	assert.InDelta(t, 0.505, applySlippage(0.5, 1.0), 1e-9)
	assert.Equal(t, 1.0, applySlippage(0.99, 50.0))
}

func TestLiquidityScore(t *testing.T) {
	assert.Zero(t, liquidityScore(0))
	assert.InDelta(t, 40, liquidityScore(100), 1e-9)
	assert.Equal(t, 100.0, liquidityScore(100_000))
	assert.Equal(t, 100.0, liquidityScore(10_000_000))
}

func TestExecutionCertaintyTimePressure(t *testing.T) {
	farOut := executionCertainty(0.9, 2.0, 80, 720)
	dayOut := executionCertainty(0.9, 2.0, 80, 24)
	oneHour := executionCertainty(0.9, 2.0, 80, 1)
	atExpiry := executionCertainty(0.9, 2.0, 80, 0)

	// The penalty only bites inside the final day, then grows toward expiry.
	assert.Equal(t, farOut, dayOut)
	assert.Less(t, oneHour, dayOut)
	assert.Less(t, atExpiry, oneHour)
	assert.InDelta(t, 11.5, dayOut-oneHour, 1e-9)
}

func TestRecommend(t *testing.T) {
	v := New(slog.Default(), testEngineCfg())

	tests := []struct {
		name      string
		profitPct float64
		certainty float64
		hours     float64
		want      domain.Recommendation
	}{
		{"dust profit", 0.2, 90, 48, domain.RecommendSkip},
		{"expiring now", 5.0, 90, 1, domain.RecommendSkip},
		{"strong and certain", 5.0, 90, 48, domain.RecommendExecute},
		{"strong but uncertain", 5.0, 60, 48, domain.RecommendMonitor},
		{"thin edge", 1.0, 90, 48, domain.RecommendMonitor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := domain.Opportunity{
				ProfitPercentage:   tt.profitPct,
				ExecutionCertainty: tt.certainty,
				TimeToExpiryHours:  tt.hours,
			}
			assert.Equal(t, tt.want, v.recommend(o))
		})
	}
}
