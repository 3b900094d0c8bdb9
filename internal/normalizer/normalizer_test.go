package normalizer

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/predmarkets/arbscan/internal/config"
	"github.com/predmarkets/arbscan/internal/domain"
	"github.com/predmarkets/arbscan/internal/platform/kalshi"
	"github.com/predmarkets/arbscan/internal/platform/polymarket"
)

func testNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	return New(slog.Default(), config.ScannerConfig{
		MinVolumeUSD:    1000,
		MaxDaysToExpiry: 14,
	})
}

func TestExtractThreshold(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     domain.Threshold
		ok       bool
	}{
		{
			name:     "percent",
			question: "Will CPI inflation be 3.0% or higher for August 2026?",
			want:     domain.Threshold{Value: 3.0, Unit: domain.UnitPercent},
			ok:       true,
		},
		{
			name:     "basis points",
			question: "Will the Fed cut rates by 25 bps in September?",
			want:     domain.Threshold{Value: 25, Unit: domain.UnitBasisPoints},
			ok:       true,
		},
		{
			name:     "dollars with suffix",
			question: "Will Bitcoin close above $100k this year?",
			want:     domain.Threshold{Value: 100_000, Unit: domain.UnitDollars},
			ok:       true,
		},
		{
			name:     "dollars with commas",
			question: "Will BTC trade above $95,000 on Friday?",
			want:     domain.Threshold{Value: 95_000, Unit: domain.UnitDollars},
			ok:       true,
		},
		{
			name:     "no threshold",
			question: "Will the Democrats win the Senate?",
			ok:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractThreshold(tt.question)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestThresholdNormalized(t *testing.T) {
	bps := domain.Threshold{Value: 25, Unit: domain.UnitBasisPoints}
	pct := domain.Threshold{Value: 0.25, Unit: domain.UnitPercent}
	assert.InDelta(t, pct.Normalized(), bps.Normalized(), 1e-9)
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		question string
		want     domain.Category
	}{
		{"Will the Federal Reserve cut rates in September?", domain.CategoryFedRates},
		{"Will CPI inflation exceed 3% in August?", domain.CategoryInflation},
		{"Will the unemployment rate rise above 4.5%?", domain.CategoryEmployment},
		{"Will the S&P 500 close above 6000?", domain.CategoryMarkets},
		{"Will Bitcoin reach $100k?", domain.CategoryCrypto},
		{"Will there be a recession in 2026?", domain.CategoryEconomy},
		{"Will aliens land on Earth?", domain.CategoryOther},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Categorize(tt.question), tt.question)
	}
}

func TestNormalizeKalshi(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	expiry := now.Add(72 * time.Hour).Format(time.RFC3339)

	markets := []kalshi.Market{
		{
			Ticker:    "CPI-26AUG-T3.0",
			Title:     "Will CPI inflation be 3.0% or higher for August 2026?",
			YesAsk:    42, // cents
			NoAsk:     60,
			Volume:    5000,
			Liquidity: 12000,
			CloseTime: expiry,
		},
		{
			// Missing no-side quote.
			Ticker:    "HALF-PRICED",
			Title:     "Will something happen?",
			YesAsk:    30,
			NoAsk:     0,
			Volume:    5000,
			CloseTime: expiry,
		},
		{
			// Already expired.
			Ticker:    "EXPIRED",
			Title:     "Will it have happened?",
			YesAsk:    50,
			NoAsk:     52,
			Volume:    5000,
			CloseTime: now.Add(-time.Hour).Format(time.RFC3339),
		},
		{
			// Below the volume floor.
			Ticker:    "THIN",
			Title:     "Will anyone trade this?",
			YesAsk:    50,
			NoAsk:     52,
			Volume:    10,
			CloseTime: expiry,
		},
	}

	res := testNormalizer(t).NormalizeKalshi(markets, now)

	require.Len(t, res.Contracts, 1)
	c := res.Contracts[0]
	assert.Equal(t, domain.VenueKalshi, c.Venue)
	assert.Equal(t, "CPI-26AUG-T3.0", c.ExternalID)
	assert.InDelta(t, 0.42, c.YesPrice, 1e-9)
	assert.InDelta(t, 0.60, c.NoPrice, 1e-9)
	assert.Equal(t, domain.CategoryInflation, c.Category)
	require.NotNil(t, c.Threshold)
	assert.InDelta(t, 3.0, c.Threshold.Value, 1e-9)

	assert.Equal(t, 1, res.Rejected[RejectMissingPrice])
	assert.Equal(t, 1, res.Rejected[RejectExpired])
	assert.Equal(t, 1, res.Rejected[RejectBelowVolume])
}

func TestNormalizeKalshiExpiryTooFar(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	markets := []kalshi.Market{{
		Ticker:    "FAR",
		Title:     "Will it happen next year?",
		YesAsk:    40,
		NoAsk:     62,
		Volume:    5000,
		CloseTime: now.Add(60 * 24 * time.Hour).Format(time.RFC3339),
	}}

	res := testNormalizer(t).NormalizeKalshi(markets, now)
	assert.Empty(t, res.Contracts)
	assert.Equal(t, 1, res.Rejected[RejectExpiryTooFar])
}

func TestNormalizePolymarket(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	expiry := now.Add(72 * time.Hour).Format(time.RFC3339)

	markets := []polymarket.Market{
		{
			ID:            "0xabc",
			Question:      "Will CPI inflation exceed 3.0% in August 2026?",
			Outcomes:      `["Yes","No"]`,
			OutcomePrices: `["0.45","0.55"]`,
			VolumeTotal:   8000,
			Liquidity:     20000,
			EndDate:       expiry,
		},
		{
			// Multi-outcome market.
			ID:            "0xdef",
			Question:      "Who wins the election?",
			Outcomes:      `["Smith","Jones","Lee"]`,
			OutcomePrices: `["0.4","0.35","0.25"]`,
			VolumeTotal:   8000,
			EndDate:       expiry,
		},
	}

	res := testNormalizer(t).NormalizePolymarket(markets, now)

	require.Len(t, res.Contracts, 1)
	c := res.Contracts[0]
	assert.Equal(t, domain.VenuePolymarket, c.Venue)
	assert.InDelta(t, 0.45, c.YesPrice, 1e-9)
	assert.InDelta(t, 0.55, c.NoPrice, 1e-9)
	assert.Equal(t, 1, res.Rejected[RejectNotBinary])
}

// Running the admission rules over already-normalized output must not change
// anything: prices are already decimal and every filter already passed.
func TestNormalizeIdempotentOnOutput(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	expiry := now.Add(72 * time.Hour)

	n := testNormalizer(t)
	var res Result
	c := domain.Contract{
		Venue:        domain.VenueKalshi,
		ExternalID:   "X",
		QuestionText: "Will CPI inflation be 3.0% or higher?",
		Expiry:       expiry,
		YesPrice:     0.42,
		NoPrice:      0.60,
		Volume:       5000,
		LiquidityUSD: 1000,
	}
	n.admit(&res, c, now)

	require.Len(t, res.Contracts, 1)
	first := res.Contracts[0]

	var res2 Result
	n.admit(&res2, first, now)
	require.Len(t, res2.Contracts, 1)
	assert.Equal(t, first, res2.Contracts[0])
}
