package scanner

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/predmarkets/arbscan/internal/config"
	"github.com/predmarkets/arbscan/internal/domain"
	"github.com/predmarkets/arbscan/internal/matcher"
	"github.com/predmarkets/arbscan/internal/normalizer"
	"github.com/predmarkets/arbscan/internal/platform/kalshi"
	"github.com/predmarkets/arbscan/internal/platform/polymarket"
	"github.com/predmarkets/arbscan/internal/ranker"
	"github.com/predmarkets/arbscan/internal/valuator"
)

type fakeKalshi struct {
	markets []kalshi.Market
	err     error
}

func (f *fakeKalshi) FetchAll(context.Context, int, int) ([]kalshi.Market, error) {
	return f.markets, f.err
}

type fakePolymarket struct {
	markets []polymarket.Market
	err     error
}

func (f *fakePolymarket) FetchAll(context.Context, int, int) ([]polymarket.Market, error) {
	return f.markets, f.err
}

type fakePublisher struct {
	results []domain.CycleResult
	err     error
}

func (f *fakePublisher) PublishCycle(_ context.Context, r domain.CycleResult) error {
	f.results = append(f.results, r)
	return f.err
}

type fakeStore struct {
	inserted [][]domain.Opportunity
}

func (f *fakeStore) InsertBatch(_ context.Context, opps []domain.Opportunity) error {
	f.inserted = append(f.inserted, opps)
	return nil
}

func (f *fakeStore) ListRecent(context.Context, int) ([]domain.Opportunity, error) {
	return nil, nil
}

// crossedMarkets returns venue snapshots that normalize, threshold-align, and
// carry a Kalshi YES + Polymarket NO sum cheap enough to arb.
func crossedMarkets() ([]kalshi.Market, []polymarket.Market) {
	expiry := time.Now().UTC().Add(72 * time.Hour).Format(time.RFC3339)
	question := "Will CPI inflation be 3.0% or higher for August 2026?"

	ks := []kalshi.Market{{
		Ticker:    "CPI-26AUG-T3.0",
		Title:     question,
		YesAsk:    40, // cents
		NoAsk:     62,
		Volume:    5000,
		Liquidity: 100_000,
		CloseTime: expiry,
	}}
	ps := []polymarket.Market{{
		ID:            "0xabc",
		Question:      question,
		Outcomes:      `["Yes","No"]`,
		OutcomePrices: `["0.47","0.55"]`,
		VolumeTotal:   8000,
		Liquidity:     100_000,
		EndDate:       expiry,
	}}
	return ks, ps
}

func newTestScanner(ks KalshiSource, ps PolymarketSource) *Scanner {
	log := slog.Default()
	cfg := config.Defaults()
	return New(log, cfg, ks, ps,
		normalizer.New(log, cfg.Scanner),
		matcher.New(log, cfg.Matcher, nil, nil, nil),
		valuator.New(log, cfg.Engine),
		ranker.New(log, cfg.Engine),
	)
}

func TestRunCycleFindsOpportunity(t *testing.T) {
	km, pm := crossedMarkets()
	s := newTestScanner(&fakeKalshi{markets: km}, &fakePolymarket{markets: pm})

	result, err := s.RunCycle(context.Background())
	require.NoError(t, err)

	d := result.Diagnostics
	assert.NotEmpty(t, d.CycleID)
	assert.Equal(t, 1, d.FetchedA)
	assert.Equal(t, 1, d.FetchedB)
	assert.Equal(t, 1, d.NormalizedA)
	assert.Equal(t, 1, d.NormalizedB)
	assert.Equal(t, 1, d.Matched)
	assert.Equal(t, 1, d.MatchedBy[domain.MatchThresholdAligned])
	assert.Equal(t, 1, d.Valued)
	assert.Equal(t, 1, d.Passed)

	require.Len(t, result.Opportunities, 1)
	opp := result.Opportunities[0]
	assert.Equal(t, d.CycleID, opp.CycleID)
	assert.Equal(t, domain.VenueKalshi, opp.BuyVenue)
	assert.Greater(t, opp.GuaranteedProfitUSD, 0.0)
}

func TestRunCycleSurvivesVenueOutage(t *testing.T) {
	km, _ := crossedMarkets()
	s := newTestScanner(
		&fakeKalshi{markets: km},
		&fakePolymarket{err: errors.New("gateway timeout")},
	)

	result, err := s.RunCycle(context.Background())
	require.NoError(t, err)

	d := result.Diagnostics
	assert.Equal(t, 1, d.FetchedA)
	assert.Equal(t, 0, d.FetchedB)
	assert.Empty(t, d.FetchErrA)
	assert.Contains(t, d.FetchErrB, "gateway timeout")
	assert.Zero(t, d.Matched)
	assert.Empty(t, result.Opportunities)
}

func TestRunCycleFansOut(t *testing.T) {
	km, pm := crossedMarkets()
	s := newTestScanner(&fakeKalshi{markets: km}, &fakePolymarket{markets: pm})

	store := &fakeStore{}
	failing := &fakePublisher{err: errors.New("sink down")}
	working := &fakePublisher{}
	s.SetStore(store)
	s.AddPublisher(failing)
	s.AddPublisher(working)

	result, err := s.RunCycle(context.Background())
	require.NoError(t, err)

	// The store got the batch and the failing sink did not block the next one.
	require.Len(t, store.inserted, 1)
	assert.Len(t, store.inserted[0], 1)
	require.Len(t, working.results, 1)
	assert.Equal(t, result.Diagnostics.CycleID, working.results[0].Diagnostics.CycleID)
}

func TestRunCycleEmptySnapshots(t *testing.T) {
	s := newTestScanner(&fakeKalshi{}, &fakePolymarket{})

	result, err := s.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Diagnostics.FetchedA)
	assert.Zero(t, result.Diagnostics.FetchedB)
	assert.Empty(t, result.Opportunities)
}
