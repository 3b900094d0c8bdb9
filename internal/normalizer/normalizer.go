// Package normalizer converts venue-specific market payloads into the
// engine's canonical Contract shape, rejecting records that cannot be priced
// or that fall outside the scan window. Rejections are absorbed and counted,
// never fatal.
package normalizer

import (
	"log/slog"
	"time"

	"github.com/predmarkets/arbscan/internal/config"
	"github.com/predmarkets/arbscan/internal/domain"
	"github.com/predmarkets/arbscan/internal/platform/kalshi"
	"github.com/predmarkets/arbscan/internal/platform/polymarket"
)

// Rejection reasons, reported per cycle in Diagnostics.
const (
	RejectMissingPrice    = "missing_price"
	RejectPriceOutOfRange = "price_out_of_range"
	RejectNotBinary       = "not_binary"
	RejectBadExpiry       = "bad_expiry"
	RejectExpired         = "expired"
	RejectExpiryTooFar    = "expiry_too_far"
	RejectBelowVolume     = "below_volume_floor"
)

// Result is the outcome of normalizing one venue's snapshot: the accepted
// contracts plus rejection counts keyed by reason.
type Result struct {
	Contracts []domain.Contract
	Rejected  map[string]int
}

func (r *Result) reject(reason string) {
	if r.Rejected == nil {
		r.Rejected = make(map[string]int)
	}
	r.Rejected[reason]++
}

// Normalizer applies the venue-agnostic admission rules: both sides priced in
// (0,1), expiry inside the scan window, volume above the floor.
type Normalizer struct {
	log             *slog.Logger
	minVolumeUSD    float64
	maxDaysToExpiry int
}

// New creates a Normalizer from the scanner configuration.
func New(log *slog.Logger, cfg config.ScannerConfig) *Normalizer {
	return &Normalizer{
		log:             log.With("component", "normalizer"),
		minVolumeUSD:    cfg.MinVolumeUSD,
		maxDaysToExpiry: cfg.MaxDaysToExpiry,
	}
}

// NormalizeKalshi maps a Kalshi snapshot into canonical contracts. Kalshi
// quotes in cents; prices are converted to decimal probabilities here so
// nothing downstream ever sees a cent value.
func (n *Normalizer) NormalizeKalshi(markets []kalshi.Market, now time.Time) Result {
	var res Result
	for _, m := range markets {
		yes := m.YesAskProb()
		no := m.NoAskProb()

		question := m.Title
		if m.Subtitle != "" {
			question = m.Title + " " + m.Subtitle
		}

		expiry, ok := parseExpiry(m.CloseTime, m.ExpirationTime)
		if !ok {
			res.reject(RejectBadExpiry)
			continue
		}

		c := domain.Contract{
			Venue:        domain.VenueKalshi,
			ExternalID:   m.Ticker,
			QuestionText: question,
			Expiry:       expiry,
			YesPrice:     yes,
			NoPrice:      no,
			Volume:       m.Volume,
			LiquidityUSD: m.Liquidity,
		}
		n.admit(&res, c, now)
	}
	n.log.Debug("normalized kalshi snapshot",
		"in", len(markets), "out", len(res.Contracts), "rejected", len(markets)-len(res.Contracts))
	return res
}

// NormalizePolymarket maps a Gamma snapshot into canonical contracts. Only
// plain Yes/No binaries are admitted; multi-outcome markets are counted as
// not_binary.
func (n *Normalizer) NormalizePolymarket(markets []polymarket.Market, now time.Time) Result {
	var res Result
	for _, m := range markets {
		yes, no, ok := m.YesNoPrices()
		if !ok {
			res.reject(RejectNotBinary)
			continue
		}

		expiry, ok := parseExpiry(m.EndDate)
		if !ok {
			res.reject(RejectBadExpiry)
			continue
		}

		c := domain.Contract{
			Venue:        domain.VenuePolymarket,
			ExternalID:   m.ID,
			QuestionText: m.Question,
			Expiry:       expiry,
			YesPrice:     yes,
			NoPrice:      no,
			Volume:       float64(m.VolumeTotal),
			LiquidityUSD: float64(m.Liquidity),
		}
		n.admit(&res, c, now)
	}
	n.log.Debug("normalized polymarket snapshot",
		"in", len(markets), "out", len(res.Contracts), "rejected", len(markets)-len(res.Contracts))
	return res
}

// admit runs the shared admission rules, annotates the contract with its
// category and threshold, and appends it to the result. A contract with only
// one priced side is rejected whole: half a price is not tradable.
func (n *Normalizer) admit(res *Result, c domain.Contract, now time.Time) {
	if c.YesPrice == 0 || c.NoPrice == 0 {
		res.reject(RejectMissingPrice)
		return
	}
	if c.YesPrice < 0 || c.YesPrice > 1 || c.NoPrice < 0 || c.NoPrice > 1 {
		res.reject(RejectPriceOutOfRange)
		return
	}
	if !c.Expiry.After(now) {
		res.reject(RejectExpired)
		return
	}
	if n.maxDaysToExpiry > 0 {
		horizon := now.Add(time.Duration(n.maxDaysToExpiry) * 24 * time.Hour)
		if c.Expiry.After(horizon) {
			res.reject(RejectExpiryTooFar)
			return
		}
	}
	if c.Volume < n.minVolumeUSD {
		res.reject(RejectBelowVolume)
		return
	}

	c.Category = Categorize(c.QuestionText)
	if t, ok := ExtractThreshold(c.QuestionText); ok {
		c.Threshold = &t
	}

	res.Contracts = append(res.Contracts, c)
}

// parseExpiry returns the first candidate timestamp that parses as RFC3339.
func parseExpiry(candidates ...string) (time.Time, bool) {
	for _, s := range candidates {
		if s == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
