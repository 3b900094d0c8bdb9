// Package matcher pairs contracts across venues. Three methods run in
// priority order per candidate pair: the verified pair table (EXACT_KEY),
// category + stripped-question similarity + threshold proximity
// (THRESHOLD_ALIGNED), and the injected semantic oracle (SEMANTIC). Within a
// cycle each contract joins at most one pair.
package matcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/predmarkets/arbscan/internal/config"
	"github.com/predmarkets/arbscan/internal/domain"
)

// oracleGate is the cheap similarity floor a candidate must clear before the
// semantic oracle is consulted. Keeps oracle calls off the quadratic path.
const oracleGate = 0.35

// CachedMatch is a previously derived association carried between cycles.
// Only the method and confidence are cached; prices are always fresh.
type CachedMatch struct {
	Key        domain.PairKey     `json:"key"`
	Method     domain.MatchMethod `json:"method"`
	Confidence float64            `json:"confidence"`
}

// PairCache is the advisory cross-cycle cache. It is a hint only: a hit
// exempts a known association from the cheap oracle gate so the oracle
// re-scores it even when the stripped questions have drifted apart, but every
// admission is decided on current-cycle evidence. Discarding the cache, or a
// failing cache, is never an error for the cycle.
type PairCache interface {
	Snapshot(ctx context.Context) (map[domain.PairKey]CachedMatch, error)
	Put(ctx context.Context, m CachedMatch) error
}

// Stats summarizes one matching pass for cycle diagnostics.
type Stats struct {
	MatchedBy  map[domain.MatchMethod]int
	OracleDown bool
}

// Matcher resolves cross-venue pairs. PairStore, Comparator, and PairCache
// are all optional; absent collaborators simply disable their method.
type Matcher struct {
	log    *slog.Logger
	cfg    config.MatcherConfig
	pairs  domain.PairStore
	oracle domain.Comparator
	cache  PairCache
}

// New creates a Matcher. pairs, oracle, and cache may each be nil.
func New(log *slog.Logger, cfg config.MatcherConfig, pairs domain.PairStore, oracle domain.Comparator, cache PairCache) *Matcher {
	return &Matcher{
		log:    log.With("component", "matcher"),
		cfg:    cfg,
		pairs:  pairs,
		oracle: oracle,
		cache:  cache,
	}
}

// candidate is one scored (kalshi, polymarket) pairing awaiting assignment.
type candidate struct {
	pair domain.MatchedPair
}

// Match pairs the two normalized snapshots. The returned pairs satisfy
// injectivity: no contract appears twice. A violation of that invariant
// discards the whole match set with ErrInconsistentMatch.
func (m *Matcher) Match(ctx context.Context, kalshiSide, polySide []domain.Contract) ([]domain.MatchedPair, Stats, error) {
	stats := Stats{MatchedBy: make(map[domain.MatchMethod]int)}

	verified := m.loadVerified(ctx)
	cached := m.loadCache(ctx)

	// Partition by category; matching never crosses a category boundary.
	kalshiByCat := partition(kalshiSide)
	polyByCat := partition(polySide)

	var candidates []candidate
	for cat, ks := range kalshiByCat {
		ps, ok := polyByCat[cat]
		if !ok {
			continue
		}
		for _, k := range ks {
			for _, p := range ps {
				c, ok := m.score(ctx, k, p, verified, cached, &stats)
				if ok {
					candidates = append(candidates, c)
				}
			}
		}
	}

	pairs := assign(candidates)

	if err := checkInjective(pairs); err != nil {
		return nil, stats, err
	}

	for _, p := range pairs {
		stats.MatchedBy[p.Method]++
	}
	m.writeCache(ctx, pairs)

	m.log.Debug("matching complete",
		"candidates", len(candidates),
		"pairs", len(pairs),
		"oracle_down", stats.OracleDown)
	return pairs, stats, nil
}

// score runs the match methods in priority order for one candidate pairing.
func (m *Matcher) score(ctx context.Context, k, p domain.Contract, verified map[domain.PairKey]domain.VerifiedPair, cached map[domain.PairKey]CachedMatch, stats *Stats) (candidate, bool) {
	key := domain.PairKey{KalshiID: k.ExternalID, PolymarketID: p.ExternalID}

	if vp, ok := verified[key]; ok {
		return candidate{pair: domain.MatchedPair{
			Kalshi:     k,
			Polymarket: p,
			Confidence: 1.0,
			Method:     domain.MatchExactKey,
			Evidence:   domain.MatchEvidence{VerifiedBy: vp.VerifiedBy},
		}}, true
	}

	baseSim := Similarity(StripBase(k.QuestionText), StripBase(p.QuestionText))

	if pair, ok := m.thresholdAligned(k, p, baseSim); ok {
		return candidate{pair: pair}, true
	}

	// A cache hit routes the candidate past the cheap oracle gate; it never
	// admits a pair by itself. Admission below still requires the oracle to
	// confirm with current-cycle evidence.
	_, cacheHit := cached[key]

	if m.oracle != nil && !stats.OracleDown && (baseSim >= oracleGate || cacheHit) {
		conf, err := m.oracle.Compare(ctx, k, p)
		if err != nil {
			// One failure flags the oracle down for the rest of the cycle;
			// the cycle completes on the deterministic methods.
			stats.OracleDown = true
			m.log.Warn("semantic oracle unavailable, degrading",
				"error", err)
		} else if conf >= m.cfg.MinSemanticConfidence {
			return candidate{pair: domain.MatchedPair{
				Kalshi:     k,
				Polymarket: p,
				Confidence: conf,
				Method:     domain.MatchSemantic,
				Evidence:   domain.MatchEvidence{OracleConfidence: conf, BaseSimilarity: baseSim},
			}}, true
		}
	}

	return candidate{}, false
}

// thresholdAligned applies the deterministic numeric method: both contracts
// carry a threshold, the normalized residual is inside tolerance, and the
// stripped questions are similar enough. Confidence blends similarity with
// threshold proximity and is capped at 0.95: only a human verification earns
// 1.0.
func (m *Matcher) thresholdAligned(k, p domain.Contract, baseSim float64) (domain.MatchedPair, bool) {
	if k.Threshold == nil || p.Threshold == nil {
		return domain.MatchedPair{}, false
	}
	if baseSim < m.cfg.MinBaseSimilarity {
		return domain.MatchedPair{}, false
	}

	residual := math.Abs(k.Threshold.Normalized() - p.Threshold.Normalized())
	if residual > m.cfg.ThresholdTolerance {
		return domain.MatchedPair{}, false
	}

	proximity := 1 - residual/m.cfg.ThresholdTolerance
	conf := math.Min(0.95, 0.6*baseSim+0.35*proximity+0.1)

	return domain.MatchedPair{
		Kalshi:     k,
		Polymarket: p,
		Confidence: conf,
		Method:     domain.MatchThresholdAligned,
		Evidence: domain.MatchEvidence{
			ThresholdResidual: residual,
			BaseSimilarity:    baseSim,
		},
	}, true
}

// assign greedily picks the highest-confidence candidates such that every
// contract joins at most one pair. Ties break on combined liquidity, then
// lexicographically on (kalshi, polymarket) IDs so a cycle is reproducible
// from the same snapshot.
func assign(candidates []candidate) []domain.MatchedPair {
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i].pair, candidates[j].pair
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if al, bl := a.CombinedLiquidity(), b.CombinedLiquidity(); al != bl {
			return al > bl
		}
		if a.Kalshi.ExternalID != b.Kalshi.ExternalID {
			return a.Kalshi.ExternalID < b.Kalshi.ExternalID
		}
		return a.Polymarket.ExternalID < b.Polymarket.ExternalID
	})

	usedK := map[string]bool{}
	usedP := map[string]bool{}
	var pairs []domain.MatchedPair
	for _, c := range candidates {
		kid, pid := c.pair.Kalshi.ExternalID, c.pair.Polymarket.ExternalID
		if usedK[kid] || usedP[pid] {
			continue
		}
		usedK[kid] = true
		usedP[pid] = true
		pairs = append(pairs, c.pair)
	}
	return pairs
}

// checkInjective verifies no contract appears in two pairs.
func checkInjective(pairs []domain.MatchedPair) error {
	seenK := map[string]bool{}
	seenP := map[string]bool{}
	for _, p := range pairs {
		if seenK[p.Kalshi.ExternalID] {
			return fmt.Errorf("matcher: kalshi contract %s matched twice: %w", p.Kalshi.ExternalID, domain.ErrInconsistentMatch)
		}
		if seenP[p.Polymarket.ExternalID] {
			return fmt.Errorf("matcher: polymarket contract %s matched twice: %w", p.Polymarket.ExternalID, domain.ErrInconsistentMatch)
		}
		seenK[p.Kalshi.ExternalID] = true
		seenP[p.Polymarket.ExternalID] = true
	}
	return nil
}

// loadVerified reads the verified pair table. A failing store disables the
// exact-key method for this cycle only.
func (m *Matcher) loadVerified(ctx context.Context) map[domain.PairKey]domain.VerifiedPair {
	out := map[domain.PairKey]domain.VerifiedPair{}
	if m.pairs == nil {
		return out
	}
	list, err := m.pairs.ListActive(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			m.log.Warn("verified pair table unavailable", "error", err)
		}
		return out
	}
	for _, vp := range list {
		out[vp.Key] = vp
	}
	return out
}

// loadCache reads the advisory pair cache; failures are absorbed.
func (m *Matcher) loadCache(ctx context.Context) map[domain.PairKey]CachedMatch {
	if m.cache == nil {
		return nil
	}
	snap, err := m.cache.Snapshot(ctx)
	if err != nil {
		m.log.Warn("pair cache unavailable", "error", err)
		return nil
	}
	return snap
}

// writeCache persists assignments worth carrying forward: deterministic
// methods at or above the cache floor. Semantic matches are never cached; the
// oracle re-scores them every cycle.
func (m *Matcher) writeCache(ctx context.Context, pairs []domain.MatchedPair) {
	if m.cache == nil {
		return
	}
	for _, p := range pairs {
		if p.Method == domain.MatchSemantic || p.Confidence < m.cfg.CacheFloor {
			continue
		}
		cm := CachedMatch{Key: p.Key(), Method: p.Method, Confidence: p.Confidence}
		if err := m.cache.Put(ctx, cm); err != nil {
			m.log.Warn("pair cache write failed", "error", err)
			return
		}
	}
}

// partition groups contracts by category.
func partition(contracts []domain.Contract) map[domain.Category][]domain.Contract {
	out := map[domain.Category][]domain.Contract{}
	for _, c := range contracts {
		out[c.Category] = append(out[c.Category], c)
	}
	return out
}
