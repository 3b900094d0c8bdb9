// Package scanner coordinates one scan cycle: fetch both venues
// concurrently, normalize, match, value, rank, then fan the result out to
// the configured sinks. A venue outage degrades the cycle to zero contracts
// from that venue; only an inconsistent match set aborts a cycle.
package scanner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/predmarkets/arbscan/internal/config"
	"github.com/predmarkets/arbscan/internal/domain"
	"github.com/predmarkets/arbscan/internal/matcher"
	"github.com/predmarkets/arbscan/internal/normalizer"
	"github.com/predmarkets/arbscan/internal/platform/kalshi"
	"github.com/predmarkets/arbscan/internal/platform/polymarket"
	"github.com/predmarkets/arbscan/internal/ranker"
	"github.com/predmarkets/arbscan/internal/valuator"
)

// KalshiSource supplies the Kalshi market snapshot.
type KalshiSource interface {
	FetchAll(ctx context.Context, pageLimit, maxPages int) ([]kalshi.Market, error)
}

// PolymarketSource supplies the Polymarket market snapshot.
type PolymarketSource interface {
	FetchAll(ctx context.Context, pageLimit, maxPages int) ([]polymarket.Market, error)
}

// Scanner drives the cycle pipeline. Sinks are optional; a failing sink is
// logged and never fails the cycle.
type Scanner struct {
	log *slog.Logger

	// runMu serializes cycles so an API-triggered scan never overlaps the
	// interval loop.
	runMu sync.Mutex

	scanCfg   config.ScannerConfig
	kalshiCfg config.KalshiConfig
	polyCfg   config.PolymarketConfig

	kalshi KalshiSource
	poly   PolymarketSource

	normalizer *normalizer.Normalizer
	matcher    *matcher.Matcher
	valuator   *valuator.Valuator
	ranker     *ranker.Ranker

	store      domain.OpportunityStore
	publishers []domain.CyclePublisher
	archiver   domain.CycleArchiver
}

// New wires a Scanner from its pipeline stages.
func New(log *slog.Logger, cfg config.Config, ks KalshiSource, ps PolymarketSource,
	n *normalizer.Normalizer, m *matcher.Matcher, v *valuator.Valuator, r *ranker.Ranker) *Scanner {
	return &Scanner{
		log:        log.With("component", "scanner"),
		scanCfg:    cfg.Scanner,
		kalshiCfg:  cfg.Kalshi,
		polyCfg:    cfg.Polymarket,
		kalshi:     ks,
		poly:       ps,
		normalizer: n,
		matcher:    m,
		valuator:   v,
		ranker:     r,
	}
}

// SetStore attaches the optional opportunity history store.
func (s *Scanner) SetStore(store domain.OpportunityStore) { s.store = store }

// AddPublisher attaches a cycle fan-out sink (websocket hub, alerter, redis
// pub/sub). Publishers run in registration order.
func (s *Scanner) AddPublisher(p domain.CyclePublisher) {
	s.publishers = append(s.publishers, p)
}

// SetArchiver attaches the optional durable cycle archiver.
func (s *Scanner) SetArchiver(a domain.CycleArchiver) { s.archiver = a }

// RunCycle executes one complete scan cycle. The only error it returns is an
// inconsistent match set; every collaborator failure is absorbed into the
// diagnostics.
func (s *Scanner) RunCycle(ctx context.Context) (domain.CycleResult, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	started := time.Now().UTC()
	diag := domain.Diagnostics{
		CycleID:   uuid.NewString(),
		StartedAt: started,
	}
	log := s.log.With("cycle_id", diag.CycleID)
	log.Info("scan cycle starting")

	kalshiMarkets, polyMarkets := s.fetchSnapshots(ctx, log, &diag)

	resK := s.normalizer.NormalizeKalshi(kalshiMarkets, started)
	resP := s.normalizer.NormalizePolymarket(polyMarkets, started)
	diag.NormalizedA = len(resK.Contracts)
	diag.NormalizedB = len(resP.Contracts)
	diag.RejectedA = resK.Rejected
	diag.RejectedB = resP.Rejected

	pairs, mstats, err := s.matcher.Match(ctx, resK.Contracts, resP.Contracts)
	if err != nil {
		log.Error("discarding cycle", "error", err)
		return domain.CycleResult{}, err
	}
	diag.Matched = len(pairs)
	diag.MatchedBy = mstats.MatchedBy
	diag.OracleDown = mstats.OracleDown

	var valued []domain.Opportunity
	for _, pair := range pairs {
		if opp, ok := s.valuator.Value(pair, diag.CycleID, started); ok {
			valued = append(valued, opp)
		}
	}
	diag.Valued = len(valued)

	ranked := s.ranker.Rank(valued)
	diag.Passed = len(ranked)
	diag.Elapsed = time.Since(started)

	result := domain.CycleResult{Opportunities: ranked, Diagnostics: diag}
	s.fanOut(ctx, log, result)

	log.Info("scan cycle complete",
		"fetched_kalshi", diag.FetchedA,
		"fetched_polymarket", diag.FetchedB,
		"matched", diag.Matched,
		"valued", diag.Valued,
		"passed", diag.Passed,
		"elapsed", diag.Elapsed)
	return result, nil
}

// fetchSnapshots pulls both venues concurrently under the fetch timeout. A
// venue error zeroes that venue's snapshot and flags the diagnostics.
func (s *Scanner) fetchSnapshots(ctx context.Context, log *slog.Logger, diag *domain.Diagnostics) ([]kalshi.Market, []polymarket.Market) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.scanCfg.FetchTimeout.Duration)
	defer cancel()

	var (
		kalshiMarkets []kalshi.Market
		polyMarkets   []polymarket.Market
	)

	g, gctx := errgroup.WithContext(fetchCtx)
	g.Go(func() error {
		markets, err := s.kalshi.FetchAll(gctx, s.kalshiCfg.PageLimit, s.kalshiCfg.MaxPages)
		if err != nil {
			log.Warn("kalshi fetch failed, scanning without it", "error", err)
			diag.FetchErrA = err.Error()
			return nil
		}
		kalshiMarkets = markets
		return nil
	})
	g.Go(func() error {
		markets, err := s.poly.FetchAll(gctx, s.polyCfg.PageLimit, s.polyCfg.MaxPages)
		if err != nil {
			log.Warn("polymarket fetch failed, scanning without it", "error", err)
			diag.FetchErrB = err.Error()
			return nil
		}
		polyMarkets = markets
		return nil
	})
	_ = g.Wait() // fetch errors are absorbed above

	diag.FetchedA = len(kalshiMarkets)
	diag.FetchedB = len(polyMarkets)
	return kalshiMarkets, polyMarkets
}

// fanOut hands the completed cycle to every attached sink. Sink failures are
// warnings; the cycle result stands regardless.
func (s *Scanner) fanOut(ctx context.Context, log *slog.Logger, result domain.CycleResult) {
	if s.store != nil && len(result.Opportunities) > 0 {
		if err := s.store.InsertBatch(ctx, result.Opportunities); err != nil {
			log.Warn("opportunity store insert failed", "error", err)
		}
	}
	for _, p := range s.publishers {
		if err := p.PublishCycle(ctx, result); err != nil {
			log.Warn("cycle publish failed", "error", err)
		}
	}
	if s.archiver != nil {
		if err := s.archiver.ArchiveCycle(ctx, result); err != nil {
			log.Warn("cycle archive failed", "error", err)
		}
	}
}

// Run scans on the configured interval until the context is cancelled. One
// cycle runs at a time; a cycle that overruns the interval delays the next
// tick rather than overlapping it.
func (s *Scanner) Run(ctx context.Context) error {
	// First cycle fires immediately.
	if _, err := s.RunCycle(ctx); err != nil {
		s.log.Error("cycle failed", "error", err)
	}

	ticker := time.NewTicker(s.scanCfg.Interval.Duration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.RunCycle(ctx); err != nil {
				s.log.Error("cycle failed", "error", err)
			}
		}
	}
}
