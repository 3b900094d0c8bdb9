package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/predmarkets/arbscan/internal/domain"
)

// OpportunityStore implements domain.OpportunityStore using PostgreSQL.
// History is append-only; nothing in the engine ever updates a row.
type OpportunityStore struct {
	pool *pgxpool.Pool
}

// NewOpportunityStore creates an OpportunityStore backed by the given pool.
func NewOpportunityStore(pool *pgxpool.Pool) *OpportunityStore {
	return &OpportunityStore{pool: pool}
}

// InsertBatch stores one cycle's opportunities in a single batch round trip.
func (s *OpportunityStore) InsertBatch(ctx context.Context, opps []domain.Opportunity) error {
	if len(opps) == 0 {
		return nil
	}

	const query = `
		INSERT INTO opportunity_history (
			id, cycle_id, kalshi_id, polymarket_id,
			match_method, match_confidence,
			buy_venue, buy_side, sell_venue, sell_side,
			buy_execution_price, sell_execution_price, fees_usd,
			trade_size_usd, guaranteed_profit_usd, profit_percentage, profit_per_hour,
			liquidity_score, execution_certainty, time_to_expiry_hours,
			recommendation, detected_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6,
			$7, $8, $9, $10,
			$11, $12, $13,
			$14, $15, $16, $17,
			$18, $19, $20,
			$21, $22
		)`

	batch := &pgx.Batch{}
	for _, o := range opps {
		batch.Queue(query,
			o.ID, o.CycleID, o.Pair.Kalshi.ExternalID, o.Pair.Polymarket.ExternalID,
			o.Pair.Method, o.Pair.Confidence,
			o.BuyVenue, o.BuySide, o.SellVenue, o.SellSide,
			o.BuyExecutionPrice, o.SellExecutionPrice, o.FeesUSD,
			o.TradeSizeUSD, o.GuaranteedProfitUSD, o.ProfitPercentage, o.ProfitPerHour,
			o.LiquidityScore, o.ExecutionCertainty, o.TimeToExpiryHours,
			o.Recommendation, o.DetectedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range opps {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("postgres: insert opportunity batch: %w", err)
		}
	}
	return nil
}

// ListRecent returns the most recent rows, newest first. The Pair is only
// partially rehydrated: history rows carry identifiers and economics, not
// full contract snapshots.
func (s *OpportunityStore) ListRecent(ctx context.Context, limit int) ([]domain.Opportunity, error) {
	const query = `
		SELECT
			id, cycle_id, kalshi_id, polymarket_id,
			match_method, match_confidence,
			buy_venue, buy_side, sell_venue, sell_side,
			buy_execution_price, sell_execution_price, fees_usd,
			trade_size_usd, guaranteed_profit_usd, profit_percentage, profit_per_hour,
			liquidity_score, execution_certainty, time_to_expiry_hours,
			recommendation, detected_at
		FROM opportunity_history
		ORDER BY detected_at DESC
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent opportunities: %w", err)
	}
	defer rows.Close()

	var out []domain.Opportunity
	for rows.Next() {
		var o domain.Opportunity
		err := rows.Scan(
			&o.ID, &o.CycleID, &o.Pair.Kalshi.ExternalID, &o.Pair.Polymarket.ExternalID,
			&o.Pair.Method, &o.Pair.Confidence,
			&o.BuyVenue, &o.BuySide, &o.SellVenue, &o.SellSide,
			&o.BuyExecutionPrice, &o.SellExecutionPrice, &o.FeesUSD,
			&o.TradeSizeUSD, &o.GuaranteedProfitUSD, &o.ProfitPercentage, &o.ProfitPerHour,
			&o.LiquidityScore, &o.ExecutionCertainty, &o.TimeToExpiryHours,
			&o.Recommendation, &o.DetectedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan opportunity row: %w", err)
		}
		o.Pair.Kalshi.Venue = domain.VenueKalshi
		o.Pair.Polymarket.Venue = domain.VenuePolymarket
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate opportunity rows: %w", err)
	}
	return out, nil
}
