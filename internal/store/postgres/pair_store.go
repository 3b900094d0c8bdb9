package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/predmarkets/arbscan/internal/domain"
)

// PairStore implements domain.PairStore using PostgreSQL. Rows are the
// operator-approved associations behind the exact-key match method.
type PairStore struct {
	pool *pgxpool.Pool
}

// NewPairStore creates a PairStore backed by the given pool.
func NewPairStore(pool *pgxpool.Pool) *PairStore {
	return &PairStore{pool: pool}
}

// ListActive returns every active verified pair.
func (s *PairStore) ListActive(ctx context.Context) ([]domain.VerifiedPair, error) {
	const query = `
		SELECT kalshi_id, polymarket_id, verified_by, verified_at, active
		FROM verified_pairs
		WHERE active`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: list verified pairs: %w", err)
	}
	defer rows.Close()

	var out []domain.VerifiedPair
	for rows.Next() {
		var vp domain.VerifiedPair
		if err := rows.Scan(&vp.Key.KalshiID, &vp.Key.PolymarketID, &vp.VerifiedBy, &vp.VerifiedAt, &vp.Active); err != nil {
			return nil, fmt.Errorf("postgres: scan verified pair: %w", err)
		}
		out = append(out, vp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate verified pairs: %w", err)
	}
	return out, nil
}

// Insert adds a verified pair; re-verifying an existing association
// reactivates it.
func (s *PairStore) Insert(ctx context.Context, pair domain.VerifiedPair) error {
	const query = `
		INSERT INTO verified_pairs (kalshi_id, polymarket_id, verified_by, verified_at, active)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (kalshi_id, polymarket_id) DO UPDATE SET
			verified_by = EXCLUDED.verified_by,
			verified_at = EXCLUDED.verified_at,
			active      = TRUE`

	_, err := s.pool.Exec(ctx, query, pair.Key.KalshiID, pair.Key.PolymarketID, pair.VerifiedBy, pair.VerifiedAt)
	if err != nil {
		return fmt.Errorf("postgres: insert verified pair %s/%s: %w", pair.Key.KalshiID, pair.Key.PolymarketID, err)
	}
	return nil
}

// Deactivate retires a verified pair without losing its audit trail.
func (s *PairStore) Deactivate(ctx context.Context, key domain.PairKey) error {
	const query = `
		UPDATE verified_pairs SET active = FALSE
		WHERE kalshi_id = $1 AND polymarket_id = $2`

	tag, err := s.pool.Exec(ctx, query, key.KalshiID, key.PolymarketID)
	if err != nil {
		return fmt.Errorf("postgres: deactivate verified pair %s/%s: %w", key.KalshiID, key.PolymarketID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: deactivate verified pair %s/%s: %w", key.KalshiID, key.PolymarketID, domain.ErrNotFound)
	}
	return nil
}
