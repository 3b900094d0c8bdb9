package redis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/predmarkets/arbscan/internal/domain"
)

// profitRealertFactor: a repeat alert for the same pair goes out early when
// profit grew by at least this factor over the last alerted value.
const profitRealertFactor = 1.5

// DedupStore implements domain.DedupStore on Redis string keys with a TTL.
//
// Key schema:
//
//	alert:{kalshiID}:{polymarketID} - last alerted profit in USD
type DedupStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewDedupStore creates a DedupStore with the given alert suppression TTL.
func NewDedupStore(c *Client, ttl time.Duration) *DedupStore {
	return &DedupStore{rdb: c.Underlying(), ttl: ttl}
}

func alertKey(key domain.PairKey) string {
	return "alert:" + key.KalshiID + ":" + key.PolymarketID
}

// Seen reports whether this pair was alerted within the TTL window at a
// comparable profit, and records the new profit if an alert should go out.
func (d *DedupStore) Seen(ctx context.Context, key domain.PairKey, profitUSD float64) (bool, error) {
	k := alertKey(key)

	prev, err := d.rdb.Get(ctx, k).Result()
	switch {
	case errors.Is(err, redis.Nil):
		// Never alerted (or TTL expired): record and alert.
	case err != nil:
		return false, fmt.Errorf("redis: dedup get %s: %w", k, err)
	default:
		prevProfit, parseErr := strconv.ParseFloat(prev, 64)
		if parseErr == nil && profitUSD < prevProfit*profitRealertFactor {
			return true, nil
		}
		// Profit jumped enough to warrant a fresh alert.
	}

	val := strconv.FormatFloat(math.Max(profitUSD, 0), 'f', 2, 64)
	if err := d.rdb.Set(ctx, k, val, d.ttl).Err(); err != nil {
		return false, fmt.Errorf("redis: dedup set %s: %w", k, err)
	}
	return false, nil
}
