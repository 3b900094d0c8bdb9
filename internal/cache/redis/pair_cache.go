package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/predmarkets/arbscan/internal/domain"
	"github.com/predmarkets/arbscan/internal/matcher"
)

const (
	pairCacheKey = "pairs:advisory"
	pairCacheTTL = 24 * time.Hour
)

// PairCache implements matcher.PairCache on a single Redis hash, one field
// per pair, JSON-serialized. The whole hash expires together; a stale
// association older than a day is not worth carrying.
//
// Key schema:
//
//	pairs:advisory - hash, field "{kalshiID}|{polymarketID}" -> CachedMatch JSON
type PairCache struct {
	rdb *redis.Client
}

// NewPairCache creates a PairCache backed by the given Client.
func NewPairCache(c *Client) *PairCache {
	return &PairCache{rdb: c.Underlying()}
}

func pairField(key domain.PairKey) string {
	return key.KalshiID + "|" + key.PolymarketID
}

// Snapshot loads the entire advisory cache.
func (p *PairCache) Snapshot(ctx context.Context) (map[domain.PairKey]matcher.CachedMatch, error) {
	fields, err := p.rdb.HGetAll(ctx, pairCacheKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: pair cache snapshot: %w", err)
	}

	out := make(map[domain.PairKey]matcher.CachedMatch, len(fields))
	for _, raw := range fields {
		var cm matcher.CachedMatch
		if err := json.Unmarshal([]byte(raw), &cm); err != nil {
			// A corrupt field is dropped, not fatal.
			continue
		}
		out[cm.Key] = cm
	}
	return out, nil
}

// Put stores one association and refreshes the hash TTL.
func (p *PairCache) Put(ctx context.Context, m matcher.CachedMatch) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("redis: marshal cached match: %w", err)
	}

	pipe := p.rdb.TxPipeline()
	pipe.HSet(ctx, pairCacheKey, pairField(m.Key), data)
	pipe.Expire(ctx, pairCacheKey, pairCacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: pair cache put: %w", err)
	}
	return nil
}
