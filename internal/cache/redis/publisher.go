package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/predmarkets/arbscan/internal/domain"
)

// cycleChannel is the pub/sub channel completed cycles are announced on.
const cycleChannel = "cycles"

// Publisher implements domain.CyclePublisher on Redis pub/sub so external
// consumers can follow scan results without touching the HTTP API.
type Publisher struct {
	rdb *redis.Client
}

// NewPublisher creates a Publisher backed by the given Client.
func NewPublisher(c *Client) *Publisher {
	return &Publisher{rdb: c.Underlying()}
}

// PublishCycle announces a completed cycle on the cycles channel.
func (p *Publisher) PublishCycle(ctx context.Context, result domain.CycleResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("redis: marshal cycle %s: %w", result.Diagnostics.CycleID, err)
	}
	if err := p.rdb.Publish(ctx, cycleChannel, data).Err(); err != nil {
		return fmt.Errorf("redis: publish cycle %s: %w", result.Diagnostics.CycleID, err)
	}
	return nil
}
