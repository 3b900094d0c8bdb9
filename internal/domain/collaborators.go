package domain

import (
	"context"
	"time"
)

// Comparator is the semantic-match oracle: given two contracts it returns a
// confidence in [0,1] that they describe the same proposition. It is an
// injected capability; when nil or failing, the matcher degrades to the
// exact-key and threshold-aligned methods.
type Comparator interface {
	Compare(ctx context.Context, a, b Contract) (float64, error)
}

// VerifiedPair is a human- or operator-approved cross-venue association used
// by the exact-key match method.
type VerifiedPair struct {
	Key        PairKey
	VerifiedBy string
	VerifiedAt time.Time
	Active     bool
}

// PairStore is the persistent table of verified pair associations.
type PairStore interface {
	ListActive(ctx context.Context) ([]VerifiedPair, error)
	Insert(ctx context.Context, pair VerifiedPair) error
	Deactivate(ctx context.Context, key PairKey) error
}

// OpportunityStore persists cycle outputs for history collaborators. The
// engine itself never reads history back into a cycle.
type OpportunityStore interface {
	InsertBatch(ctx context.Context, opps []Opportunity) error
	ListRecent(ctx context.Context, limit int) ([]Opportunity, error)
}

// DedupStore is the keyed store the alerting collaborator uses to suppress
// repeat alerts for an unchanged opportunity. Seen reports whether the pair
// was alerted within the store's TTL window and records it if not.
type DedupStore interface {
	Seen(ctx context.Context, key PairKey, profitUSD float64) (bool, error)
}

// CyclePublisher fans a completed cycle out to streaming consumers.
type CyclePublisher interface {
	PublishCycle(ctx context.Context, result CycleResult) error
}

// CycleArchiver stores a durable snapshot of a completed cycle.
type CycleArchiver interface {
	ArchiveCycle(ctx context.Context, result CycleResult) error
}
