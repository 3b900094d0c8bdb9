package domain

// MatchMethod identifies how a cross-venue pair was resolved. The methods are
// tried in this order; the first that succeeds for a pair wins.
type MatchMethod string

const (
	// MatchExactKey resolved through the verified pair table. Confidence 1.0.
	MatchExactKey MatchMethod = "EXACT_KEY"
	// MatchThresholdAligned resolved through category + base-question
	// similarity + numeric threshold proximity. Confidence capped at 0.95.
	MatchThresholdAligned MatchMethod = "THRESHOLD_ALIGNED"
	// MatchSemantic resolved through the injected text-similarity oracle.
	MatchSemantic MatchMethod = "SEMANTIC"
)

// MatchEvidence carries method-specific provenance so a confidence figure can
// be audited after the fact.
type MatchEvidence struct {
	// ThresholdResidual is the absolute difference between the two normalized
	// thresholds (THRESHOLD_ALIGNED only).
	ThresholdResidual float64 `json:"threshold_residual,omitempty"`
	// BaseSimilarity is the text similarity of the questions after stripping
	// numeric and date tokens (THRESHOLD_ALIGNED only).
	BaseSimilarity float64 `json:"base_similarity,omitempty"`
	// OracleConfidence is the raw score returned by the semantic comparator
	// (SEMANTIC only).
	OracleConfidence float64 `json:"oracle_confidence,omitempty"`
	// VerifiedBy names who approved the pairing (EXACT_KEY only).
	VerifiedBy string `json:"verified_by,omitempty"`
}

// MatchedPair is two contracts, one per venue, believed to represent the same
// real-world proposition. Within a scan cycle each contract appears in at
// most one pair.
type MatchedPair struct {
	Kalshi     Contract      `json:"kalshi"`
	Polymarket Contract      `json:"polymarket"`
	Confidence float64       `json:"confidence"`
	Method     MatchMethod   `json:"method"`
	Evidence   MatchEvidence `json:"evidence"`
}

// CombinedLiquidity is the tie-break metric for equal-confidence pairs.
func (p MatchedPair) CombinedLiquidity() float64 {
	return p.Kalshi.LiquidityUSD + p.Polymarket.LiquidityUSD
}

// PairKey is the stable (kalshi, polymarket) identity of the association,
// used for alert dedup and the advisory pair cache.
type PairKey struct {
	KalshiID     string `json:"kalshi_id"`
	PolymarketID string `json:"polymarket_id"`
}

// Key returns the pair key for a matched pair.
func (p MatchedPair) Key() PairKey {
	return PairKey{KalshiID: p.Kalshi.ExternalID, PolymarketID: p.Polymarket.ExternalID}
}
