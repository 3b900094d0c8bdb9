package domain

import "time"

// Recommendation is the action policy attached to an opportunity.
type Recommendation string

const (
	RecommendExecute Recommendation = "EXECUTE_IMMEDIATELY"
	RecommendMonitor Recommendation = "MONITOR"
	RecommendSkip    Recommendation = "SKIP"
)

// Opportunity is a valued, actionable arbitrage candidate derived from a
// MatchedPair. Opportunities are created fresh each scan cycle and never
// mutated; the next cycle supersedes them.
type Opportunity struct {
	ID         string      `json:"id"`
	CycleID    string      `json:"cycle_id"`
	Pair       MatchedPair `json:"pair"`
	DetectedAt time.Time   `json:"detected_at"`

	BuyVenue  Venue `json:"buy_venue"`
	BuySide   Side  `json:"buy_side"`
	SellVenue Venue `json:"sell_venue"`
	SellSide  Side  `json:"sell_side"`

	// Execution prices are post-slippage; the raw quotes live in the pair.
	BuyExecutionPrice  float64 `json:"buy_execution_price"`
	SellExecutionPrice float64 `json:"sell_execution_price"`
	BuySlippagePct     float64 `json:"buy_slippage_pct"`
	SellSlippagePct    float64 `json:"sell_slippage_pct"`
	FeesUSD            float64 `json:"fees_usd"`

	TradeSizeUSD        float64 `json:"trade_size_usd"`
	GuaranteedProfitUSD float64 `json:"guaranteed_profit_usd"`
	ProfitPercentage    float64 `json:"profit_percentage"`
	ProfitPerHour       float64 `json:"profit_per_hour"`

	LiquidityScore     float64 `json:"liquidity_score"`     // 0-100
	ExecutionCertainty float64 `json:"execution_certainty"` // 0-100
	TimeToExpiryHours  float64 `json:"time_to_expiry_hours"`

	Recommendation Recommendation `json:"recommendation"`
}

// DedupKey identifies the logical pair across cycles so downstream alerting
// can avoid re-alerting an unchanged opportunity.
func (o Opportunity) DedupKey() PairKey {
	return o.Pair.Key()
}

// Diagnostics are the per-cycle stage counters exposed for observability.
type Diagnostics struct {
	CycleID     string              `json:"cycle_id"`
	StartedAt   time.Time           `json:"started_at"`
	Elapsed     time.Duration       `json:"elapsed"`
	FetchedA    int                 `json:"fetched_kalshi"`
	FetchedB    int                 `json:"fetched_polymarket"`
	FetchErrA   string              `json:"fetch_error_kalshi,omitempty"`
	FetchErrB   string              `json:"fetch_error_polymarket,omitempty"`
	NormalizedA int                 `json:"normalized_kalshi"`
	NormalizedB int                 `json:"normalized_polymarket"`
	RejectedA   map[string]int      `json:"rejected_kalshi,omitempty"`
	RejectedB   map[string]int      `json:"rejected_polymarket,omitempty"`
	Matched     int                 `json:"matched"`
	MatchedBy   map[MatchMethod]int `json:"matched_by,omitempty"`
	OracleDown  bool                `json:"oracle_down,omitempty"`
	Valued      int                 `json:"valued"`
	Passed      int                 `json:"passed_filter"`
}

// CycleResult is what one scan cycle hands to collaborators: the ranked
// opportunity list plus diagnostics.
type CycleResult struct {
	Opportunities []Opportunity `json:"opportunities"`
	Diagnostics   Diagnostics   `json:"diagnostics"`
}
