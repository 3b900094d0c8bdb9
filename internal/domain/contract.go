// Package domain defines the canonical data model shared by every component
// of the arbitrage engine: venue-agnostic contracts, cross-venue matches,
// valued opportunities, and the collaborator interfaces the engine consumes.
package domain

import "time"

// Venue identifies one of the two prediction-market platforms.
type Venue string

const (
	VenueKalshi     Venue = "kalshi"
	VenuePolymarket Venue = "polymarket"
)

// Side is one outcome leg of a binary contract.
type Side string

const (
	SideYes Side = "YES"
	SideNo  Side = "NO"
)

// Opposite returns the other leg.
func (s Side) Opposite() Side {
	if s == SideYes {
		return SideNo
	}
	return SideYes
}

// Category is the inferred topic of a contract. Matching only ever compares
// contracts within the same category.
type Category string

const (
	CategoryFedRates   Category = "fed_rates"
	CategoryInflation  Category = "inflation"
	CategoryEmployment Category = "employment"
	CategoryEconomy    Category = "economy"
	CategoryMarkets    Category = "markets"
	CategoryCrypto     Category = "crypto"
	CategoryPolitics   Category = "politics"
	CategoryOther      Category = "other"
)

// ThresholdUnit is the unit of a numeric threshold extracted from a question.
type ThresholdUnit string

const (
	UnitPercent     ThresholdUnit = "percent"
	UnitBasisPoints ThresholdUnit = "bps"
	UnitDollars     ThresholdUnit = "usd"
)

// Threshold is a numeric level a threshold-based contract resolves against,
// e.g. "3.0%" in "Will CPI inflation be 3.0% or higher for August 2025?".
type Threshold struct {
	Value float64       `json:"value"`
	Unit  ThresholdUnit `json:"unit"`
}

// Normalized converts the threshold to percentage points so thresholds quoted
// in basis points compare against thresholds quoted in percent.
func (t Threshold) Normalized() float64 {
	if t.Unit == UnitBasisPoints {
		return t.Value / 100
	}
	return t.Value
}

// Contract is one tradable binary proposition on one venue, normalized into
// the engine's canonical shape. Prices are decimal probabilities in [0,1];
// YesPrice+NoPrice need not sum to 1 (that mispricing is the whole point).
type Contract struct {
	Venue        Venue      `json:"venue"`
	ExternalID   string     `json:"external_id"`
	QuestionText string     `json:"question_text"`
	Category     Category   `json:"category"`
	Threshold    *Threshold `json:"threshold,omitempty"`
	Expiry       time.Time  `json:"expiry"`
	YesPrice     float64    `json:"yes_price"`
	NoPrice      float64    `json:"no_price"`
	Volume       float64    `json:"volume"`
	LiquidityUSD float64    `json:"liquidity_usd"`
}

// Price returns the quoted price for the given side.
func (c Contract) Price(s Side) float64 {
	if s == SideYes {
		return c.YesPrice
	}
	return c.NoPrice
}

// Key is the contract's globally unique identity.
func (c Contract) Key() string {
	return string(c.Venue) + ":" + c.ExternalID
}
