package kalshi

// --------------------------------------------------------------------------
// Kalshi API DTOs
// --------------------------------------------------------------------------

// Market represents a market as returned by the Kalshi REST API. Prices are
// quoted in cents (0..100); use the *Prob helpers for decimal probabilities.
type Market struct {
	Ticker         string  `json:"ticker"`
	EventTicker    string  `json:"event_ticker"`
	Title          string  `json:"title"`
	Subtitle       string  `json:"subtitle"`
	Status         string  `json:"status"` // "active", "closed", "settled"
	YesBid         float64 `json:"yes_bid"`
	YesAsk         float64 `json:"yes_ask"`
	NoBid          float64 `json:"no_bid"`
	NoAsk          float64 `json:"no_ask"`
	LastPrice      float64 `json:"last_price"`
	Volume         float64 `json:"volume"`
	Volume24H      float64 `json:"volume_24h"`
	Liquidity      float64 `json:"liquidity"`
	OpenInterest   float64 `json:"open_interest"`
	CloseTime      string  `json:"close_time"`      // RFC3339
	ExpirationTime string  `json:"expiration_time"` // RFC3339
}

// YesAskProb returns the yes ask as a decimal probability.
func (m Market) YesAskProb() float64 { return centsToProb(m.YesAsk) }

// NoAskProb returns the no ask as a decimal probability.
func (m Market) NoAskProb() float64 { return centsToProb(m.NoAsk) }

// centsToProb normalizes a Kalshi cent quote (0..100) into [0,1]. Values
// already in [0,1] pass through unchanged, matching how the API sometimes
// reports sub-dollar fields.
func centsToProb(v float64) float64 {
	if v <= 0 {
		return 0
	}
	if v > 1.0 {
		return v / 100.0
	}
	return v
}

// ErrorResponse is the error payload returned by the Kalshi API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
