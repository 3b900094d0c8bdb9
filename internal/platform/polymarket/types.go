package polymarket

import (
	"encoding/json"
	"strconv"
	"strings"
)

// flexBool unmarshals from JSON bool or string ("true"/"false") so Gamma API
// responses work whether "active" is sent as bool or string.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// flexFloat unmarshals from JSON number or numeric string; Gamma reports
// volume and liquidity both ways depending on the endpoint.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = flexFloat(n)
	return nil
}

// --------------------------------------------------------------------------
// Gamma API DTOs
// --------------------------------------------------------------------------

// Market represents a market as returned by the Polymarket Gamma API.
type Market struct {
	ID            string    `json:"id"`
	Question      string    `json:"question"`
	ConditionID   string    `json:"conditionId"`
	Slug          string    `json:"slug"`
	Active        flexBool  `json:"active"`
	Closed        bool      `json:"closed"`
	Outcomes      string    `json:"outcomes"`      // JSON-encoded: e.g. "[\"Yes\",\"No\"]"
	OutcomePrices string    `json:"outcomePrices"` // JSON-encoded: e.g. "[\"0.45\",\"0.55\"]"
	Volume24H     flexFloat `json:"volume24hr"`
	VolumeTotal   flexFloat `json:"volume"`
	Liquidity     flexFloat `json:"liquidity"`
	EndDate       string    `json:"endDate"` // RFC3339
}

// YesNoPrices decodes the JSON-encoded outcome arrays into (yes, no) decimal
// prices. ok is false when the market is not a plain Yes/No binary or either
// price is missing.
func (m Market) YesNoPrices() (yes, no float64, ok bool) {
	var outcomes []string
	if err := json.Unmarshal([]byte(m.Outcomes), &outcomes); err != nil {
		return 0, 0, false
	}
	var prices []string
	if err := json.Unmarshal([]byte(m.OutcomePrices), &prices); err != nil {
		return 0, 0, false
	}
	if len(outcomes) != 2 || len(prices) != 2 {
		return 0, 0, false
	}

	for i, outcome := range outcomes {
		p, err := strconv.ParseFloat(prices[i], 64)
		if err != nil {
			return 0, 0, false
		}
		switch strings.ToLower(outcome) {
		case "yes":
			yes = p
		case "no":
			no = p
		default:
			return 0, 0, false
		}
	}
	return yes, no, true
}
