package polymarket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarketUnmarshalFlexibleFields(t *testing.T) {
	// Gamma sends volume/liquidity as strings on some endpoints and numbers
	// on others, and "active" both ways too.
	body := `{
		"id": "0xabc",
		"question": "Will CPI inflation exceed 3.0% in August?",
		"active": "true",
		"closed": false,
		"outcomes": "[\"Yes\",\"No\"]",
		"outcomePrices": "[\"0.45\",\"0.55\"]",
		"volume": "12345.6",
		"liquidity": 20000,
		"endDate": "2026-08-30T00:00:00Z"
	}`

	var m Market
	require.NoError(t, json.Unmarshal([]byte(body), &m))

	assert.True(t, bool(m.Active))
	assert.InDelta(t, 12345.6, float64(m.VolumeTotal), 1e-9)
	assert.InDelta(t, 20000, float64(m.Liquidity), 1e-9)
}

func TestFlexFloatEmptyString(t *testing.T) {
	var f flexFloat
	require.NoError(t, json.Unmarshal([]byte(`""`), &f))
	assert.Zero(t, float64(f))
}

func TestYesNoPrices(t *testing.T) {
	tests := []struct {
		name     string
		outcomes string
		prices   string
		wantYes  float64
		wantNo   float64
		wantOK   bool
	}{
		{
			name:     "plain binary",
			outcomes: `["Yes","No"]`,
			prices:   `["0.45","0.55"]`,
			wantYes:  0.45,
			wantNo:   0.55,
			wantOK:   true,
		},
		{
			name:     "reversed outcome order",
			outcomes: `["No","Yes"]`,
			prices:   `["0.55","0.45"]`,
			wantYes:  0.45,
			wantNo:   0.55,
			wantOK:   true,
		},
		{
			name:     "multi outcome",
			outcomes: `["Smith","Jones","Lee"]`,
			prices:   `["0.4","0.35","0.25"]`,
			wantOK:   false,
		},
		{
			name:     "non yes/no labels",
			outcomes: `["Up","Down"]`,
			prices:   `["0.5","0.5"]`,
			wantOK:   false,
		},
		{
			name:     "malformed prices",
			outcomes: `["Yes","No"]`,
			prices:   `not json`,
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Market{Outcomes: tt.outcomes, OutcomePrices: tt.prices}
			yes, no, ok := m.YesNoPrices()
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.wantYes, yes, 1e-9)
				assert.InDelta(t, tt.wantNo, no, 1e-9)
			}
		})
	}
}
