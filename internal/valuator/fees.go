package valuator

import (
	"math"
	"strings"

	"github.com/predmarkets/arbscan/internal/domain"
)

// Kalshi trading fee factors. The exchange charges per executed contract,
// quadratic in price, rounded up to the next cent; S&P 500 and Nasdaq index
// markets trade at a reduced factor.
const (
	kalshiGeneralFeeFactor = 0.07
	kalshiIndexFeeFactor   = 0.035
)

// kalshiIndexTickers marks the ticker prefixes that qualify for the reduced
// index fee schedule.
var kalshiIndexTickers = []string{"INX", "NASDAQ100", "KXINX", "KXNASDAQ100"}

// kalshiFeeUSD returns the total Kalshi trading fee for buying contracts
// contracts at price (a decimal probability). Fee per fill is
// factor * contracts * price * (1 - price), rounded up to the cent.
func kalshiFeeUSD(ticker string, contracts, price float64) float64 {
	if contracts <= 0 || price <= 0 || price >= 1 {
		return 0
	}
	factor := kalshiGeneralFeeFactor
	upper := strings.ToUpper(ticker)
	for _, prefix := range kalshiIndexTickers {
		if strings.HasPrefix(upper, prefix) {
			factor = kalshiIndexFeeFactor
			break
		}
	}
	raw := factor * contracts * price * (1 - price)
	// Epsilon keeps float noise from ceiling an exact cent amount up one more
	// cent (0.07*100*0.5*0.5 computes as 1.7500000000000002).
	return math.Ceil(raw*100-1e-9) / 100
}

// feeUSD returns the venue trading fee for one leg. Polymarket charges no
// trading fee on its CLOB.
func feeUSD(venue domain.Venue, externalID string, contracts, price float64) float64 {
	if venue == domain.VenueKalshi {
		return kalshiFeeUSD(externalID, contracts, price)
	}
	return 0
}
