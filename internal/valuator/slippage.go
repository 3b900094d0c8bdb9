package valuator

import "math"

// slippagePct estimates the price impact, in percent, of deploying sizeUSD
// against a book holding liquidityUSD:
//
//	slippage% = base + scale * (size/liquidity)^exponent
//
// The caller guarantees liquidityUSD > 0; zero-liquidity contracts never
// reach valuation.
func slippagePct(base, scale, exponent, sizeUSD, liquidityUSD float64) float64 {
	if sizeUSD <= 0 {
		return base
	}
	utilization := sizeUSD / liquidityUSD
	return base + scale*math.Pow(utilization, exponent)
}

// applySlippage worsens a buy price by the given slippage percentage, capped
// at 1.0 since a binary contract never costs more than its payout.
func applySlippage(price, pct float64) float64 {
	adjusted := price * (1 + pct/100)
	return math.Min(adjusted, 1.0)
}
