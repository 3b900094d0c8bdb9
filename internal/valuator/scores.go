package valuator

import "math"

// liquidityScore grades the thinner side of the pair on a 0-100 scale. The
// log curve saturates around $100k: past that, more depth stops mattering
// for the trade sizes this engine considers.
func liquidityScore(minLiquidityUSD float64) float64 {
	if minLiquidityUSD <= 0 {
		return 0
	}
	score := 20 * math.Log10(minLiquidityUSD)
	return clamp(score, 0, 100)
}

// executionCertainty estimates, 0-100, how likely both legs fill near their
// modeled prices. Match confidence anchors the score; heavy slippage, a thin
// book, and imminent expiry drag it down.
func executionCertainty(confidence, totalSlippagePct, liqScore, hoursToExpiry float64) float64 {
	score := confidence * 100
	score -= totalSlippagePct * 4
	score -= (100 - liqScore) * 0.25
	score -= timePressure(hoursToExpiry)
	return clamp(score, 0, 100)
}

// timePressure penalizes opportunities inside the final day before the
// earlier leg settles: books thin and spreads widen as expiry approaches,
// up to a 12-point penalty at the wire.
func timePressure(hoursToExpiry float64) float64 {
	if hoursToExpiry >= 24 {
		return 0
	}
	if hoursToExpiry < 0 {
		hoursToExpiry = 0
	}
	return (24 - hoursToExpiry) * 0.5
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
