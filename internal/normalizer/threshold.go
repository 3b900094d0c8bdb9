package normalizer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/predmarkets/arbscan/internal/domain"
)

// Threshold patterns, tried in order. The first hit in the question text
// becomes the contract's threshold; many contracts legitimately have none.
var (
	percentRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
	bpsRe     = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:bps|bp|basis points?)`)
	dollarRe  = regexp.MustCompile(`\$\s*([\d,]+(?:\.\d+)?)\s*([kKmMbB])?`)
)

// ExtractThreshold scans a question for the first numeric-plus-unit token
// (percent, basis points, or a dollar level) and returns it. The second
// return is false when the question carries no recognizable threshold.
func ExtractThreshold(question string) (domain.Threshold, bool) {
	q := strings.ToLower(question)

	if m := bpsRe.FindStringSubmatch(q); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return domain.Threshold{Value: v, Unit: domain.UnitBasisPoints}, true
		}
	}
	if m := percentRe.FindStringSubmatch(q); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return domain.Threshold{Value: v, Unit: domain.UnitPercent}, true
		}
	}
	if m := dollarRe.FindStringSubmatch(q); m != nil {
		raw := strings.ReplaceAll(m[1], ",", "")
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			switch strings.ToLower(m[2]) {
			case "k":
				v *= 1_000
			case "m":
				v *= 1_000_000
			case "b":
				v *= 1_000_000_000
			}
			return domain.Threshold{Value: v, Unit: domain.UnitDollars}, true
		}
	}

	return domain.Threshold{}, false
}
