package normalizer

import (
	"strings"

	"github.com/predmarkets/arbscan/internal/domain"
)

// categoryKeywords maps each category to the phrases that imply it. The
// first category whose keyword appears in the question wins, so the order in
// categoryOrder matters: specific economic indicators are checked before the
// broad buckets.
var categoryKeywords = map[domain.Category][]string{
	domain.CategoryFedRates:   {"federal reserve", "fomc", "fed funds", "fed rate", "interest rate", "rate cut", "rate hike", "basis points"},
	domain.CategoryInflation:  {"cpi", "consumer price", "pce", "inflation", "deflation"},
	domain.CategoryEmployment: {"unemployment", "payroll", "nonfarm", "jobless", "jobs report"},
	domain.CategoryMarkets:    {"s&p 500", "s&p", "sp500", "nasdaq", "dow jones", "stock market", "market close"},
	domain.CategoryCrypto:     {"bitcoin", "btc", "ethereum", "eth", "crypto"},
	domain.CategoryPolitics:   {"election", "president", "congress", "senate", "governor", "vote", "midterm"},
	domain.CategoryEconomy:    {"gdp", "gross domestic product", "recession", "economic growth"},
}

var categoryOrder = []domain.Category{
	domain.CategoryInflation,
	domain.CategoryFedRates,
	domain.CategoryEmployment,
	domain.CategoryEconomy,
	domain.CategoryMarkets,
	domain.CategoryCrypto,
	domain.CategoryPolitics,
}

// Categorize infers the topic of a question from its keyword content.
// Questions matching nothing fall into CategoryOther, which still matches
// cross-venue as its own partition.
func Categorize(question string) domain.Category {
	q := strings.ToLower(question)
	for _, cat := range categoryOrder {
		for _, kw := range categoryKeywords[cat] {
			if strings.Contains(q, kw) {
				return cat
			}
		}
	}
	return domain.CategoryOther
}
