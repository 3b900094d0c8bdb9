// Package oracle provides the semantic comparators the matcher can be
// wired with: a built-in date-aware heuristic and an OpenAI-backed scorer.
package oracle

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/predmarkets/arbscan/internal/domain"
	"github.com/predmarkets/arbscan/internal/matcher"
)

var monthNames = map[string]int{
	"january": 1, "jan": 1,
	"february": 2, "feb": 2,
	"march": 3, "mar": 3,
	"april": 4, "apr": 4,
	"may":  5,
	"june": 6, "jun": 6,
	"july": 7, "jul": 7,
	"august": 8, "aug": 8,
	"september": 9, "sep": 9, "sept": 9,
	"october": 10, "oct": 10,
	"november": 11, "nov": 11,
	"december": 12, "dec": 12,
}

var (
	dateMonthRe = regexp.MustCompile(`\b(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec)\b`)
	dateYearRe  = regexp.MustCompile(`\b(20\d{2})\b`)
)

// monthYear is one calendar reference extracted from a question.
type monthYear struct {
	month int // 0 when only a year was mentioned
	year  int // 0 when only a month was mentioned
}

// extractDates pulls every month and year mention out of a question. Months
// and years are paired positionally when counts allow, otherwise kept loose.
func extractDates(question string) []monthYear {
	q := strings.ToLower(question)
	months := dateMonthRe.FindAllString(q, -1)
	years := dateYearRe.FindAllString(q, -1)

	var out []monthYear
	n := len(months)
	if len(years) > n {
		n = len(years)
	}
	for i := 0; i < n; i++ {
		var my monthYear
		if i < len(months) {
			my.month = monthNames[months[i]]
		}
		if i < len(years) {
			my.year, _ = strconv.Atoi(years[i])
		}
		out = append(out, my)
	}
	return out
}

// economicCategories resolve against a specific data release, so a month
// mismatch means a different event entirely.
var economicCategories = map[domain.Category]bool{
	domain.CategoryFedRates:   true,
	domain.CategoryInflation:  true,
	domain.CategoryEmployment: true,
	domain.CategoryEconomy:    true,
}

// dateAlignment scores how well the calendar references of two questions
// agree, in [0,1]. No dates on either side is neutral rather than zero: many
// equivalent contracts simply omit the date.
func dateAlignment(cat domain.Category, a, b []monthYear) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0.7
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.5
	}

	best := 0.0
	for _, x := range a {
		for _, y := range b {
			s := alignOne(x, y)
			if s > best {
				best = s
			}
		}
	}

	// An economic contract for the wrong release month is a different trade
	// no matter how similar the wording.
	if best < 1.0 && economicCategories[cat] {
		best *= 0.3
	}
	return best
}

func alignOne(a, b monthYear) float64 {
	monthKnown := a.month != 0 && b.month != 0
	yearKnown := a.year != 0 && b.year != 0

	switch {
	case monthKnown && yearKnown:
		if a.month == b.month && a.year == b.year {
			return 1.0
		}
		if a.year == b.year {
			return 0.3
		}
		return 0.0
	case monthKnown:
		if a.month == b.month {
			return 0.9
		}
		return 0.2
	case yearKnown:
		if a.year == b.year {
			return 0.6
		}
		return 0.0
	default:
		return 0.5
	}
}

// Heuristic is the zero-dependency comparator: stripped-question text
// similarity blended equally with calendar alignment. It never fails, so a
// matcher wired with it never degrades.
type Heuristic struct{}

// NewHeuristic returns the built-in comparator.
func NewHeuristic() Heuristic { return Heuristic{} }

// Compare implements domain.Comparator.
func (Heuristic) Compare(_ context.Context, a, b domain.Contract) (float64, error) {
	text := matcher.Similarity(matcher.StripBase(a.QuestionText), matcher.StripBase(b.QuestionText))
	align := dateAlignment(a.Category, extractDates(a.QuestionText), extractDates(b.QuestionText))
	return 0.5*text + 0.5*align, nil
}
