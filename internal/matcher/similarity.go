package matcher

import (
	"regexp"
	"strings"
)

// Tokens stripped before base-question comparison: numbers (with optional
// unit decoration), month names, and four-digit years. Two questions about
// the same indicator at different levels should compare as near-identical
// once the levels are gone.
var (
	numberTokenRe = regexp.MustCompile(`[\$]?\d+(?:[.,]\d+)?\s*(?:%|bps|bp|basis points?|k|m|b)?`)
	monthRe       = regexp.MustCompile(`\b(?:january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|sept|oct|nov|dec)\b`)
	yearRe        = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	punctRe       = regexp.MustCompile(`[^\p{L}\s]`)
	spaceRe       = regexp.MustCompile(`\s+`)
)

// stopwords carry no signal for equivalence and only dilute the ratio.
var stopwords = map[string]bool{
	"will": true, "the": true, "be": true, "a": true, "an": true, "of": true,
	"in": true, "on": true, "at": true, "by": true, "for": true, "to": true,
	"or": true, "and": true, "is": true, "than": true,
}

// StripBase reduces a question to its comparable base: lowercased, with
// numeric, date, and punctuation tokens removed and stopwords dropped.
func StripBase(question string) string {
	q := strings.ToLower(question)
	q = numberTokenRe.ReplaceAllString(q, " ")
	q = monthRe.ReplaceAllString(q, " ")
	q = yearRe.ReplaceAllString(q, " ")
	q = punctRe.ReplaceAllString(q, " ")

	words := strings.Fields(q)
	kept := words[:0]
	for _, w := range words {
		if !stopwords[w] {
			kept = append(kept, w)
		}
	}
	return spaceRe.ReplaceAllString(strings.Join(kept, " "), " ")
}

// Similarity scores two strings in [0,1] as the mean of a character-level
// edit ratio and a word-level overlap ratio. The blend tolerates both small
// spelling variation and word reordering.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	return (editRatio(a, b) + tokenOverlap(a, b)) / 2
}

// editRatio is 1 minus the normalized Levenshtein distance.
func editRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	d := levenshtein(ra, rb)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(d)/float64(longest)
}

// tokenOverlap is the Jaccard index of the two word sets.
func tokenOverlap(a, b string) float64 {
	setA := map[string]bool{}
	for _, w := range strings.Fields(a) {
		setA[w] = true
	}
	setB := map[string]bool{}
	for _, w := range strings.Fields(b) {
		setB[w] = true
	}
	if len(setA) == 0 && len(setB) == 0 {
		return 1
	}
	inter := 0
	for w := range setA {
		if setB[w] {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// levenshtein computes the edit distance with a two-row table.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func minInt(vals ...int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
