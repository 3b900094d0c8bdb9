package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripBase(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "strips threshold and date",
			in:   "Will CPI inflation be 3.0% or higher for August 2026?",
			want: "cpi inflation higher",
		},
		{
			name: "strips dollar level",
			in:   "Will Bitcoin close above $100,000 in December?",
			want: "bitcoin close above",
		},
		{
			name: "strips bps",
			in:   "Will the Fed cut 25 bps?",
			want: "fed cut",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripBase(tt.in))
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("fed cut rates", "fed cut rates"))
	assert.Equal(t, 0.0, Similarity("", "fed cut rates"))

	// Same proposition, different phrasing, after stripping.
	a := StripBase("Will CPI inflation be 3.0% or higher for August 2026?")
	b := StripBase("Will CPI inflation exceed 3.0% in August 2026?")
	assert.Greater(t, Similarity(a, b), 0.55)

	// Unrelated propositions score low.
	c := StripBase("Will Bitcoin close above $100k?")
	assert.Less(t, Similarity(a, c), 0.35)
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"same", "same", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, levenshtein([]rune(tt.a), []rune(tt.b)), "%s vs %s", tt.a, tt.b)
	}
}
