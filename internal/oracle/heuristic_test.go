package oracle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/predmarkets/arbscan/internal/domain"
)

func TestExtractDates(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     []monthYear
	}{
		{
			name:     "month and year",
			question: "Will CPI inflation be 3.0% or higher for August 2026?",
			want:     []monthYear{{month: 8, year: 2026}},
		},
		{
			name:     "month only",
			question: "Will the Fed cut rates in September?",
			want:     []monthYear{{month: 9}},
		},
		{
			name:     "year only",
			question: "Will there be a recession in 2026?",
			want:     []monthYear{{year: 2026}},
		},
		{
			name:     "abbreviated month",
			question: "Jobs report for Sep 2026 above 200k?",
			want:     []monthYear{{month: 9, year: 2026}},
		},
		{
			name:     "no dates",
			question: "Will the Democrats win the Senate?",
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractDates(tt.question))
		})
	}
}

func TestAlignOne(t *testing.T) {
	tests := []struct {
		name string
		a, b monthYear
		want float64
	}{
		{"same month and year", monthYear{8, 2026}, monthYear{8, 2026}, 1.0},
		{"same year different month", monthYear{8, 2026}, monthYear{9, 2026}, 0.3},
		{"different year", monthYear{8, 2026}, monthYear{8, 2027}, 0.0},
		{"months only equal", monthYear{8, 0}, monthYear{8, 2026}, 0.9},
		{"months only unequal", monthYear{8, 0}, monthYear{9, 0}, 0.2},
		{"years only equal", monthYear{0, 2026}, monthYear{0, 2026}, 0.6},
		{"years only unequal", monthYear{0, 2026}, monthYear{0, 2027}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, alignOne(tt.a, tt.b))
		})
	}
}

func TestDateAlignment(t *testing.T) {
	aug := []monthYear{{month: 8, year: 2026}}
	sep := []monthYear{{month: 9, year: 2026}}

	// No dates on either side is neutral.
	assert.Equal(t, 0.7, dateAlignment(domain.CategoryOther, nil, nil))
	// One side dated, the other not.
	assert.Equal(t, 0.5, dateAlignment(domain.CategoryOther, aug, nil))
	// Exact agreement.
	assert.Equal(t, 1.0, dateAlignment(domain.CategoryInflation, aug, aug))

	// A month mismatch is survivable for a generic contract but nearly fatal
	// for one tied to a specific data release.
	generic := dateAlignment(domain.CategoryOther, aug, sep)
	economic := dateAlignment(domain.CategoryInflation, aug, sep)
	assert.InDelta(t, 0.3, generic, 1e-9)
	assert.InDelta(t, 0.09, economic, 1e-9)
}

func TestHeuristicCompare(t *testing.T) {
	h := NewHeuristic()

	same := domain.Contract{
		QuestionText: "Will CPI inflation be 3.0% or higher for August 2026?",
		Category:     domain.CategoryInflation,
	}
	rephrased := domain.Contract{
		QuestionText: "Will CPI inflation exceed 3.0% in August 2026?",
		Category:     domain.CategoryInflation,
	}
	wrongMonth := domain.Contract{
		QuestionText: "Will CPI inflation be 3.0% or higher for September 2026?",
		Category:     domain.CategoryInflation,
	}

	identical, err := h.Compare(context.Background(), same, same)
	require.NoError(t, err)
	assert.Equal(t, 1.0, identical)

	close, err := h.Compare(context.Background(), same, rephrased)
	require.NoError(t, err)
	assert.Greater(t, close, 0.7)

	// Same wording, different release month: the alignment penalty dominates.
	shifted, err := h.Compare(context.Background(), same, wrongMonth)
	require.NoError(t, err)
	assert.Less(t, shifted, 0.65)
	assert.Less(t, shifted, close)
}
