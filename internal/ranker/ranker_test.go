package ranker

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/predmarkets/arbscan/internal/config"
	"github.com/predmarkets/arbscan/internal/domain"
)

func testRanker() *Ranker {
	return New(slog.Default(), config.EngineConfig{
		MinProfitUSD:         1.0,
		MinProfitPercentage:  1.0,
		MinConfidence:        0.7,
		MinTimeToExpiryHours: 1.0,
		MaxTimeToExpiryHours: 336.0,
	})
}

func passing(id string) domain.Opportunity {
	return domain.Opportunity{
		ID:                  id,
		Pair:                domain.MatchedPair{Confidence: 0.9},
		GuaranteedProfitUSD: 25,
		ProfitPercentage:    2.5,
		ProfitPerHour:       0.5,
		ExecutionCertainty:  70,
		TimeToExpiryHours:   48,
	}
}

func TestRankFilters(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Opportunity)
	}{
		{"profit below floor", func(o *domain.Opportunity) { o.GuaranteedProfitUSD = 0.5 }},
		{"percentage below floor", func(o *domain.Opportunity) { o.ProfitPercentage = 0.4 }},
		{"confidence below floor", func(o *domain.Opportunity) { o.Pair.Confidence = 0.6 }},
		{"expiring too soon", func(o *domain.Opportunity) { o.TimeToExpiryHours = 0.5 }},
		{"expiring too late", func(o *domain.Opportunity) { o.TimeToExpiryHours = 400 }},
	}

	r := testRanker()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := passing("x")
			tt.mutate(&o)
			assert.Empty(t, r.Rank([]domain.Opportunity{o}))
		})
	}

	assert.Len(t, r.Rank([]domain.Opportunity{passing("x")}), 1)
}

func TestRankOrders(t *testing.T) {
	slow := passing("slow")
	slow.ProfitPerHour = 0.2

	fast := passing("fast")
	fast.ProfitPerHour = 2.0

	tiedLow := passing("tied-low")
	tiedLow.ProfitPerHour = 1.0
	tiedLow.ExecutionCertainty = 60

	tiedHigh := passing("tied-high")
	tiedHigh.ProfitPerHour = 1.0
	tiedHigh.ExecutionCertainty = 85

	got := testRanker().Rank([]domain.Opportunity{slow, tiedLow, fast, tiedHigh})
	require.Len(t, got, 4)

	ids := []string{got[0].ID, got[1].ID, got[2].ID, got[3].ID}
	assert.Equal(t, []string{"fast", "tied-high", "tied-low", "slow"}, ids)
}

func TestRankDoesNotMutateInput(t *testing.T) {
	in := []domain.Opportunity{passing("a"), passing("b")}
	in[0].ProfitPerHour = 0.1
	in[1].ProfitPerHour = 9.9

	_ = testRanker().Rank(in)
	assert.Equal(t, "a", in[0].ID)
	assert.Equal(t, "b", in[1].ID)
}
