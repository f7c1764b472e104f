package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-journal/internal/models"
)

func TestCalculateInsights(t *testing.T) {
	trades := normalized(
		models.RawTrade{ID: "1", StrategyUsed: "ORB", MistakeChecklist: "FOMO", Tags: "gap-up", NetPnl: -100, EmotionsBefore: "Greedy", EmotionsAfter: "Regret"},
		models.RawTrade{ID: "2", StrategyUsed: "ORB", MistakeChecklist: "FOMO", Tags: "gap-up,trend", NetPnl: -20},
		models.RawTrade{ID: "3", StrategyUsed: "VWAP", MistakeChecklist: "Early exit", Tags: "trend", NetPnl: -5, EmotionsBefore: "Calm"},
		models.RawTrade{ID: "4", StrategyUsed: "VWAP", Tags: "trend", NetPnl: 80},
		models.RawTrade{ID: "5", NetPnl: 10},
	)

	in := CalculateInsights(trades)

	require.Len(t, in.Mistakes, 2)
	assert.Equal(t, TagImpact{Name: "FOMO", Count: 2, TotalPnl: -120, AvgPnl: -60}, in.Mistakes[0])
	assert.Equal(t, TagImpact{Name: "Early exit", Count: 1, TotalPnl: -5, AvgPnl: -5}, in.Mistakes[1])

	require.Len(t, in.Tags, 2)
	assert.Equal(t, "trend", in.Tags[0].Name)
	assert.InDelta(t, 55.0/3, in.Tags[0].AvgPnl, 1e-9)
	assert.Equal(t, "gap-up", in.Tags[1].Name)

	assert.Equal(t, "ORB", in.MostUsedStrategy, "ties go to the strategy seen first")
	assert.Equal(t, 2, in.MostUsedStrategyCount)

	require.Len(t, in.Setups, 2)
	assert.Equal(t, "ORB", in.Setups[0].Setup)
	assert.Equal(t, 0.0, in.Setups[0].WinRate)
	assert.Equal(t, "VWAP", in.Setups[1].Setup)
	assert.Equal(t, 50.0, in.Setups[1].WinRate)
	assert.Equal(t, 37.5, in.Setups[1].AvgPnl)

	assert.Equal(t, 3, in.TotalEmotionEntries)
	require.Len(t, in.Sentiment, 3)
	for _, s := range in.Sentiment {
		assert.Equal(t, 1, s.Count)
		assert.InDelta(t, 33.33, s.Share, 0.01)
	}
	assert.Equal(t, "Calm", in.Sentiment[0].Emotion)

	assert.Equal(t, 40.0, in.DisciplineRate)
}

func TestCalculateInsightsEmpty(t *testing.T) {
	in := CalculateInsights(nil)

	assert.Equal(t, NotAvailable, in.MostUsedStrategy)
	assert.Zero(t, in.MostUsedStrategyCount)
	assert.NotNil(t, in.Mistakes)
	assert.NotNil(t, in.Tags)
	assert.NotNil(t, in.Setups)
	assert.NotNil(t, in.Sentiment)
	assert.Zero(t, in.DisciplineRate)
}

func TestTagTiesBreakByCountThenName(t *testing.T) {
	trades := normalized(
		models.RawTrade{ID: "1", Tags: "b", NetPnl: 10},
		models.RawTrade{ID: "2", Tags: "a", NetPnl: 10},
		models.RawTrade{ID: "3", Tags: "c", NetPnl: 10},
		models.RawTrade{ID: "4", Tags: "c", NetPnl: 10},
	)

	in := CalculateInsights(trades)

	require.Len(t, in.Tags, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{in.Tags[0].Name, in.Tags[1].Name, in.Tags[2].Name})
}
