package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-journal/internal/models"
)

func TestCalculatePerformanceBasicJournal(t *testing.T) {
	trades := normalized(
		rawTrade("2024-01-01", 100),
		rawTrade("2024-01-02", -50),
		rawTrade("2024-01-03", -30),
	)

	m := CalculatePerformance(trades)

	assert.Equal(t, 3, m.TotalTrades)
	assert.Equal(t, 1, m.Wins)
	assert.Equal(t, 2, m.Losses)
	assert.InDelta(t, 33.33, m.WinRate, 0.01)
	assert.InDelta(t, 66.67, m.LossRate, 0.01)
	assert.Equal(t, 20.0, m.TotalPnl)
	assert.Equal(t, 100.0, m.GrossProfit)
	assert.Equal(t, -80.0, m.GrossLoss)
	assert.Equal(t, -40.0, m.AvgLoss)
	assert.Equal(t, 100.0, m.LargestWin)
	assert.Equal(t, -50.0, m.LargestLoss)
	assert.InDelta(t, 1.25, m.ProfitFactor, 1e-9)
	assert.InDelta(t, 20.0/3, m.Expectancy, 1e-9)

	assert.Equal(t, 2, m.MaxConsecutiveLossDays)
	assert.Equal(t, 1, m.MaxConsecutiveWinDays)
	assert.Equal(t, 2, m.MaxConsecutiveLosses)
	assert.Equal(t, -2, m.CurrentStreak)
	assert.Equal(t, 80.0, m.MaxDrawdown)

	assert.Equal(t, 3, m.TradingDays)
	assert.Equal(t, "2024-01-01", m.BestDay)
	assert.Equal(t, 100.0, m.BestDayPnl)
	assert.Equal(t, "2024-01-02", m.WorstDay)
	assert.Equal(t, -50.0, m.WorstDayPnl)
	assert.Equal(t, 3, m.SingleTradeDays)
	assert.Equal(t, "NIFTY", m.MostTradedSymbol)
}

func TestCalculatePerformanceEmpty(t *testing.T) {
	m := CalculatePerformance(nil)

	assert.Zero(t, m.TotalTrades)
	assert.Zero(t, m.WinRate)
	assert.Zero(t, m.ProfitFactor)
	assert.Zero(t, m.Expectancy)
	assert.Zero(t, m.MaxDrawdown)
	assert.NotNil(t, m.ByStrategy)
	assert.NotNil(t, m.BySymbol)
	assert.NotNil(t, m.ByWeekday)
	assert.Equal(t, NotAvailable, m.BestStrategy)
	assert.Equal(t, NotAvailable, m.WorstStrategy)
	assert.Equal(t, NotAvailable, m.MostTradedSymbol)
	assert.Equal(t, NotAvailable, m.BestDay)
	assert.Equal(t, NotAvailable, m.WorstDay)
}

func TestCalculatePerformanceSortsBeforeStreaks(t *testing.T) {
	trades := normalized(
		rawTrade("2024-01-03", -30),
		rawTrade("2024-01-01", 100),
		rawTrade("2024-01-02", -50),
	)

	m := CalculatePerformance(trades)

	assert.Equal(t, 2, m.MaxConsecutiveLosses)
	assert.Equal(t, 1, m.MaxConsecutiveWins)
	assert.Equal(t, -2, m.CurrentStreak)
	assert.Equal(t, 80.0, m.MaxDrawdown)
	assert.Equal(t, 2, m.MaxConsecutiveLossDays)
}

func TestStreaksResetOnBreakeven(t *testing.T) {
	m := CalculatePerformance(tradesFromPnls([]int{-10, 0, -10, 5, 5, 0}))

	assert.Equal(t, 1, m.MaxConsecutiveLosses)
	assert.Equal(t, 2, m.MaxConsecutiveWins)
	assert.Equal(t, 2, m.Breakevens)
	assert.Equal(t, 0, m.CurrentStreak)

	m = CalculatePerformance(tradesFromPnls([]int{-5, 10, 20, 30}))
	assert.Equal(t, 3, m.CurrentStreak)
}

func TestAbsoluteDrawdownStartsFromZero(t *testing.T) {
	// An opening loss is a drawdown from the zero baseline.
	m := CalculatePerformance(tradesFromPnls([]int{-40, 100, -70, 20}))
	assert.Equal(t, 70.0, m.MaxDrawdown)

	m = CalculatePerformance(tradesFromPnls([]int{-40, -10}))
	assert.Equal(t, 50.0, m.MaxDrawdown)
}

func TestProfitFactorWithoutLosses(t *testing.T) {
	m := CalculatePerformance(tradesFromPnls([]int{10, 20}))
	assert.Zero(t, m.ProfitFactor)
	assert.Equal(t, 100.0, m.WinRate)
}

func TestExtremesKeepFirstOnTies(t *testing.T) {
	trades := normalized(
		models.RawTrade{ID: "a", Date: "2024-01-01", EntryPrice: 100, Quantity: 10, NetPnl: 5},
		models.RawTrade{ID: "b", Date: "2024-01-02", EntryPrice: 50, Quantity: 20, NetPnl: -5},
		models.RawTrade{ID: "c", Date: "2024-01-03", EntryPrice: 10, Quantity: 20, NetPnl: 1},
	)

	m := CalculatePerformance(trades)

	assert.Equal(t, Extreme{Value: 1000, Pnl: 5, TradeID: "a"}, m.MaxCapital)
	assert.Equal(t, Extreme{Value: 200, Pnl: 1, TradeID: "c"}, m.MinCapital)
	assert.Equal(t, Extreme{Value: 20, Pnl: -5, TradeID: "b"}, m.MaxQuantity)
	assert.Equal(t, Extreme{Value: 10, Pnl: 5, TradeID: "a"}, m.MinQuantity)
}

func TestOvertradingThreshold(t *testing.T) {
	day := func(n int) []models.RawTrade {
		raws := make([]models.RawTrade, n)
		for i := range raws {
			raws[i] = rawTrade("2024-01-02", 1)
			raws[i].ID = string(rune('a' + i))
		}
		return raws
	}

	m := CalculatePerformance(normalized(day(OvertradingThreshold)...))
	assert.Zero(t, m.OvertradingDays)
	assert.Equal(t, OvertradingThreshold, m.MaxTradesInDay)

	m = CalculatePerformance(normalized(day(OvertradingThreshold + 1)...))
	assert.Equal(t, 1, m.OvertradingDays)
	assert.Equal(t, 1, m.TradingDays)
	assert.Equal(t, float64(OvertradingThreshold+1), m.AvgTradesPerDay)
	assert.Zero(t, m.SingleTradeDays)
}

func TestWeekdayBreakdown(t *testing.T) {
	trades := normalized(
		models.RawTrade{ID: "1", Date: "2024-01-01", NetPnl: 100, RiskReward: "1:3", StopLoss: 90},
		models.RawTrade{ID: "2", Date: "2024-01-08", NetPnl: -20, RiskReward: "1:2", StopLoss: "95"},
		models.RawTrade{ID: "3", Date: "2024-01-15", NetPnl: 10},
		models.RawTrade{ID: "4", Date: "2024-01-06", NetPnl: 50, RiskReward: "1:5"},
		models.RawTrade{ID: "5", Date: "2024-01-03", NetPnl: 0},
		models.RawTrade{ID: "6", NetPnl: 5},
	)

	m := CalculatePerformance(trades)

	require.Len(t, m.ByWeekday, 2)
	monday := m.ByWeekday["Monday"]
	require.NotNil(t, monday)
	assert.Equal(t, 3, monday.Trades)
	assert.Equal(t, 2, monday.Wins)
	assert.Equal(t, 2, monday.RRSamples)
	assert.InDelta(t, 2.5, monday.AvgPlannedRR, 1e-9)
	assert.InDelta(t, 30.0, monday.AvgPnl, 1e-9)

	wednesday := m.ByWeekday["Wednesday"]
	require.NotNil(t, wednesday)
	assert.Equal(t, 1, wednesday.Breakevens)
	assert.Zero(t, wednesday.RRSamples)

	assert.NotContains(t, m.ByWeekday, "Saturday")
	assert.Equal(t, 6, m.TotalTrades, "weekend and undated trades still count in totals")
	assert.Equal(t, 5, m.TradingDays)
}

func TestStrategyAndSymbolGroups(t *testing.T) {
	trades := normalized(
		models.RawTrade{ID: "1", Symbol: "TCS", Date: "2024-01-01", StrategyUsed: "Breakout", NetPnl: 200},
		models.RawTrade{ID: "2", Symbol: "INFY", Date: "2024-01-01", StrategyUsed: "Breakout", NetPnl: -50},
		models.RawTrade{ID: "3", Symbol: "INFY", Date: "2024-01-02", StrategyUsed: "Reversal", NetPnl: -80},
		models.RawTrade{ID: "4", Symbol: "TCS", Date: "2024-01-02", NetPnl: 10},
	)

	m := CalculatePerformance(trades)

	require.Contains(t, m.ByStrategy, "Unspecified")
	assert.Equal(t, 2, m.ByStrategy["Breakout"].Trades)
	assert.Equal(t, 50.0, m.ByStrategy["Breakout"].WinRate)
	assert.Equal(t, 150.0, m.ByStrategy["Breakout"].TotalPnl)
	assert.Equal(t, "Breakout", m.BestStrategy)
	assert.Equal(t, "Reversal", m.WorstStrategy)

	assert.Equal(t, "TCS", m.MostTradedSymbol, "ties go to the symbol seen first")
	assert.Equal(t, 2, m.BySymbol["INFY"].Losses)
	assert.Equal(t, 2, m.TradingDays)
	assert.Equal(t, 2.0, m.AvgTradesPerDay)
}

func TestWeekdayRiskRewardSkipsTradesWithoutStop(t *testing.T) {
	trades := normalized(
		models.RawTrade{ID: "a", Date: "2024-01-01", EntryPrice: 100, StopLoss: 90, Target: 120, NetPnl: 200},
		models.RawTrade{ID: "b", Date: "2024-01-08", EntryPrice: 100, RiskReward: "1:5", NetPnl: -50},
	)

	m := CalculatePerformance(trades)

	monday := m.ByWeekday["Monday"]
	require.NotNil(t, monday)
	assert.Equal(t, 1, monday.RRSamples)
	assert.InDelta(t, 2.0, monday.AvgPlannedRR, 1e-9)

	assert.Equal(t, 2, monday.Trades)
	assert.Equal(t, 1, m.Wins)
	assert.Equal(t, 1, m.Losses)
}
