package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-journal/internal/models"
)

func TestBuildCalendarAggregatesDay(t *testing.T) {
	opts := utcOpts
	opts.Now = time.Date(2024, time.February, 14, 12, 0, 0, 0, time.UTC)

	trades := normalized(
		models.RawTrade{ID: "1", Date: "2024-02-14", Time: "09:20", NetPnl: 200},
		models.RawTrade{ID: "2", Date: "2024-02-14", Time: "13:05", NetPnl: -50},
		models.RawTrade{ID: "3", Date: "2024-02-20", NetPnl: -80},
		models.RawTrade{ID: "4", Date: "2024-01-30", NetPnl: -300},
		models.RawTrade{ID: "5", NetPnl: 999},
	)

	cal := BuildCalendar(trades, 2024, time.February, opts)

	assert.Equal(t, "February 2024", cal.Label)
	require.Len(t, cal.Days, 35)
	require.Len(t, cal.Weeks, 5)
	assert.Equal(t, "2024-01-28", cal.Days[0].DateKey)
	assert.False(t, cal.Days[0].InMonth)

	valentine := cal.Days[17]
	assert.Equal(t, "2024-02-14", valentine.DateKey)
	assert.True(t, valentine.InMonth)
	assert.True(t, valentine.IsToday)
	assert.Equal(t, 150.0, valentine.Pnl)
	assert.Equal(t, 2, valentine.TradeCount)
	assert.Equal(t, 1, valentine.Wins)
	assert.Equal(t, 1, valentine.Losses)

	padding := cal.Days[2]
	assert.Equal(t, "2024-01-30", padding.DateKey)
	assert.Equal(t, -300.0, padding.Pnl, "padding cells still show their own trades")
	assert.Zero(t, cal.Weeks[0].Pnl, "week totals cover in-month days only")

	s := cal.Summary
	assert.Equal(t, 70.0, s.TotalPnl)
	assert.Equal(t, 3, s.TradeCount)
	assert.Equal(t, 2, s.TradingDays)
	assert.Equal(t, 1, s.WinningDays)
	assert.Equal(t, 1, s.LosingDays)
	assert.Equal(t, "2024-02-14", s.BestDay)
	assert.Equal(t, "2024-02-20", s.WorstDay)
	assert.Equal(t, -80.0, s.WorstDayPnl)

	var weekPnl float64
	var weekTrades int
	for _, w := range cal.Weeks {
		require.Len(t, w.Days, 7)
		weekPnl += w.Pnl
		weekTrades += w.TradeCount
	}
	assert.Equal(t, s.TotalPnl, weekPnl)
	assert.Equal(t, s.TradeCount, weekTrades)
}

func TestBuildCalendarGridLength(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		cells int
		first string
	}{
		{2024, time.February, 35, "2024-01-28"},
		{2024, time.March, 42, "2024-02-25"},
		{2015, time.February, 28, "2015-02-01"},
		{2024, time.September, 35, "2024-09-01"},
	}

	for _, tt := range tests {
		t.Run(tt.first, func(t *testing.T) {
			cal := BuildCalendar(nil, tt.year, tt.month, utcOpts)
			assert.Len(t, cal.Days, tt.cells)
			assert.Equal(t, tt.first, cal.Days[0].DateKey)
			first, ok := ParseTimestamp(cal.Days[0].DateKey, "", time.UTC)
			require.True(t, ok)
			assert.Equal(t, time.Sunday, first.Weekday())
		})
	}
}

func TestBuildCalendarEmptyMonth(t *testing.T) {
	cal := BuildCalendar(nil, 2024, time.June, utcOpts)

	assert.Equal(t, NotAvailable, cal.Summary.BestDay)
	assert.Equal(t, NotAvailable, cal.Summary.WorstDay)
	assert.Zero(t, cal.Summary.TradingDays)
	for _, d := range cal.Days {
		assert.False(t, d.IsToday)
	}
}

func TestBuildCalendarUsesLocalDates(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	opts := Options{Location: ist, Now: time.Date(2024, time.March, 1, 0, 30, 0, 0, ist)}

	trades := NormalizeAll([]models.RawTrade{
		{ID: "1", Date: "2024-03-01", Time: "00:15", NetPnl: 42},
	}, opts)

	cal := BuildCalendar(trades, 2024, time.March, opts)

	// March 2024 starts on a Friday.
	first := cal.Days[5]
	assert.Equal(t, "2024-03-01", first.DateKey)
	assert.Equal(t, 42.0, first.Pnl)
	assert.True(t, first.IsToday)
	assert.Equal(t, 42.0, cal.Summary.TotalPnl)
}
