package analytics

import (
	"time"

	"trading-journal/internal/models"
)

// CalendarDay is one cell of the month grid.
type CalendarDay struct {
	DateKey    string  `json:"dateKey"`
	Day        int     `json:"day"`
	InMonth    bool    `json:"inMonth"`
	IsToday    bool    `json:"isToday"`
	Pnl        float64 `json:"pnl"`
	TradeCount int     `json:"tradeCount"`
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
}

// CalendarWeek is one Sunday-first row of the grid. Its totals cover the
// in-month days only.
type CalendarWeek struct {
	Days       []CalendarDay `json:"days"`
	Pnl        float64       `json:"pnl"`
	TradeCount int           `json:"tradeCount"`
}

// MonthSummary totals the in-month days of the grid.
type MonthSummary struct {
	TotalPnl    float64 `json:"totalPnl"`
	TradeCount  int     `json:"tradeCount"`
	TradingDays int     `json:"tradingDays"`
	WinningDays int     `json:"winningDays"`
	LosingDays  int     `json:"losingDays"`
	BestDay     string  `json:"bestDay"`
	BestDayPnl  float64 `json:"bestDayPnl"`
	WorstDay    string  `json:"worstDay"`
	WorstDayPnl float64 `json:"worstDayPnl"`
}

// CalendarMonth is the display grid for one month.
type CalendarMonth struct {
	Year    int            `json:"year"`
	Month   int            `json:"month"`
	Label   string         `json:"label"`
	Days    []CalendarDay  `json:"days"`
	Weeks   []CalendarWeek `json:"weeks"`
	Summary MonthSummary   `json:"summary"`
}

// BuildCalendar lays out a Sunday-first grid for the month, padded with
// days from the neighbouring months so its length is a multiple of 7, and
// fills every cell with that day's trades. Undated trades are ignored.
func BuildCalendar(trades []models.Trade, year int, month time.Month, opts Options) CalendarMonth {
	opts = opts.withDefaults()

	first := time.Date(year, month, 1, 0, 0, 0, 0, opts.Location)
	year, month = first.Year(), first.Month()

	lead := int(first.Weekday())
	cells := lead + daysIn(month, year)
	if rem := cells % 7; rem != 0 {
		cells += 7 - rem
	}

	todayKey := ""
	if !opts.Now.IsZero() {
		todayKey = DateKey(opts.now())
	}

	cal := CalendarMonth{
		Year:  year,
		Month: int(month),
		Label: first.Format("January 2006"),
		Days:  make([]CalendarDay, 0, cells),
		Weeks: make([]CalendarWeek, 0, cells/7),
		Summary: MonthSummary{
			BestDay:  NotAvailable,
			WorstDay: NotAvailable,
		},
	}

	days := groupByDay(trades)
	start := first.AddDate(0, 0, -lead)
	var best, worst *dayAggregate

	for i := 0; i < cells; i++ {
		date := start.AddDate(0, 0, i)
		key := DateKey(date)
		cell := CalendarDay{
			DateKey: key,
			Day:     date.Day(),
			InMonth: date.Month() == month && date.Year() == year,
			IsToday: key == todayKey,
		}
		if d := days[key]; d != nil {
			cell.Pnl = d.Pnl
			cell.TradeCount = d.Trades
			cell.Wins = d.Wins
			cell.Losses = d.Losses

			if cell.InMonth {
				s := &cal.Summary
				s.TotalPnl += d.Pnl
				s.TradeCount += d.Trades
				s.TradingDays++
				if d.Pnl > 0 {
					s.WinningDays++
				} else if d.Pnl < 0 {
					s.LosingDays++
				}
				if best == nil || d.Pnl > best.Pnl {
					best = d
				}
				if worst == nil || d.Pnl < worst.Pnl {
					worst = d
				}
			}
		}
		cal.Days = append(cal.Days, cell)

		if i%7 == 0 {
			cal.Weeks = append(cal.Weeks, CalendarWeek{Days: make([]CalendarDay, 0, 7)})
		}
		week := &cal.Weeks[len(cal.Weeks)-1]
		week.Days = append(week.Days, cell)
		if cell.InMonth {
			week.Pnl += cell.Pnl
			week.TradeCount += cell.TradeCount
		}
	}

	if best != nil {
		cal.Summary.BestDay, cal.Summary.BestDayPnl = best.Key, best.Pnl
		cal.Summary.WorstDay, cal.Summary.WorstDayPnl = worst.Key, worst.Pnl
	}

	return cal
}
