package analytics

import (
	"math"
	"time"

	"trading-journal/internal/models"
)

// EquityPoint is the account balance after one in-window trade.
type EquityPoint struct {
	Timestamp   time.Time `json:"timestamp"`
	TradeID     string    `json:"tradeId"`
	Balance     float64   `json:"balance"`
	DrawdownPct float64   `json:"drawdownPct"`
}

// ChallengeProgress reports pacing towards a capital-growth goal.
type ChallengeProgress struct {
	ChallengeID string `json:"challengeId"`
	Name        string `json:"name,omitempty"`
	Active      bool   `json:"active"`
	WindowStart string `json:"windowStart,omitempty"`
	WindowEnd   string `json:"windowEnd,omitempty"`

	StartingCapital  float64 `json:"startingCapital"`
	TargetCapital    float64 `json:"targetCapital"`
	CurrentCapital   float64 `json:"currentCapital"`
	TotalPnl         float64 `json:"totalPnl"`
	ProgressToTarget float64 `json:"progressToTarget"` // percent, clamped to [0, 100]
	TargetReached    bool    `json:"targetReached"`

	DaysRemaining     int     `json:"daysRemaining"`
	DaysElapsed       int     `json:"daysElapsed"`
	Lapsed            bool    `json:"lapsed"`
	DailyTargetAmount float64 `json:"dailyTargetAmount"`
	DailyProfitToday  float64 `json:"dailyProfitToday"`

	MaxDrawdownPct float64       `json:"maxDrawdownPct"`
	EquityCurve    []EquityPoint `json:"equityCurve"`

	TradeCount int     `json:"tradeCount"`
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	WinRate    float64 `json:"winRate"` // percent of in-window trades
}

// challengeWindow is the inclusive [start, deadline) range of a challenge.
// A missing bound leaves that side open.
type challengeWindow struct {
	start    time.Time
	deadline time.Time
	hasStart bool
	hasEnd   bool
}

func newChallengeWindow(c models.Challenge, loc *time.Location) challengeWindow {
	var w challengeWindow
	if ts, ok := ParseTimestamp(c.StartDate, c.StartTime, loc); ok {
		w.start, w.hasStart = ts, true
	}
	// The target date is a trading day of the challenge, so the window
	// closes at the start of the following day.
	if ts, ok := ParseTimestamp(c.TargetDate, "", loc); ok {
		w.deadline, w.hasEnd = ts.AddDate(0, 0, 1), true
	}
	return w
}

func (w challengeWindow) contains(t models.Trade) bool {
	if !t.HasDate {
		return false
	}
	if w.hasStart && t.Timestamp.Before(w.start) {
		return false
	}
	if w.hasEnd && !t.Timestamp.Before(w.deadline) {
		return false
	}
	return true
}

// ChallengeTrades returns the dated trades inside the challenge window, in
// ascending timestamp order.
func ChallengeTrades(c models.Challenge, trades []models.Trade, opts Options) []models.Trade {
	opts = opts.withDefaults()
	w := newChallengeWindow(c, opts.Location)

	var in []models.Trade
	for _, t := range SortByTimestamp(trades) {
		if w.contains(t) {
			in = append(in, t)
		}
	}
	return in
}

// TrackChallenge measures progress of a challenge over the trades inside its
// window. It only reports a lapsed window; deactivating the challenge is
// left to the caller.
func TrackChallenge(c models.Challenge, trades []models.Trade, opts Options) ChallengeProgress {
	opts = opts.withDefaults()
	now := opts.now()
	w := newChallengeWindow(c, opts.Location)

	p := ChallengeProgress{
		ChallengeID:     c.ID,
		Name:            c.Name,
		Active:          c.Active,
		StartingCapital: c.StartingCapital,
		TargetCapital:   c.TargetCapital,
		CurrentCapital:  c.StartingCapital,
		EquityCurve:     []EquityPoint{},
	}
	if w.hasStart {
		p.WindowStart = DateKey(w.start)
	}
	if w.hasEnd {
		p.WindowEnd = DateKey(w.deadline.AddDate(0, 0, -1))
	}

	todayKey := DateKey(now)
	balance := c.StartingCapital
	peak := c.StartingCapital

	for _, t := range ChallengeTrades(c, trades, opts) {
		p.TradeCount++
		p.TotalPnl += t.NetPnl
		if t.IsWin() {
			p.Wins++
		} else if t.IsLoss() {
			p.Losses++
		}
		if t.DateKey == todayKey {
			p.DailyProfitToday += t.NetPnl
		}

		balance += t.NetPnl
		var dd float64
		if balance > peak {
			peak = balance
		} else if peak > 0 {
			dd = (peak - balance) / peak * 100
		}
		if dd > p.MaxDrawdownPct {
			p.MaxDrawdownPct = dd
		}
		p.EquityCurve = append(p.EquityCurve, EquityPoint{
			Timestamp:   t.Timestamp,
			TradeID:     t.ID,
			Balance:     balance,
			DrawdownPct: dd,
		})
	}

	p.CurrentCapital = c.StartingCapital + p.TotalPnl
	p.WinRate = percent(float64(p.Wins), float64(p.TradeCount))
	p.ProgressToTarget = ProgressToTarget(c.StartingCapital, c.TargetCapital, p.CurrentCapital)
	p.TargetReached = c.TargetCapital != c.StartingCapital && p.ProgressToTarget >= 100

	if w.hasStart {
		p.DaysElapsed = max(0, calendarDaysBetween(w.start, now)+1)
	}
	if w.hasEnd {
		// Counted to the exclusive deadline so the target date itself is
		// still a remaining day until it ends.
		remaining := math.Ceil(w.deadline.Sub(now).Hours() / 24)
		p.DaysRemaining = int(math.Max(0, remaining))
		p.Lapsed = !now.Before(w.deadline)
	}

	if c.TargetCapital != c.StartingCapital && p.ProgressToTarget < 100 {
		p.DailyTargetAmount = (c.TargetCapital - p.CurrentCapital) / float64(max(p.DaysRemaining, 1))
	}

	return p
}

// ProgressToTarget returns how far current has moved from start towards
// target, as a percentage clamped to [0, 100]. A zero-width goal is 0.
func ProgressToTarget(start, target, current float64) float64 {
	span := target - start
	if span == 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		return 0
	}
	progress := (current - start) / span * 100
	if math.IsNaN(progress) {
		return 0
	}
	return math.Min(100, math.Max(0, progress))
}

// calendarDaysBetween counts calendar days from a to b, ignoring clock time
// and DST shifts.
func calendarDaysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
