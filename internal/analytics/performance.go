package analytics

import (
	"sort"

	"trading-journal/internal/models"
)

// OvertradingThreshold is the number of trades in one day above which the
// day counts as overtraded.
const OvertradingThreshold = 7

// GroupStats holds win/loss and P&L statistics for a group of trades.
type GroupStats struct {
	Trades     int     `json:"trades"`
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	Breakevens int     `json:"breakevens"`
	WinRate    float64 `json:"winRate"`
	TotalPnl   float64 `json:"totalPnl"`
	AvgPnl     float64 `json:"avgPnl"`
}

func (g *GroupStats) add(t models.Trade) {
	g.Trades++
	g.TotalPnl += t.NetPnl
	switch {
	case t.IsWin():
		g.Wins++
	case t.IsLoss():
		g.Losses++
	default:
		g.Breakevens++
	}
}

func (g *GroupStats) finish() {
	g.WinRate = percent(float64(g.Wins), float64(g.Trades))
	g.AvgPnl = mean(g.TotalPnl, g.Trades)
}

// WeekdayStats extends GroupStats with the average planned risk:reward of
// the trades taken on that weekday.
type WeekdayStats struct {
	GroupStats
	AvgPlannedRR float64 `json:"avgPlannedRR"`
	RRSamples    int     `json:"rrSamples"`

	rrSum float64
}

// Extreme pairs an extreme value with the P&L of the trade it came from.
type Extreme struct {
	Value   float64 `json:"value"`
	Pnl     float64 `json:"pnl"`
	TradeID string  `json:"tradeId"`
}

// PerformanceMetrics summarizes trade- and day-level performance.
//
// Order-sensitive fields (computed over trades sorted by timestamp):
// MaxConsecutiveWins, MaxConsecutiveLosses, CurrentStreak, MaxDrawdown.
// Day streaks are computed over days sorted by date key.
type PerformanceMetrics struct {
	TotalTrades int     `json:"totalTrades"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	Breakevens  int     `json:"breakevens"`
	WinRate     float64 `json:"winRate"`  // percent of all trades
	LossRate    float64 `json:"lossRate"` // percent of all trades

	TotalPnl     float64 `json:"totalPnl"`
	GrossProfit  float64 `json:"grossProfit"`
	GrossLoss    float64 `json:"grossLoss"` // signed, <= 0
	AvgPnl       float64 `json:"avgPnl"`
	AvgWin       float64 `json:"avgWin"`
	AvgLoss      float64 `json:"avgLoss"` // signed, <= 0
	LargestWin   float64 `json:"largestWin"`
	LargestLoss  float64 `json:"largestLoss"` // signed, <= 0
	ProfitFactor float64 `json:"profitFactor"`
	Expectancy   float64 `json:"expectancy"`
	TotalCharges float64 `json:"totalCharges"`

	MaxConsecutiveWins     int `json:"maxConsecutiveWins"`
	MaxConsecutiveLosses   int `json:"maxConsecutiveLosses"`
	MaxConsecutiveWinDays  int `json:"maxConsecutiveWinDays"`
	MaxConsecutiveLossDays int `json:"maxConsecutiveLossDays"`
	CurrentStreak          int `json:"currentStreak"` // +n wins, -n losses

	MaxDrawdown float64 `json:"maxDrawdown"` // currency units

	MaxCapital  Extreme `json:"maxCapital"`
	MinCapital  Extreme `json:"minCapital"`
	MaxQuantity Extreme `json:"maxQuantity"`
	MinQuantity Extreme `json:"minQuantity"`

	ByStrategy map[string]*GroupStats   `json:"byStrategy"`
	BySymbol   map[string]*GroupStats   `json:"bySymbol"`
	ByWeekday  map[string]*WeekdayStats `json:"byWeekday"`

	BestStrategy     string  `json:"bestStrategy"`
	WorstStrategy    string  `json:"worstStrategy"`
	MostTradedSymbol string  `json:"mostTradedSymbol"`
	BestDay          string  `json:"bestDay"`
	BestDayPnl       float64 `json:"bestDayPnl"`
	WorstDay         string  `json:"worstDay"`
	WorstDayPnl      float64 `json:"worstDayPnl"`

	TradingDays     int     `json:"tradingDays"`
	AvgTradesPerDay float64 `json:"avgTradesPerDay"`
	MaxTradesInDay  int     `json:"maxTradesInDay"`
	SingleTradeDays int     `json:"singleTradeDays"`
	OvertradingDays int     `json:"overtradingDays"`
}

func newPerformanceMetrics() PerformanceMetrics {
	return PerformanceMetrics{
		ByStrategy:       make(map[string]*GroupStats),
		BySymbol:         make(map[string]*GroupStats),
		ByWeekday:        make(map[string]*WeekdayStats),
		BestStrategy:     NotAvailable,
		WorstStrategy:    NotAvailable,
		MostTradedSymbol: NotAvailable,
		BestDay:          NotAvailable,
		WorstDay:         NotAvailable,
	}
}

// CalculatePerformance computes performance metrics over trades. An empty
// input yields zero counts, empty maps and "N/A" labels.
func CalculatePerformance(trades []models.Trade) PerformanceMetrics {
	m := newPerformanceMetrics()
	if len(trades) == 0 {
		return m
	}

	var symbolOrder []string
	for i, t := range trades {
		m.TotalTrades++
		m.TotalPnl += t.NetPnl
		m.TotalCharges += t.Charges

		switch {
		case t.IsWin():
			m.Wins++
			m.GrossProfit += t.NetPnl
			if t.NetPnl > m.LargestWin {
				m.LargestWin = t.NetPnl
			}
		case t.IsLoss():
			m.Losses++
			m.GrossLoss += t.NetPnl
			if t.NetPnl < m.LargestLoss {
				m.LargestLoss = t.NetPnl
			}
		default:
			m.Breakevens++
		}

		if i == 0 {
			m.MaxCapital = Extreme{Value: t.TotalAmount, Pnl: t.NetPnl, TradeID: t.ID}
			m.MinCapital = m.MaxCapital
			m.MaxQuantity = Extreme{Value: t.Quantity, Pnl: t.NetPnl, TradeID: t.ID}
			m.MinQuantity = m.MaxQuantity
		} else {
			// Strict comparisons keep the first occurrence on ties.
			if t.TotalAmount > m.MaxCapital.Value {
				m.MaxCapital = Extreme{Value: t.TotalAmount, Pnl: t.NetPnl, TradeID: t.ID}
			}
			if t.TotalAmount < m.MinCapital.Value {
				m.MinCapital = Extreme{Value: t.TotalAmount, Pnl: t.NetPnl, TradeID: t.ID}
			}
			if t.Quantity > m.MaxQuantity.Value {
				m.MaxQuantity = Extreme{Value: t.Quantity, Pnl: t.NetPnl, TradeID: t.ID}
			}
			if t.Quantity < m.MinQuantity.Value {
				m.MinQuantity = Extreme{Value: t.Quantity, Pnl: t.NetPnl, TradeID: t.ID}
			}
		}

		strategy := strategyLabel(t.StrategyUsed)
		if m.ByStrategy[strategy] == nil {
			m.ByStrategy[strategy] = &GroupStats{}
		}
		m.ByStrategy[strategy].add(t)

		symbol := strategyLabel(t.Symbol)
		if m.BySymbol[symbol] == nil {
			m.BySymbol[symbol] = &GroupStats{}
			symbolOrder = append(symbolOrder, symbol)
		}
		m.BySymbol[symbol].add(t)

		if t.HasDate && t.Weekday != "" {
			ws := m.ByWeekday[t.Weekday]
			if ws == nil {
				ws = &WeekdayStats{}
				m.ByWeekday[t.Weekday] = ws
			}
			ws.add(t)
			// Trades without a stop have no defined risk and stay out of R:R.
			if t.PlannedRR != nil && t.StopLoss != nil {
				ws.rrSum += *t.PlannedRR
				ws.RRSamples++
			}
		}
	}

	total := float64(m.TotalTrades)
	m.WinRate = percent(float64(m.Wins), total)
	m.LossRate = percent(float64(m.Losses), total)
	m.AvgPnl = mean(m.TotalPnl, m.TotalTrades)
	m.AvgWin = mean(m.GrossProfit, m.Wins)
	m.AvgLoss = mean(m.GrossLoss, m.Losses)
	if m.GrossLoss != 0 {
		m.ProfitFactor = m.GrossProfit / -m.GrossLoss
	}
	m.Expectancy = float64(m.Wins)/total*m.AvgWin + float64(m.Losses)/total*m.AvgLoss

	for _, g := range m.ByStrategy {
		g.finish()
	}
	for _, g := range m.BySymbol {
		g.finish()
	}
	for _, ws := range m.ByWeekday {
		ws.finish()
		ws.AvgPlannedRR = mean(ws.rrSum, ws.RRSamples)
	}

	m.BestStrategy, m.WorstStrategy = rankStrategies(m.ByStrategy)
	m.MostTradedSymbol = mostTraded(symbolOrder, m.BySymbol)

	sorted := SortByTimestamp(trades)
	m.MaxConsecutiveWins, m.MaxConsecutiveLosses = tradeStreaks(sorted)
	m.CurrentStreak = currentStreak(sorted)
	m.MaxDrawdown = absoluteDrawdown(sorted)

	applyDayActivity(&m, trades)

	return m
}

// tradeStreaks scans trades in order; a breakeven resets both counters.
func tradeStreaks(sorted []models.Trade) (maxWins, maxLosses int) {
	pnls := make([]float64, len(sorted))
	for i, t := range sorted {
		pnls[i] = t.NetPnl
	}
	return streaks(pnls)
}

func streaks(pnls []float64) (maxWins, maxLosses int) {
	var wins, losses int
	for _, p := range pnls {
		switch {
		case p > 0:
			wins++
			losses = 0
		case p < 0:
			losses++
			wins = 0
		default:
			wins, losses = 0, 0
		}
		if wins > maxWins {
			maxWins = wins
		}
		if losses > maxLosses {
			maxLosses = losses
		}
	}
	return maxWins, maxLosses
}

func currentStreak(sorted []models.Trade) int {
	streak := 0
	for i := len(sorted) - 1; i >= 0; i-- {
		p := sorted[i].NetPnl
		switch {
		case p > 0 && streak >= 0:
			streak++
		case p < 0 && streak <= 0:
			streak--
		default:
			return streak
		}
	}
	return streak
}

// absoluteDrawdown walks the cumulative P&L series from zero and returns the
// largest fall from a running peak, in currency units.
func absoluteDrawdown(sorted []models.Trade) float64 {
	var cumulative, peak, maxDD float64
	for _, t := range sorted {
		cumulative += t.NetPnl
		if cumulative > peak {
			peak = cumulative
		}
		if dd := peak - cumulative; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

func rankStrategies(groups map[string]*GroupStats) (best, worst string) {
	if len(groups) == 0 {
		return NotAvailable, NotAvailable
	}
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	best, worst = names[0], names[0]
	for _, name := range names[1:] {
		if groups[name].TotalPnl > groups[best].TotalPnl {
			best = name
		}
		if groups[name].TotalPnl < groups[worst].TotalPnl {
			worst = name
		}
	}
	return best, worst
}

func mostTraded(order []string, groups map[string]*GroupStats) string {
	best := NotAvailable
	count := 0
	for _, name := range order {
		if groups[name].Trades > count {
			best = name
			count = groups[name].Trades
		}
	}
	return best
}

// dayAggregate is the per-calendar-day rollup shared by day-level metrics
// and the calendar.
type dayAggregate struct {
	Key    string
	Pnl    float64
	Trades int
	Wins   int
	Losses int
}

// groupByDay buckets dated trades by date key. Undated trades are skipped.
func groupByDay(trades []models.Trade) map[string]*dayAggregate {
	days := make(map[string]*dayAggregate)
	for _, t := range trades {
		if !t.HasDate {
			continue
		}
		d := days[t.DateKey]
		if d == nil {
			d = &dayAggregate{Key: t.DateKey}
			days[t.DateKey] = d
		}
		d.Pnl += t.NetPnl
		d.Trades++
		if t.IsWin() {
			d.Wins++
		} else if t.IsLoss() {
			d.Losses++
		}
	}
	return days
}

func sortedDays(days map[string]*dayAggregate) []*dayAggregate {
	out := make([]*dayAggregate, 0, len(days))
	for _, d := range days {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func applyDayActivity(m *PerformanceMetrics, trades []models.Trade) {
	days := sortedDays(groupByDay(trades))
	if len(days) == 0 {
		return
	}

	datedTrades := 0
	pnls := make([]float64, len(days))
	best, worst := days[0], days[0]
	for i, d := range days {
		datedTrades += d.Trades
		pnls[i] = d.Pnl
		if d.Trades > m.MaxTradesInDay {
			m.MaxTradesInDay = d.Trades
		}
		if d.Trades == 1 {
			m.SingleTradeDays++
		}
		if d.Trades > OvertradingThreshold {
			m.OvertradingDays++
		}
		if d.Pnl > best.Pnl {
			best = d
		}
		if d.Pnl < worst.Pnl {
			worst = d
		}
	}

	m.TradingDays = len(days)
	m.AvgTradesPerDay = mean(float64(datedTrades), len(days))
	m.MaxConsecutiveWinDays, m.MaxConsecutiveLossDays = streaks(pnls)
	m.BestDay, m.BestDayPnl = best.Key, best.Pnl
	m.WorstDay, m.WorstDayPnl = worst.Key, worst.Pnl
}
