package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trading-journal/internal/analytics"
	"trading-journal/internal/models"
	"trading-journal/internal/store"
)

// addJournalCommands adds the analytics views over the journal.
func addJournalCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newReportCmd(app))
	rootCmd.AddCommand(newPerformanceCmd(app))
	rootCmd.AddCommand(newPsychologyCmd(app))
	rootCmd.AddCommand(newInsightsCmd(app))
	rootCmd.AddCommand(newCalendarCmd(app))
}

// snapshot loads the journal and the requested (or active) challenge.
func (a *App) snapshot(ctx context.Context, challengeID string) (analytics.Snapshot, analytics.Options, error) {
	opts, err := a.Options()
	if err != nil {
		return analytics.Snapshot{}, opts, err
	}
	st, err := a.Store()
	if err != nil {
		return analytics.Snapshot{}, opts, err
	}
	snap, err := store.LoadSnapshot(ctx, st, st, challengeID)
	return snap, opts, err
}

// trades loads and normalizes every trade in the journal.
func (a *App) trades(ctx context.Context) ([]models.Trade, analytics.Options, error) {
	opts, err := a.Options()
	if err != nil {
		return nil, opts, err
	}
	st, err := a.Store()
	if err != nil {
		return nil, opts, err
	}
	raw, err := st.LoadTrades(ctx)
	if err != nil {
		return nil, opts, err
	}
	return analytics.NormalizeAll(raw, opts), opts, nil
}

func newReportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Complete analytics report",
		Long:  "Run every calculator over the journal and print a combined report.",
		Example: `  journal report
  journal report --challenge jan-2024 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			challengeID, _ := cmd.Flags().GetString("challenge")
			snap, opts, err := app.snapshot(ctx, challengeID)
			if err != nil {
				return err
			}

			start := time.Now()
			report := analytics.Analyze(snap, opts)
			app.Logger.Debug().
				Int("trades", report.TradeCount).
				Dur("duration", time.Since(start)).
				Msg("Report generated")

			if output.IsJSON() {
				return output.JSON(report)
			}

			output.Bold("Trading Journal Report - %s", opts.Now.In(opts.Location).Format("02-Jan-2006"))
			output.Println()
			if report.TradeCount == 0 {
				output.Info("No trades recorded yet.")
				output.Dim("Tip: add one with 'journal trade add' or import a CSV with 'journal trade import'.")
				return nil
			}

			renderPerformanceSummary(output, report.Performance)
			output.Println()
			if report.Challenge != nil {
				renderChallenge(output, *report.Challenge)
				output.Println()
			}
			renderInsightsSummary(output, report.Insights)
			output.Println()
			renderCalendar(output, report.Calendar)
			return nil
		},
	}

	cmd.Flags().String("challenge", "", "challenge id (default: the active challenge)")
	return cmd
}

func newPerformanceCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "performance",
		Short: "Win rate, P&L, streaks and drawdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			trades, _, err := app.trades(ctx)
			if err != nil {
				return err
			}
			m := analytics.CalculatePerformance(trades)
			if output.IsJSON() {
				return output.JSON(m)
			}

			output.Bold("Performance")
			renderPerformanceSummary(output, m)
			if m.TotalTrades == 0 {
				return nil
			}
			output.Println()
			renderPerformanceBreakdown(output, m)
			return nil
		},
	}
}

func newPsychologyCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "psychology",
		Short: "Confidence, emotions and mistakes against outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			trades, _, err := app.trades(ctx)
			if err != nil {
				return err
			}
			m := analytics.CalculatePsychology(trades)
			if output.IsJSON() {
				return output.JSON(m)
			}
			renderPsychology(output, m)
			return nil
		},
	}
}

func newInsightsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Mistakes, tags, setups and sentiment",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			trades, _, err := app.trades(ctx)
			if err != nil {
				return err
			}
			in := analytics.CalculateInsights(trades)
			if output.IsJSON() {
				return output.JSON(in)
			}
			renderInsightsSummary(output, in)
			if len(in.Setups) > 0 {
				output.Println()
				output.Bold("Setups")
				table := NewTable(output, "Setup", "Trades", "W/L", "Win Rate", "Total P&L", "Avg P&L")
				for _, s := range in.Setups {
					table.AddRow(
						TruncateString(s.Setup, 24),
						strconv.Itoa(s.Trades),
						fmt.Sprintf("%d/%d", s.Wins, s.Losses),
						FormatRate(s.WinRate),
						output.FormatPnL(s.TotalPnl),
						output.FormatPnL(s.AvgPnl),
					)
				}
				table.Render()
			}
			return nil
		},
	}
}

func newCalendarCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Monthly P&L calendar",
		Example: `  journal calendar
  journal calendar --month 2024-01 --tz Asia/Kolkata`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			trades, opts, err := app.trades(ctx)
			if err != nil {
				return err
			}

			now := opts.Now.In(opts.Location)
			year, month := now.Year(), now.Month()
			if m, _ := cmd.Flags().GetString("month"); m != "" {
				t, err := time.Parse("2006-01", m)
				if err != nil {
					return fmt.Errorf("invalid --month %q: expected YYYY-MM", m)
				}
				year, month = t.Year(), t.Month()
			}

			cal := analytics.BuildCalendar(trades, year, month, opts)
			if output.IsJSON() {
				return output.JSON(cal)
			}
			renderCalendar(output, cal)
			return nil
		},
	}

	cmd.Flags().String("month", "", "month to show as YYYY-MM (default: current month)")
	return cmd
}

func renderPerformanceSummary(output *Output, m analytics.PerformanceMetrics) {
	if m.TotalTrades == 0 {
		output.Info("No trades recorded yet.")
		return
	}

	output.KeyValues(
		"Trades", fmt.Sprintf("%d (%d W / %d L / %d BE)", m.TotalTrades, m.Wins, m.Losses, m.Breakevens),
		"Win rate", FormatRate(m.WinRate),
		"Total P&L", output.FormatPnL(m.TotalPnl),
		"Avg P&L", output.FormatPnL(m.AvgPnl),
		"Avg win / loss", output.FormatPnL(m.AvgWin)+" / "+output.FormatPnL(m.AvgLoss),
		"Largest win / loss", output.FormatPnL(m.LargestWin)+" / "+output.FormatPnL(m.LargestLoss),
		"Profit factor", fmt.Sprintf("%.2f", m.ProfitFactor),
		"Expectancy", output.FormatPnL(m.Expectancy),
		"Charges", FormatIndianCurrency(m.TotalCharges),
		"Max drawdown", FormatIndianCurrency(m.MaxDrawdown),
		"Current streak", formatStreak(m.CurrentStreak),
		"Best streaks", fmt.Sprintf("%d wins, %d losses", m.MaxConsecutiveWins, m.MaxConsecutiveLosses),
	)
}

func renderPerformanceBreakdown(output *Output, m analytics.PerformanceMetrics) {
	output.Bold("Days")
	output.KeyValues(
		"Trading days", strconv.Itoa(m.TradingDays),
		"Avg trades/day", fmt.Sprintf("%.1f", m.AvgTradesPerDay),
		"Max in a day", strconv.Itoa(m.MaxTradesInDay),
		"Overtrading days", strconv.Itoa(m.OvertradingDays),
		"Best day", labelled(m.BestDay, output.FormatPnL(m.BestDayPnl)),
		"Worst day", labelled(m.WorstDay, output.FormatPnL(m.WorstDayPnl)),
		"Day streaks", fmt.Sprintf("%d green, %d red", m.MaxConsecutiveWinDays, m.MaxConsecutiveLossDays),
	)
	output.Println()

	output.Bold("Strategies")
	output.Dim("Best: %s  Worst: %s", m.BestStrategy, m.WorstStrategy)
	renderGroups(output, "Strategy", m.ByStrategy)
	output.Println()

	output.Bold("Symbols")
	output.Dim("Most traded: %s", m.MostTradedSymbol)
	renderGroups(output, "Symbol", m.BySymbol)
	output.Println()

	output.Bold("Weekdays")
	table := NewTable(output, "Day", "Trades", "Win Rate", "Total P&L", "Avg P&L", "Avg Planned R:R")
	for _, day := range analytics.WeekdayOrder {
		ws := m.ByWeekday[day]
		if ws == nil {
			continue
		}
		rr := "-"
		if ws.RRSamples > 0 {
			rr = fmt.Sprintf("1:%.2f", ws.AvgPlannedRR)
		}
		table.AddRow(day, strconv.Itoa(ws.Trades), FormatRate(ws.WinRate), output.FormatPnL(ws.TotalPnl), output.FormatPnL(ws.AvgPnl), rr)
	}
	table.Render()
}

// renderGroups prints grouped stats ordered by total P&L, best first.
func renderGroups(output *Output, label string, groups map[string]*analytics.GroupStats) {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := groups[names[i]], groups[names[j]]
		if a.TotalPnl != b.TotalPnl {
			return a.TotalPnl > b.TotalPnl
		}
		return names[i] < names[j]
	})

	table := NewTable(output, label, "Trades", "W/L/BE", "Win Rate", "Total P&L", "Avg P&L")
	for _, name := range names {
		g := groups[name]
		table.AddRow(
			TruncateString(name, 24),
			strconv.Itoa(g.Trades),
			fmt.Sprintf("%d/%d/%d", g.Wins, g.Losses, g.Breakevens),
			FormatRate(g.WinRate),
			output.FormatPnL(g.TotalPnl),
			output.FormatPnL(g.AvgPnl),
		)
	}
	table.Render()
}

func renderPsychology(output *Output, m analytics.PsychologyMetrics) {
	output.Bold("Psychology")
	if m.TotalTrades == 0 {
		output.Info("No trades recorded yet.")
		return
	}
	output.KeyValues("Avg confidence", fmt.Sprintf("%.1f / 10", m.AvgConfidence))
	output.Println()

	output.Bold("Emotional state")
	table := NewTable(output, "State", "Trades", "Share", "Win Rate", "Avg P&L", "Avg R")
	for _, state := range analytics.EmotionalStateOrder {
		e := m.ByEmotionalState[state]
		if e == nil {
			continue
		}
		table.AddRow(state, strconv.Itoa(e.Count), FormatRate(e.Share), FormatRate(e.WinRate), output.FormatPnL(e.AvgPnl), formatR(e.AvgRealizedRR, e.RRSamples))
	}
	table.Render()
	output.Println()

	output.Bold("Confidence tiers")
	table = NewTable(output, "Tier", "Trades", "W/L", "Win Rate", "Avg P&L")
	for _, tier := range analytics.ConfidenceTierOrder {
		ts := m.ByConfidenceTier[tier]
		if ts == nil {
			continue
		}
		table.AddRow(tier, strconv.Itoa(ts.Count), fmt.Sprintf("%d/%d", ts.Wins, ts.Losses), FormatRate(ts.WinRate), output.FormatPnL(ts.AvgPnl))
	}
	table.Render()

	if len(m.ByEmotionBefore) > 0 {
		output.Println()
		output.Bold("Emotion before entry")
		names := make([]string, 0, len(m.ByEmotionBefore))
		for name := range m.ByEmotionBefore {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			a, b := m.ByEmotionBefore[names[i]], m.ByEmotionBefore[names[j]]
			if a.Count != b.Count {
				return a.Count > b.Count
			}
			return names[i] < names[j]
		})
		table = NewTable(output, "Emotion", "Trades", "Win Rate", "Avg P&L")
		for _, name := range names {
			e := m.ByEmotionBefore[name]
			table.AddRow(TruncateString(name, 20), strconv.Itoa(e.Count), FormatRate(e.WinRate), output.FormatPnL(e.AvgPnl))
		}
		table.Render()
	}

	if len(m.MistakeImpact) > 0 {
		output.Println()
		output.Bold("Costliest mistakes")
		table = NewTable(output, "Mistake", "Count", "Share", "Total P&L", "Avg P&L", "Avg R")
		for _, ms := range m.MistakeImpact {
			table.AddRow(TruncateString(ms.Mistake, 24), strconv.Itoa(ms.Count), FormatRate(ms.Share), output.FormatPnL(ms.TotalPnl), output.FormatPnL(ms.AvgPnl), formatR(ms.AvgRR, ms.RRSamples))
		}
		table.Render()
	}
}

func renderInsightsSummary(output *Output, in analytics.JournalInsights) {
	output.Bold("Insights")
	output.KeyValues(
		"Discipline", FormatRate(in.DisciplineRate)+" of trades without mistakes",
		"Most used setup", labelled(in.MostUsedStrategy, fmt.Sprintf("%d trades", in.MostUsedStrategyCount)),
	)

	renderImpacts(output, "Mistakes (worst first)", in.Mistakes)
	renderImpacts(output, "Tags (best first)", in.Tags)

	if len(in.Sentiment) > 0 {
		parts := make([]string, 0, len(in.Sentiment))
		for _, s := range in.Sentiment {
			parts = append(parts, fmt.Sprintf("%s %.0f%%", s.Emotion, s.Share))
		}
		output.Println()
		output.Bold("Sentiment")
		output.Printf("  %s\n", strings.Join(parts, ", "))
	}
}

func renderImpacts(output *Output, title string, impacts []analytics.TagImpact) {
	if len(impacts) == 0 {
		return
	}
	output.Println()
	output.Bold(title)
	table := NewTable(output, "Name", "Count", "Total P&L", "Avg P&L")
	for _, ti := range impacts {
		table.AddRow(TruncateString(ti.Name, 24), strconv.Itoa(ti.Count), output.FormatPnL(ti.TotalPnl), output.FormatPnL(ti.AvgPnl))
	}
	table.Render()
}

func renderCalendar(output *Output, cal analytics.CalendarMonth) {
	output.Bold("%s", cal.Label)
	table := NewTable(output, "Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Week")
	for _, week := range cal.Weeks {
		cells := make([]string, 0, 8)
		for _, d := range week.Days {
			cells = append(cells, calendarCell(output, d))
		}
		total := ""
		if week.TradeCount > 0 {
			total = output.FormatPnL(week.Pnl)
		}
		table.AddRow(append(cells, total)...)
	}
	table.Render()
	output.Println()

	s := cal.Summary
	output.KeyValues(
		"Month P&L", output.FormatPnL(s.TotalPnl),
		"Trades", strconv.Itoa(s.TradeCount),
		"Trading days", fmt.Sprintf("%d (%d green / %d red)", s.TradingDays, s.WinningDays, s.LosingDays),
		"Best day", labelled(s.BestDay, output.FormatPnL(s.BestDayPnl)),
		"Worst day", labelled(s.WorstDay, output.FormatPnL(s.WorstDayPnl)),
	)
}

// calendarCell shows the day number and, on trading days, the day's P&L.
func calendarCell(output *Output, d analytics.CalendarDay) string {
	label := strconv.Itoa(d.Day)
	if d.IsToday {
		label += "*"
	}
	if !d.InMonth {
		return output.DimText(label)
	}
	if d.TradeCount == 0 {
		return label
	}
	return label + " " + output.ColoredString(output.PnLColor(d.Pnl), FormatCompactPnL(d.Pnl))
}

// labelled joins a label with its value, or returns N/A alone.
func labelled(label, value string) string {
	if label == analytics.NotAvailable {
		return label
	}
	return label + " (" + value + ")"
}

func formatStreak(n int) string {
	switch {
	case n > 0:
		return fmt.Sprintf("%d win(s)", n)
	case n < 0:
		return fmt.Sprintf("%d loss(es)", -n)
	default:
		return "-"
	}
}

// formatR prints an average R multiple, or "-" without samples.
func formatR(avg float64, samples int) string {
	if samples == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2fR", avg)
}
