// Package analytics turns a snapshot of journal trades into performance,
// psychology, journal-insight, challenge and calendar metrics.
//
// Every calculator is a pure function of its arguments: no I/O, no clock
// reads and no state carried between calls. Callers re-run the pipeline
// whenever the underlying snapshot changes.
//
// Order-sensitive metrics (trade and day streaks, both drawdown forms, the
// challenge equity curve and the current streak) sort their input by
// timestamp before scanning. All other metrics are order-independent.
package analytics

import (
	"time"

	"trading-journal/internal/models"
)

// NotAvailable is reported for label fields that have no data.
const NotAvailable = "N/A"

// Options carries the ambient inputs a calculation depends on.
type Options struct {
	// Location is used to interpret trade dates and times. Defaults to time.Local.
	Location *time.Location
	// Now anchors "today" and days-remaining computations.
	Now time.Time
}

// DefaultOptions returns options in the local zone anchored at the current time.
func DefaultOptions() Options {
	return Options{Location: time.Local, Now: time.Now()}
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.Local
	}
	return o
}

// now returns Now expressed in the options' location.
func (o Options) now() time.Time {
	return o.Now.In(o.Location)
}

// Snapshot is a consistent view of the journal handed to the engine.
type Snapshot struct {
	Trades    []models.RawTrade `json:"trades"`
	Challenge *models.Challenge `json:"challenge,omitempty"`
}

// Report bundles the output of every calculator for one snapshot.
type Report struct {
	GeneratedAt time.Time          `json:"generatedAt"`
	TradeCount  int                `json:"tradeCount"`
	Performance PerformanceMetrics `json:"performance"`
	Psychology  PsychologyMetrics  `json:"psychology"`
	Insights    JournalInsights    `json:"insights"`
	Challenge   *ChallengeProgress `json:"challenge,omitempty"`
	Calendar    CalendarMonth      `json:"calendar"`
}

// Analyze normalizes the snapshot once and runs every calculator over it.
// The calendar covers the month containing opts.Now.
func Analyze(snap Snapshot, opts Options) Report {
	opts = opts.withDefaults()
	trades := NormalizeAll(snap.Trades, opts)
	now := opts.now()

	report := Report{
		GeneratedAt: opts.Now,
		TradeCount:  len(trades),
		Performance: CalculatePerformance(trades),
		Psychology:  CalculatePsychology(trades),
		Insights:    CalculateInsights(trades),
		Calendar:    BuildCalendar(trades, now.Year(), now.Month(), opts),
	}

	if snap.Challenge != nil {
		progress := TrackChallenge(*snap.Challenge, trades, opts)
		report.Challenge = &progress
	}

	return report
}

// percent returns part/whole*100, or 0 when whole is zero.
func percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}

// mean returns sum/n, or 0 when n is zero.
func mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// strategyLabel groups trades recorded without a strategy.
func strategyLabel(s string) string {
	if s == "" {
		return "Unspecified"
	}
	return s
}
