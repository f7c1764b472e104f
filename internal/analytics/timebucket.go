package analytics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"trading-journal/internal/models"
)

// WeekdayOrder lists the market days in display order.
var WeekdayOrder = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// ParseTimestamp combines a calendar date and an optional clock time into a
// single local timestamp. The date must start with YYYY-MM-DD; the clock may
// be HH:MM or HH:MM:SS. A missing or unreadable clock falls back to local
// midnight. The second return value is false when the date is unusable.
func ParseTimestamp(date, clock string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}

	year, month, day, ok := parseDateParts(date)
	if !ok {
		return time.Time{}, false
	}

	hour, minute, second, ok := parseClockParts(clock)
	if !ok {
		hour, minute, second = 0, 0, 0
	}

	return time.Date(year, time.Month(month), day, hour, minute, second, 0, loc), true
}

func parseDateParts(date string) (int, int, int, bool) {
	date = strings.TrimSpace(date)
	if len(date) < 10 {
		return 0, 0, 0, false
	}
	parts := strings.Split(date[:10], "-")
	if len(parts) != 3 || len(parts[0]) != 4 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return 0, 0, 0, false
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, false
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, 0, false
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil || day < 1 || day > daysIn(time.Month(month), year) {
		return 0, 0, 0, false
	}
	return year, month, day, true
}

func parseClockParts(clock string) (int, int, int, bool) {
	clock = strings.TrimSpace(clock)
	if clock == "" {
		return 0, 0, 0, false
	}
	parts := strings.Split(clock, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, 0, false
	}

	limits := []int{23, 59, 59}
	values := make([]int, 3)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v < 0 || v > limits[i] {
			return 0, 0, 0, false
		}
		values[i] = v
	}
	return values[0], values[1], values[2], true
}

// daysIn returns the number of days in the given month.
func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DateKey returns the YYYY-MM-DD key of t in t's own location.
func DateKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// MarketWeekday returns the weekday name for Monday through Friday and an
// empty string for weekends.
func MarketWeekday(t time.Time) string {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return ""
	default:
		return t.Weekday().String()
	}
}

// SortByTimestamp returns a copy of trades in ascending timestamp order.
// Trades sharing a timestamp keep their input order; undated trades go last.
func SortByTimestamp(trades []models.Trade) []models.Trade {
	sorted := make([]models.Trade, len(trades))
	copy(sorted, trades)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.HasDate != b.HasDate {
			return a.HasDate
		}
		if !a.HasDate {
			return false
		}
		return a.Timestamp.Before(b.Timestamp)
	})
	return sorted
}
