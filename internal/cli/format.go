package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	lakh  = 1e5
	crore = 1e7
)

// FormatIndianCurrency renders amount in rupees with lakh/crore grouping,
// e.g. ₹1,23,45,678.90.
func FormatIndianCurrency(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	whole, paise, _ := strings.Cut(strconv.FormatFloat(amount, 'f', 2, 64), ".")
	return sign + "₹" + groupIndian(whole) + "." + paise
}

// groupIndian inserts commas into a run of digits: the last three digits
// form one group and every two digits before them another.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	head, groups := digits[:len(digits)-3], []string{digits[len(digits)-3:]}
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	return head + "," + strings.Join(groups, ",")
}

// FormatPnL is FormatIndianCurrency with an explicit + on gains.
func FormatPnL(pnl float64) string {
	if pnl > 0 {
		return "+" + FormatIndianCurrency(pnl)
	}
	return FormatIndianCurrency(pnl)
}

// FormatPercent formats a signed change such as a return on capital.
func FormatPercent(value float64) string {
	if value > 0 {
		return fmt.Sprintf("+%.2f%%", value)
	}
	return fmt.Sprintf("%.2f%%", value)
}

// FormatRate formats a 0-100 rate without a sign.
func FormatRate(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatCompact shortens capital figures to lakhs or crores.
func FormatCompact(amount float64) string {
	switch abs := math.Abs(amount); {
	case abs >= crore:
		return fmt.Sprintf("%.2f Cr", amount/crore)
	case abs >= lakh:
		return fmt.Sprintf("%.2f L", amount/lakh)
	default:
		return FormatIndianCurrency(amount)
	}
}

// FormatCompactPnL fits a signed P&L into a calendar cell.
func FormatCompactPnL(pnl float64) string {
	sign := ""
	switch {
	case pnl > 0:
		sign = "+"
	case pnl < 0:
		sign = "-"
	}

	abs := math.Abs(pnl)
	for _, u := range []struct {
		size   float64
		suffix string
	}{{crore, "Cr"}, {lakh, "L"}, {1e3, "K"}} {
		if abs >= u.size {
			return fmt.Sprintf("%s%.1f%s", sign, abs/u.size, u.suffix)
		}
	}
	return sign + strconv.FormatFloat(abs, 'f', 0, 64)
}

// FormatPrice formats a fill price. Sub-10 option premiums keep four decimals.
func FormatPrice(price float64) string {
	switch {
	case price == 0:
		return "-"
	case math.Abs(price) < 10:
		return strconv.FormatFloat(price, 'f', 4, 64)
	default:
		return strconv.FormatFloat(price, 'f', 2, 64)
	}
}

// FormatQuantity groups whole quantities; fractional ones keep two decimals.
func FormatQuantity(qty float64) string {
	if qty != math.Trunc(qty) {
		return strconv.FormatFloat(qty, 'f', 2, 64)
	}
	grouped := groupIndian(strconv.FormatInt(int64(math.Abs(qty)), 10))
	if qty < 0 {
		return "-" + grouped
	}
	return grouped
}

// FormatRiskReward formats a risk-reward ratio, or "-" when unknown.
func FormatRiskReward(rr *float64) string {
	if rr == nil {
		return "-"
	}
	return fmt.Sprintf("1:%.2f", *rr)
}

// FormatDuration prints the two most significant units of d.
func FormatDuration(d time.Duration) string {
	secs := int(d.Seconds())
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", secs)
	case d < time.Hour:
		return fmt.Sprintf("%dm %ds", secs/60, secs%60)
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh %dm", secs/3600, secs/60%60)
	default:
		return fmt.Sprintf("%dd %dh", secs/86400, secs/3600%24)
	}
}

// TruncateString cuts s to maxLen bytes, ending in "..." when there is room.
func TruncateString(s string, maxLen int) string {
	switch {
	case len(s) <= maxLen:
		return s
	case maxLen <= 3:
		return s[:maxLen]
	default:
		return s[:maxLen-3] + "..."
	}
}
