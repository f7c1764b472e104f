package analytics

import (
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"trading-journal/internal/models"
)

// tradeNamespace seeds deterministic ids for records stored without one.
var tradeNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("trading-journal/trade"))

// NormalizeAll normalizes every raw trade, preserving input order.
func NormalizeAll(raws []models.RawTrade, opts Options) []models.Trade {
	trades := make([]models.Trade, 0, len(raws))
	for _, raw := range raws {
		trades = append(trades, Normalize(raw, opts))
	}
	return trades
}

// Normalize coerces a raw trade into its typed form. It never fails:
// unreadable numbers become 0, unreadable price levels become nil and an
// unreadable date leaves the trade undated.
func Normalize(raw models.RawTrade, opts Options) models.Trade {
	opts = opts.withDefaults()

	t := models.Trade{
		ID:             strings.TrimSpace(raw.ID),
		Symbol:         strings.TrimSpace(raw.Symbol),
		MarketType:     strings.TrimSpace(raw.MarketType),
		Direction:      parseDirection(raw.Direction),
		TradeType:      strings.TrimSpace(raw.TradeType),
		OptionType:     strings.TrimSpace(raw.OptionType),
		Date:           strings.TrimSpace(raw.Date),
		Time:           strings.TrimSpace(raw.Time),
		EntryPrice:     toFloat(raw.EntryPrice),
		ExitPrice:      toFloat(raw.ExitPrice),
		Quantity:       toFloat(raw.Quantity),
		Charges:        toFloat(raw.Charges),
		StopLoss:       toOptionalFloat(raw.StopLoss),
		Target:         toOptionalFloat(raw.Target),
		RiskReward:     strings.TrimSpace(cast.ToString(raw.RiskReward)),
		StrategyUsed:   strings.TrimSpace(raw.StrategyUsed),
		OutcomeSummary: strings.TrimSpace(raw.OutcomeSummary),
		EmotionsBefore: strings.TrimSpace(raw.EmotionsBefore),
		EmotionsAfter:  strings.TrimSpace(raw.EmotionsAfter),
		Notes:          raw.Notes,
		Mistakes:       raw.Mistakes,
		WhatIDidWell:   raw.WhatIDidWell,
	}

	t.MistakeChecklist = toStringSet(raw.MistakeChecklist)
	t.Tags = toStringSet(raw.Tags)
	t.ConfidenceLevel = confidenceLevel(raw.ConfidenceLevel)

	t.GrossPnl = grossPnl(t.Direction, t.EntryPrice, t.ExitPrice, t.Quantity)
	t.NetPnl = netPnl(raw, t.GrossPnl, t.Charges)

	t.TotalAmount = toFloat(raw.TotalAmount)
	if t.TotalAmount == 0 {
		t.TotalAmount = product(t.EntryPrice, t.Quantity)
	}

	if pct := toOptionalFloat(raw.PnlPercentage); pct != nil {
		t.PnlPercentage = *pct
	} else if t.TotalAmount != 0 {
		t.PnlPercentage = t.NetPnl / t.TotalAmount * 100
	}

	t.PlannedRR = plannedRR(raw.RiskReward, t.EntryPrice, t.StopLoss, t.Target)

	if ts, ok := ParseTimestamp(t.Date, t.Time, opts.Location); ok {
		t.Timestamp = ts
		t.DateKey = DateKey(ts)
		t.Weekday = MarketWeekday(ts)
		t.HasDate = true
	}

	if t.ID == "" {
		t.ID = deterministicID(t)
	}

	return t
}

func parseDirection(s string) models.Direction {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "short", "sell", "s":
		return models.DirectionShort
	default:
		return models.DirectionLong
	}
}

// grossPnl is (exit-entry)*qty for longs and the inverse for shorts.
func grossPnl(dir models.Direction, entry, exit, qty float64) float64 {
	diff := decimal.NewFromFloat(exit).Sub(decimal.NewFromFloat(entry))
	if dir == models.DirectionShort {
		diff = diff.Neg()
	}
	v, _ := diff.Mul(decimal.NewFromFloat(qty)).Float64()
	return v
}

func netPnl(raw models.RawTrade, gross, charges float64) float64 {
	if v := toOptionalFloat(raw.NetPnl); v != nil {
		return *v
	}
	if v := toOptionalFloat(raw.PnlAmount); v != nil {
		return *v
	}
	v, _ := decimal.NewFromFloat(gross).Sub(decimal.NewFromFloat(charges)).Float64()
	return v
}

func product(a, b float64) float64 {
	v, _ := decimal.NewFromFloat(a).Mul(decimal.NewFromFloat(b)).Float64()
	return v
}

// plannedRR reads "risk:reward" strings, plain numbers, or falls back to the
// stop/target levels. A zero risk leg leaves the ratio undefined.
func plannedRR(raw any, entry float64, stop, target *float64) *float64 {
	if s, ok := raw.(string); ok && strings.Contains(s, ":") {
		parts := strings.SplitN(s, ":", 2)
		risk := toFloat(parts[0])
		reward := toFloat(parts[1])
		if risk == 0 {
			return nil
		}
		r := reward / risk
		return &r
	}
	if v := toOptionalFloat(raw); v != nil {
		return v
	}
	if stop != nil && target != nil {
		risk := math.Abs(entry - *stop)
		if risk == 0 {
			return nil
		}
		r := math.Abs(*target-entry) / risk
		return &r
	}
	return nil
}

func deterministicID(t models.Trade) string {
	key := strings.Join([]string{
		t.Symbol,
		t.Date,
		t.Time,
		string(t.Direction),
		cast.ToString(t.EntryPrice),
		cast.ToString(t.ExitPrice),
		cast.ToString(t.Quantity),
		cast.ToString(t.NetPnl),
		t.StrategyUsed,
		t.Notes,
	}, "|")
	return uuid.NewSHA1(tradeNamespace, []byte(key)).String()
}

func toFloat(v any) float64 {
	if f := toOptionalFloat(v); f != nil {
		return *f
	}
	return 0
}

func toOptionalFloat(v any) *float64 {
	switch x := v.(type) {
	case nil:
		return nil
	case *float64:
		if x == nil {
			return nil
		}
		v = *x
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(x), ",", "")
		if s == "" {
			return nil
		}
		v = s
	}

	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// confidenceLevel rounds v onto the 1-10 scale. Anything outside it is
// treated as unrecorded.
func confidenceLevel(v any) *int {
	f := toOptionalFloat(v)
	if f == nil {
		return nil
	}
	r := math.Round(*f)
	if !(r >= MinConfidence && r <= MaxConfidence) {
		return nil
	}
	n := int(r)
	return &n
}

// toStringSet accepts a slice or a comma-separated string and returns
// trimmed, non-empty, de-duplicated entries in first-seen order.
func toStringSet(v any) []string {
	var items []string
	switch x := v.(type) {
	case nil:
	case string:
		items = strings.Split(x, ",")
	case []string:
		items = x
	case []any:
		for _, item := range x {
			items = append(items, cast.ToString(item))
		}
	default:
		items, _ = cast.ToStringSliceE(v)
	}

	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
