package analytics

import (
	"math"
	"sort"

	"trading-journal/internal/models"
)

// Emotional states derived from the confidence level, most to least confident.
const (
	StateOverconfident = "Overconfident"
	StateCalm          = "Calm"
	StateImpatient     = "Impatient"
	StateAnxious       = "Anxious"
	StateFrustrated    = "Frustrated"
	StateUnknown       = "Unknown"
)

// Bounds of the confidence scale.
const (
	MinConfidence = 1
	MaxConfidence = 10
)

// Confidence tiers.
const (
	TierHigh    = "High"
	TierMedium  = "Medium"
	TierLow     = "Low"
	TierUnknown = "Unknown"
)

// EmotionalStateOrder lists the states in display order.
var EmotionalStateOrder = []string{StateOverconfident, StateCalm, StateImpatient, StateAnxious, StateFrustrated, StateUnknown}

// ConfidenceTierOrder lists the tiers in display order.
var ConfidenceTierOrder = []string{TierHigh, TierMedium, TierLow, TierUnknown}

// EmotionalState maps a 1-10 confidence level onto an emotional state.
func EmotionalState(confidence *int) string {
	if confidence == nil {
		return StateUnknown
	}
	switch c := *confidence; {
	case c >= 9:
		return StateOverconfident
	case c >= 7:
		return StateCalm
	case c >= 5:
		return StateImpatient
	case c >= 3:
		return StateAnxious
	default:
		return StateFrustrated
	}
}

// ConfidenceTier maps a confidence level onto High (8-10), Medium (5-7) or Low (1-4).
func ConfidenceTier(confidence *int) string {
	if confidence == nil {
		return TierUnknown
	}
	switch c := *confidence; {
	case c >= 8:
		return TierHigh
	case c >= 5:
		return TierMedium
	default:
		return TierLow
	}
}

// RealizedRR returns net P&L expressed in units of the initial risk
// (|entry - stop| * quantity). It is nil when no stop was set or the risk
// amount is zero.
func RealizedRR(t models.Trade) *float64 {
	if t.StopLoss == nil {
		return nil
	}
	risk := math.Abs(t.EntryPrice-*t.StopLoss) * math.Abs(t.Quantity)
	if risk == 0 {
		return nil
	}
	r := t.NetPnl / risk
	return &r
}

// EmotionStats describes the trades sharing an emotional bucket.
type EmotionStats struct {
	Count           int                `json:"count"`
	Share           float64            `json:"share"` // percent of all trades
	Wins            int                `json:"wins"`
	Losses          int                `json:"losses"`
	WinRate         float64            `json:"winRate"` // wins / (wins + losses)
	TotalPnl        float64            `json:"totalPnl"`
	AvgPnl          float64            `json:"avgPnl"`
	AvgRealizedRR   float64            `json:"avgRealizedRR"`
	RRSamples       int                `json:"rrSamples"`
	PnlByConfidence map[string]float64 `json:"pnlByConfidence"`

	rrSum      float64
	tierSums   map[string]float64
	tierCounts map[string]int
}

func newEmotionStats() *EmotionStats {
	return &EmotionStats{
		PnlByConfidence: make(map[string]float64),
		tierSums:        make(map[string]float64),
		tierCounts:      make(map[string]int),
	}
}

func (e *EmotionStats) add(t models.Trade) {
	e.Count++
	e.TotalPnl += t.NetPnl
	if t.IsWin() {
		e.Wins++
	} else if t.IsLoss() {
		e.Losses++
	}
	if rr := RealizedRR(t); rr != nil {
		e.rrSum += *rr
		e.RRSamples++
	}
	tier := ConfidenceTier(t.ConfidenceLevel)
	e.tierSums[tier] += t.NetPnl
	e.tierCounts[tier]++
}

func (e *EmotionStats) finish(totalTrades int) {
	e.Share = percent(float64(e.Count), float64(totalTrades))
	e.WinRate = percent(float64(e.Wins), float64(e.Wins+e.Losses))
	e.AvgPnl = mean(e.TotalPnl, e.Count)
	e.AvgRealizedRR = mean(e.rrSum, e.RRSamples)
	for tier, sum := range e.tierSums {
		e.PnlByConfidence[tier] = mean(sum, e.tierCounts[tier])
	}
}

// TierStats summarizes trades within one confidence tier.
type TierStats struct {
	Count   int     `json:"count"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	WinRate float64 `json:"winRate"` // wins / (wins + losses)
	AvgPnl  float64 `json:"avgPnl"`

	pnlSum float64
}

// MistakeStats describes the trades on which a checklist mistake was ticked.
type MistakeStats struct {
	Mistake   string  `json:"mistake"`
	Count     int     `json:"count"`
	Share     float64 `json:"share"` // percent of all trades
	TotalPnl  float64 `json:"totalPnl"`
	AvgPnl    float64 `json:"avgPnl"`
	AvgRR     float64 `json:"avgRR"`
	RRSamples int     `json:"rrSamples"`
}

// PsychologyMetrics relates confidence, emotions and mistakes to outcomes.
type PsychologyMetrics struct {
	TotalTrades      int                      `json:"totalTrades"`
	AvgConfidence    float64                  `json:"avgConfidence"`
	ByEmotionalState map[string]*EmotionStats `json:"byEmotionalState"`
	ByEmotionBefore  map[string]*EmotionStats `json:"byEmotionBefore"`
	ByConfidenceTier map[string]*TierStats    `json:"byConfidenceTier"`

	// MostFrequentMistakes is ordered by count, highest first.
	MostFrequentMistakes []MistakeStats `json:"mostFrequentMistakes"`
	// MistakeImpact is ordered by average P&L, worst first.
	MistakeImpact []MistakeStats `json:"mistakeImpact"`
}

// CalculatePsychology computes confidence-, emotion- and mistake-correlated
// statistics. Results are order-independent.
func CalculatePsychology(trades []models.Trade) PsychologyMetrics {
	m := PsychologyMetrics{
		TotalTrades:          len(trades),
		ByEmotionalState:     make(map[string]*EmotionStats),
		ByEmotionBefore:      make(map[string]*EmotionStats),
		ByConfidenceTier:     make(map[string]*TierStats),
		MostFrequentMistakes: []MistakeStats{},
		MistakeImpact:        []MistakeStats{},
	}
	if len(trades) == 0 {
		return m
	}

	var confidenceSum float64
	var confidenceCount int
	mistakes := make(map[string]*MistakeStats)
	mistakeRR := make(map[string]float64)

	for _, t := range trades {
		if t.ConfidenceLevel != nil {
			confidenceSum += float64(*t.ConfidenceLevel)
			confidenceCount++
		}

		state := EmotionalState(t.ConfidenceLevel)
		if m.ByEmotionalState[state] == nil {
			m.ByEmotionalState[state] = newEmotionStats()
		}
		m.ByEmotionalState[state].add(t)

		if t.EmotionsBefore != "" {
			if m.ByEmotionBefore[t.EmotionsBefore] == nil {
				m.ByEmotionBefore[t.EmotionsBefore] = newEmotionStats()
			}
			m.ByEmotionBefore[t.EmotionsBefore].add(t)
		}

		tier := ConfidenceTier(t.ConfidenceLevel)
		ts := m.ByConfidenceTier[tier]
		if ts == nil {
			ts = &TierStats{}
			m.ByConfidenceTier[tier] = ts
		}
		ts.Count++
		ts.pnlSum += t.NetPnl
		if t.IsWin() {
			ts.Wins++
		} else if t.IsLoss() {
			ts.Losses++
		}

		rr := RealizedRR(t)
		for _, name := range t.MistakeChecklist {
			ms := mistakes[name]
			if ms == nil {
				ms = &MistakeStats{Mistake: name}
				mistakes[name] = ms
			}
			ms.Count++
			ms.TotalPnl += t.NetPnl
			if rr != nil {
				mistakeRR[name] += *rr
				ms.RRSamples++
			}
		}
	}

	m.AvgConfidence = mean(confidenceSum, confidenceCount)
	for _, e := range m.ByEmotionalState {
		e.finish(len(trades))
	}
	for _, e := range m.ByEmotionBefore {
		e.finish(len(trades))
	}
	for _, ts := range m.ByConfidenceTier {
		ts.WinRate = percent(float64(ts.Wins), float64(ts.Wins+ts.Losses))
		ts.AvgPnl = mean(ts.pnlSum, ts.Count)
	}

	list := make([]MistakeStats, 0, len(mistakes))
	for name, ms := range mistakes {
		ms.Share = percent(float64(ms.Count), float64(len(trades)))
		ms.AvgPnl = mean(ms.TotalPnl, ms.Count)
		ms.AvgRR = mean(mistakeRR[name], ms.RRSamples)
		list = append(list, *ms)
	}

	m.MostFrequentMistakes = append([]MistakeStats{}, list...)
	sort.Slice(m.MostFrequentMistakes, func(i, j int) bool {
		a, b := m.MostFrequentMistakes[i], m.MostFrequentMistakes[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Mistake < b.Mistake
	})

	m.MistakeImpact = append([]MistakeStats{}, list...)
	sort.Slice(m.MistakeImpact, func(i, j int) bool {
		a, b := m.MistakeImpact[i], m.MistakeImpact[j]
		if a.AvgPnl != b.AvgPnl {
			return a.AvgPnl < b.AvgPnl
		}
		return a.Mistake < b.Mistake
	})

	return m
}
