package analytics

import (
	"sort"

	"trading-journal/internal/models"
)

// TagImpact is the frequency and P&L impact of a mistake or tag.
type TagImpact struct {
	Name     string  `json:"name"`
	Count    int     `json:"count"`
	TotalPnl float64 `json:"totalPnl"`
	AvgPnl   float64 `json:"avgPnl"`
}

// SetupStats is the track record of one strategy/setup.
type SetupStats struct {
	Setup    string  `json:"setup"`
	Trades   int     `json:"trades"`
	Wins     int     `json:"wins"`
	Losses   int     `json:"losses"`
	WinRate  float64 `json:"winRate"` // percent of the setup's trades
	TotalPnl float64 `json:"totalPnl"`
	AvgPnl   float64 `json:"avgPnl"`
}

// SentimentEntry is one emotion in the combined before/after distribution.
type SentimentEntry struct {
	Emotion string  `json:"emotion"`
	Count   int     `json:"count"`
	Share   float64 `json:"share"` // percent of all emotion entries
}

// JournalInsights ranks behavioural tags and setups by frequency and impact.
type JournalInsights struct {
	// Mistakes is ordered by average P&L, worst first.
	Mistakes []TagImpact `json:"mistakes"`
	// Tags is ordered by average P&L, best first.
	Tags []TagImpact `json:"tags"`

	MostUsedStrategy      string       `json:"mostUsedStrategy"`
	MostUsedStrategyCount int          `json:"mostUsedStrategyCount"`
	Setups                []SetupStats `json:"setups"`

	Sentiment           []SentimentEntry `json:"sentiment"`
	TotalEmotionEntries int              `json:"totalEmotionEntries"`

	// DisciplineRate is the percent of trades with no checklist mistakes.
	DisciplineRate float64 `json:"disciplineRate"`
}

// CalculateInsights aggregates mistakes, tags, setups and sentiment.
// Results are order-independent except the most-used strategy tie-break,
// which favours the strategy seen first.
func CalculateInsights(trades []models.Trade) JournalInsights {
	in := JournalInsights{
		Mistakes:         []TagImpact{},
		Tags:             []TagImpact{},
		MostUsedStrategy: NotAvailable,
		Setups:           []SetupStats{},
		Sentiment:        []SentimentEntry{},
	}
	if len(trades) == 0 {
		return in
	}

	mistakes := make(map[string]*TagImpact)
	tags := make(map[string]*TagImpact)
	setups := make(map[string]*SetupStats)
	var setupOrder []string
	sentiment := make(map[string]int)
	clean := 0

	for _, t := range trades {
		if len(t.MistakeChecklist) == 0 {
			clean++
		}
		for _, name := range t.MistakeChecklist {
			tally(mistakes, name, t.NetPnl)
		}
		for _, name := range t.Tags {
			tally(tags, name, t.NetPnl)
		}

		if t.StrategyUsed != "" {
			s := setups[t.StrategyUsed]
			if s == nil {
				s = &SetupStats{Setup: t.StrategyUsed}
				setups[t.StrategyUsed] = s
				setupOrder = append(setupOrder, t.StrategyUsed)
			}
			s.Trades++
			s.TotalPnl += t.NetPnl
			if t.IsWin() {
				s.Wins++
			} else if t.IsLoss() {
				s.Losses++
			}
		}

		for _, emotion := range []string{t.EmotionsBefore, t.EmotionsAfter} {
			if emotion != "" {
				sentiment[emotion]++
				in.TotalEmotionEntries++
			}
		}
	}

	in.DisciplineRate = percent(float64(clean), float64(len(trades)))

	in.Mistakes = rankImpacts(mistakes, func(a, b TagImpact) bool { return a.AvgPnl < b.AvgPnl })
	in.Tags = rankImpacts(tags, func(a, b TagImpact) bool { return a.AvgPnl > b.AvgPnl })

	for _, name := range setupOrder {
		s := setups[name]
		if s.Trades > in.MostUsedStrategyCount {
			in.MostUsedStrategy = name
			in.MostUsedStrategyCount = s.Trades
		}
		s.WinRate = percent(float64(s.Wins), float64(s.Trades))
		s.AvgPnl = mean(s.TotalPnl, s.Trades)
		in.Setups = append(in.Setups, *s)
	}
	sort.SliceStable(in.Setups, func(i, j int) bool {
		a, b := in.Setups[i], in.Setups[j]
		if a.Trades != b.Trades {
			return a.Trades > b.Trades
		}
		return a.Setup < b.Setup
	})

	for emotion, count := range sentiment {
		in.Sentiment = append(in.Sentiment, SentimentEntry{
			Emotion: emotion,
			Count:   count,
			Share:   percent(float64(count), float64(in.TotalEmotionEntries)),
		})
	}
	sort.Slice(in.Sentiment, func(i, j int) bool {
		a, b := in.Sentiment[i], in.Sentiment[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Emotion < b.Emotion
	})

	return in
}

func tally(m map[string]*TagImpact, name string, pnl float64) {
	ti := m[name]
	if ti == nil {
		ti = &TagImpact{Name: name}
		m[name] = ti
	}
	ti.Count++
	ti.TotalPnl += pnl
}

// rankImpacts finalizes averages and sorts with less, breaking ties by
// count (descending) then name.
func rankImpacts(m map[string]*TagImpact, less func(a, b TagImpact) bool) []TagImpact {
	out := make([]TagImpact, 0, len(m))
	for _, ti := range m {
		ti.AvgPnl = mean(ti.TotalPnl, ti.Count)
		out = append(out, *ti)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.AvgPnl != b.AvgPnl {
			return less(a, b)
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Name < b.Name
	})
	return out
}
