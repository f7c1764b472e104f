package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cast"

	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/models"
)

// csvTrade is the spreadsheet layout of a journal export. Every column is
// read as text; the analytics normalizer coerces the numbers later.
type csvTrade struct {
	ID               string `csv:"id"`
	Symbol           string `csv:"symbol"`
	MarketType       string `csv:"marketType"`
	Direction        string `csv:"direction"`
	TradeType        string `csv:"tradeType"`
	OptionType       string `csv:"optionType"`
	Date             string `csv:"date"`
	Time             string `csv:"time"`
	EntryPrice       string `csv:"entryPrice"`
	ExitPrice        string `csv:"exitPrice"`
	Quantity         string `csv:"quantity"`
	TotalAmount      string `csv:"totalAmount"`
	GrossPnl         string `csv:"grossPnl"`
	NetPnl           string `csv:"netPnl"`
	PnlAmount        string `csv:"pnlAmount"`
	PnlPercentage    string `csv:"pnlPercentage"`
	Charges          string `csv:"charges"`
	StopLoss         string `csv:"stopLoss"`
	Target           string `csv:"target"`
	RiskReward       string `csv:"riskReward"`
	StrategyUsed     string `csv:"strategyUsed"`
	OutcomeSummary   string `csv:"outcomeSummary"`
	ConfidenceLevel  string `csv:"confidenceLevel"`
	EmotionsBefore   string `csv:"emotionsBefore"`
	EmotionsAfter    string `csv:"emotionsAfter"`
	Notes            string `csv:"notes"`
	Mistakes         string `csv:"mistakes"`
	MistakeChecklist string `csv:"mistakeChecklist"` // see splitList
	WhatIDidWell     string `csv:"whatIDidWell"`
	Tags             string `csv:"tags"` // see splitList
}

// blank maps empty cells to nil so unset price levels stay unset.
func blank(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}

// splitList reads a list cell. Entries are separated by ';' or ',' and a
// backslash escapes the next character, so "Late\, chased;FOMO" holds two
// entries.
func splitList(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	var (
		items   []string
		cur     strings.Builder
		escaped bool
	)
	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ';' || r == ',':
			items = append(items, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(items, cur.String())
}

var listEscaper = strings.NewReplacer(`\`, `\\`, `;`, `\;`, `,`, `\,`)

// joinList writes a list cell that splitList reads back unchanged.
func joinList(v any) string {
	if v == nil {
		return ""
	}
	var items []string
	switch x := v.(type) {
	case string:
		items = strings.Split(x, ",")
	default:
		items = cast.ToStringSlice(v)
	}
	for i, item := range items {
		items[i] = listEscaper.Replace(item)
	}
	return strings.Join(items, ";")
}

func (c csvTrade) raw() models.RawTrade {
	return models.RawTrade{
		ID:               strings.TrimSpace(c.ID),
		Symbol:           c.Symbol,
		MarketType:       c.MarketType,
		Direction:        c.Direction,
		TradeType:        c.TradeType,
		OptionType:       c.OptionType,
		Date:             c.Date,
		Time:             c.Time,
		EntryPrice:       blank(c.EntryPrice),
		ExitPrice:        blank(c.ExitPrice),
		Quantity:         blank(c.Quantity),
		TotalAmount:      blank(c.TotalAmount),
		GrossPnl:         blank(c.GrossPnl),
		NetPnl:           blank(c.NetPnl),
		PnlAmount:        blank(c.PnlAmount),
		PnlPercentage:    blank(c.PnlPercentage),
		Charges:          blank(c.Charges),
		StopLoss:         blank(c.StopLoss),
		Target:           blank(c.Target),
		RiskReward:       blank(c.RiskReward),
		StrategyUsed:     c.StrategyUsed,
		OutcomeSummary:   c.OutcomeSummary,
		ConfidenceLevel:  blank(c.ConfidenceLevel),
		EmotionsBefore:   c.EmotionsBefore,
		EmotionsAfter:    c.EmotionsAfter,
		Notes:            c.Notes,
		Mistakes:         c.Mistakes,
		MistakeChecklist: splitList(c.MistakeChecklist),
		WhatIDidWell:     c.WhatIDidWell,
		Tags:             splitList(c.Tags),
	}
}

func text(v any) string {
	if v == nil {
		return ""
	}
	return cast.ToString(v)
}

func fromRaw(t models.RawTrade) csvTrade {
	return csvTrade{
		ID:               t.ID,
		Symbol:           t.Symbol,
		MarketType:       t.MarketType,
		Direction:        t.Direction,
		TradeType:        t.TradeType,
		OptionType:       t.OptionType,
		Date:             t.Date,
		Time:             t.Time,
		EntryPrice:       text(t.EntryPrice),
		ExitPrice:        text(t.ExitPrice),
		Quantity:         text(t.Quantity),
		TotalAmount:      text(t.TotalAmount),
		GrossPnl:         text(t.GrossPnl),
		NetPnl:           text(t.NetPnl),
		PnlAmount:        text(t.PnlAmount),
		PnlPercentage:    text(t.PnlPercentage),
		Charges:          text(t.Charges),
		StopLoss:         text(t.StopLoss),
		Target:           text(t.Target),
		RiskReward:       text(t.RiskReward),
		StrategyUsed:     t.StrategyUsed,
		OutcomeSummary:   t.OutcomeSummary,
		ConfidenceLevel:  text(t.ConfidenceLevel),
		EmotionsBefore:   t.EmotionsBefore,
		EmotionsAfter:    t.EmotionsAfter,
		Notes:            t.Notes,
		Mistakes:         t.Mistakes,
		MistakeChecklist: joinList(t.MistakeChecklist),
		WhatIDidWell:     t.WhatIDidWell,
		Tags:             joinList(t.Tags),
	}
}

// ImportCSV reads journal rows from a CSV with a header line. Unknown
// columns are ignored and missing ones stay empty.
func ImportCSV(r io.Reader) ([]models.RawTrade, error) {
	var rows []*csvTrade
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("%w: csv: %v", apperrors.ErrUnsupportedFormat, err)
	}

	trades := make([]models.RawTrade, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		trades = append(trades, row.raw())
	}
	return trades, nil
}

// ExportCSV writes trades in the layout ImportCSV reads.
func ExportCSV(w io.Writer, trades []models.RawTrade) error {
	rows := make([]*csvTrade, 0, len(trades))
	for _, t := range trades {
		row := fromRaw(t)
		rows = append(rows, &row)
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return apperrors.Wrap(err, "writing csv")
	}
	return nil
}

// ImportFile reads trades from a CSV, JSON or YAML file, choosing the
// decoder by extension.
func ImportFile(path string) ([]models.RawTrade, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return ImportCSV(f)
	case ".json", ".yaml", ".yml":
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, err
		}
		doc, err := DecodeDocument(data, ext != ".json")
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrUnsupportedFormat, ext, err)
		}
		return doc.Trades, nil
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedFormat, ext)
	}
}
