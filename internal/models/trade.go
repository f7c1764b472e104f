package models

import "time"

// RawTrade is a trade record as a store hands it over.
// Numeric fields are untyped: JSON numbers, numeric strings, empty strings
// and garbage all occur in real journals and are resolved by the normalizer.
type RawTrade struct {
	ID         string `json:"id,omitempty" yaml:"id,omitempty"`
	Symbol     string `json:"symbol" yaml:"symbol"`
	MarketType string `json:"marketType,omitempty" yaml:"marketType,omitempty"`
	Direction  string `json:"direction,omitempty" yaml:"direction,omitempty"`
	TradeType  string `json:"tradeType,omitempty" yaml:"tradeType,omitempty"`
	OptionType string `json:"optionType,omitempty" yaml:"optionType,omitempty"`

	Date string `json:"date" yaml:"date"`
	Time string `json:"time,omitempty" yaml:"time,omitempty"`

	EntryPrice    any `json:"entryPrice,omitempty" yaml:"entryPrice,omitempty"`
	ExitPrice     any `json:"exitPrice,omitempty" yaml:"exitPrice,omitempty"`
	Quantity      any `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	TotalAmount   any `json:"totalAmount,omitempty" yaml:"totalAmount,omitempty"`
	GrossPnl      any `json:"grossPnl,omitempty" yaml:"grossPnl,omitempty"`
	NetPnl        any `json:"netPnl,omitempty" yaml:"netPnl,omitempty"`
	PnlAmount     any `json:"pnlAmount,omitempty" yaml:"pnlAmount,omitempty"`
	PnlPercentage any `json:"pnlPercentage,omitempty" yaml:"pnlPercentage,omitempty"`
	Charges       any `json:"charges,omitempty" yaml:"charges,omitempty"`

	StopLoss   any `json:"stopLoss,omitempty" yaml:"stopLoss,omitempty"`
	Target     any `json:"target,omitempty" yaml:"target,omitempty"`
	RiskReward any `json:"riskReward,omitempty" yaml:"riskReward,omitempty"`

	StrategyUsed   string `json:"strategyUsed,omitempty" yaml:"strategyUsed,omitempty"`
	OutcomeSummary string `json:"outcomeSummary,omitempty" yaml:"outcomeSummary,omitempty"`

	ConfidenceLevel  any    `json:"confidenceLevel,omitempty" yaml:"confidenceLevel,omitempty"`
	EmotionsBefore   string `json:"emotionsBefore,omitempty" yaml:"emotionsBefore,omitempty"`
	EmotionsAfter    string `json:"emotionsAfter,omitempty" yaml:"emotionsAfter,omitempty"`
	Notes            string `json:"notes,omitempty" yaml:"notes,omitempty"`
	Mistakes         string `json:"mistakes,omitempty" yaml:"mistakes,omitempty"`
	MistakeChecklist any    `json:"mistakeChecklist,omitempty" yaml:"mistakeChecklist,omitempty"`
	WhatIDidWell     string `json:"whatIDidWell,omitempty" yaml:"whatIDidWell,omitempty"`
	Tags             any    `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Trade is a normalized trade. Every calculator consumes this form.
type Trade struct {
	ID         string    `json:"id"`
	Symbol     string    `json:"symbol"`
	MarketType string    `json:"marketType"`
	Direction  Direction `json:"direction"`
	TradeType  string    `json:"tradeType"`
	OptionType string    `json:"optionType"`

	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Timestamp time.Time `json:"timestamp"`
	DateKey   string    `json:"dateKey"`
	Weekday   string    `json:"weekday"` // Monday..Friday, empty for weekends or undated trades
	HasDate   bool      `json:"hasDate"`

	EntryPrice  float64 `json:"entryPrice"`
	ExitPrice   float64 `json:"exitPrice"`
	Quantity    float64 `json:"quantity"`
	TotalAmount float64 `json:"totalAmount"`

	GrossPnl      float64 `json:"grossPnl"`
	NetPnl        float64 `json:"netPnl"`
	PnlPercentage float64 `json:"pnlPercentage"`
	Charges       float64 `json:"charges"`

	StopLoss   *float64 `json:"stopLoss"`
	Target     *float64 `json:"target"`
	RiskReward string   `json:"riskReward"`
	PlannedRR  *float64 `json:"plannedRR"`

	StrategyUsed   string `json:"strategyUsed"`
	OutcomeSummary string `json:"outcomeSummary"`

	ConfidenceLevel  *int     `json:"confidenceLevel"`
	EmotionsBefore   string   `json:"emotionsBefore"`
	EmotionsAfter    string   `json:"emotionsAfter"`
	Notes            string   `json:"notes"`
	Mistakes         string   `json:"mistakes"`
	MistakeChecklist []string `json:"mistakeChecklist"`
	WhatIDidWell     string   `json:"whatIDidWell"`
	Tags             []string `json:"tags"`
}

// IsWin reports whether the trade closed with a positive net P&L.
func (t Trade) IsWin() bool { return t.NetPnl > 0 }

// IsLoss reports whether the trade closed with a negative net P&L.
func (t Trade) IsLoss() bool { return t.NetPnl < 0 }

// TradeFilter represents filters for querying trades.
type TradeFilter struct {
	Symbol    string
	StartDate string // YYYY-MM-DD, inclusive
	EndDate   string // YYYY-MM-DD, inclusive
	Limit     int
}
