// Package models provides domain models for the trading journal.
package models

import "strings"

// Direction represents the side a trade was opened on.
type Direction string

const (
	DirectionLong  Direction = "Long"
	DirectionShort Direction = "Short"
)

// MarketType represents the market segment a trade was taken in.
type MarketType string

const (
	MarketEquity    MarketType = "Equity"
	MarketFutures   MarketType = "Futures"
	MarketOptions   MarketType = "Options"
	MarketCurrency  MarketType = "Currency"
	MarketCommodity MarketType = "Commodity"
	MarketCrypto    MarketType = "Crypto"
)

// TradeType represents the holding style of a trade.
type TradeType string

const (
	TradeTypeIntraday TradeType = "Intraday"
	TradeTypeSwing    TradeType = "Swing"
	TradeTypePosition TradeType = "Position"
	TradeTypeScalp    TradeType = "Scalp"
)

// MarketTypes lists the recognised market segments.
var MarketTypes = []MarketType{MarketEquity, MarketFutures, MarketOptions, MarketCurrency, MarketCommodity, MarketCrypto}

// TradeTypes lists the recognised holding styles.
var TradeTypes = []TradeType{TradeTypeIntraday, TradeTypeSwing, TradeTypePosition, TradeTypeScalp}

// ParseMarketType matches s case-insensitively against MarketTypes.
func ParseMarketType(s string) (MarketType, bool) {
	for _, m := range MarketTypes {
		if strings.EqualFold(strings.TrimSpace(s), string(m)) {
			return m, true
		}
	}
	return "", false
}

// ParseTradeType matches s case-insensitively against TradeTypes.
func ParseTradeType(s string) (TradeType, bool) {
	for _, tt := range TradeTypes {
		if strings.EqualFold(strings.TrimSpace(s), string(tt)) {
			return tt, true
		}
	}
	return "", false
}
