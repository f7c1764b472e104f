package analytics

import (
	"fmt"
	"time"

	"trading-journal/internal/models"
)

var utcOpts = Options{
	Location: time.UTC,
	Now:      time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC),
}

func rawTrade(date string, pnl any) models.RawTrade {
	return models.RawTrade{Symbol: "NIFTY", Date: date, NetPnl: pnl}
}

func normalized(raws ...models.RawTrade) []models.Trade {
	return NormalizeAll(raws, utcOpts)
}

// rawsFromPnls builds one raw trade per P&L on consecutive days from 2024-01-01.
func rawsFromPnls(pnls []int) []models.RawTrade {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	raws := make([]models.RawTrade, len(pnls))
	for i, p := range pnls {
		raws[i] = models.RawTrade{
			ID:     fmt.Sprintf("t%d", i),
			Symbol: "BANKNIFTY",
			Date:   DateKey(start.AddDate(0, 0, i)),
			NetPnl: float64(p),
		}
	}
	return raws
}

func tradesFromPnls(pnls []int) []models.Trade {
	return normalized(rawsFromPnls(pnls)...)
}

func ptr[T any](v T) *T { return &v }
