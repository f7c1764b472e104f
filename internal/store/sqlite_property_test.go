package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"trading-journal/internal/analytics"
	"trading-journal/internal/models"
)

// Property: For any journal trade, saving it to the database and loading it
// back normalizes to the same trade (round-trip consistency).
func TestProperty_TradeRoundTripConsistency(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "property.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	symbols := []string{"RELIANCE", "TCS", "INFY", "HDFCBANK", "ICICIBANK", "SBIN", "NIFTY", "BANKNIFTY"}
	opts := analytics.Options{Location: time.UTC, Now: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	seq := 0

	properties.Property("Trade round-trip: save then load normalizes identically", prop.ForAll(
		func(symbolIdx int, day int, entry, exit float64, qty int, short bool) bool {
			ctx := context.Background()
			seq++

			raw := models.RawTrade{
				ID:         fmt.Sprintf("prop-%d", seq),
				Symbol:     symbols[symbolIdx%len(symbols)],
				Date:       fmt.Sprintf("2024-03-%02d", day),
				Time:       "10:15",
				Direction:  "Long",
				EntryPrice: entry,
				ExitPrice:  exit,
				Quantity:   qty,
			}
			if short {
				raw.Direction = "Short"
			}

			if err := store.SaveTrade(ctx, &raw); err != nil {
				t.Logf("Failed to save trade: %v", err)
				return false
			}

			trades, err := store.LoadTrades(ctx)
			if err != nil {
				t.Logf("Failed to load trades: %v", err)
				return false
			}

			for _, got := range trades {
				if got.ID != raw.ID {
					continue
				}
				a := analytics.Normalize(raw, opts)
				b := analytics.Normalize(got, opts)
				if a.GrossPnl != b.GrossPnl || a.DateKey != b.DateKey || a.Direction != b.Direction || a.Quantity != b.Quantity {
					t.Logf("Trade mismatch: saved=%+v loaded=%+v", a, b)
					return false
				}
				return true
			}

			t.Logf("Trade %s not found after save", raw.ID)
			return false
		},
		gen.IntRange(0, len(symbols)-1),
		gen.IntRange(1, 31),
		gen.Float64Range(10, 5000),
		gen.Float64Range(10, 5000),
		gen.IntRange(1, 1000),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
