package cli

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trading-journal/internal/analytics"
	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/logging"
	"trading-journal/internal/models"
	"trading-journal/internal/store"
)

// addTradeCommands adds commands that edit the journal's trades.
func addTradeCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "trade",
		Short: "Record and manage trades",
	}

	cmd.AddCommand(newTradeAddCmd(app))
	cmd.AddCommand(newTradeListCmd(app))
	cmd.AddCommand(newTradeDeleteCmd(app))
	cmd.AddCommand(newTradeImportCmd(app))
	cmd.AddCommand(newTradeExportCmd(app))

	rootCmd.AddCommand(cmd)
}

// tradeInput is the validated form of 'trade add'.
type tradeInput struct {
	Symbol     string `validate:"required,max=64"`
	Date       string `validate:"required,datetime=2006-01-02"`
	Time       string `validate:"omitempty,datetime=15:04"`
	Direction  string `validate:"omitempty,oneof=long short Long Short LONG SHORT buy sell BUY SELL"`
	Confidence int    `validate:"omitempty,min=1,max=10"`
}

// numericFlags maps flag names onto the raw trade fields they fill.
var numericFlags = []struct {
	name  string
	usage string
	set   func(t *models.RawTrade, v float64)
}{
	{"entry", "entry price", func(t *models.RawTrade, v float64) { t.EntryPrice = v }},
	{"exit", "exit price", func(t *models.RawTrade, v float64) { t.ExitPrice = v }},
	{"qty", "quantity", func(t *models.RawTrade, v float64) { t.Quantity = v }},
	{"charges", "brokerage, taxes and fees", func(t *models.RawTrade, v float64) { t.Charges = v }},
	{"pnl", "net P&L (computed from prices when omitted)", func(t *models.RawTrade, v float64) { t.NetPnl = v }},
	{"stop", "stop-loss price", func(t *models.RawTrade, v float64) { t.StopLoss = v }},
	{"target", "target price", func(t *models.RawTrade, v float64) { t.Target = v }},
}

func newTradeAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a trade",
		Example: `  journal trade add --symbol NIFTY24JAN21500CE --direction long --entry 120 --exit 145 --qty 50 --charges 40
  journal trade add --symbol TCS --date 2024-01-05 --time 10:15 --pnl -850 --confidence 4 --mistake FOMO --emotion-before Anxious`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			opts, err := app.Options()
			if err != nil {
				return err
			}

			in := tradeInput{}
			in.Symbol, _ = cmd.Flags().GetString("symbol")
			in.Date, _ = cmd.Flags().GetString("date")
			in.Time, _ = cmd.Flags().GetString("time")
			in.Direction, _ = cmd.Flags().GetString("direction")
			in.Confidence, _ = cmd.Flags().GetInt("confidence")
			if in.Date == "" {
				in.Date = analytics.DateKey(opts.Now.In(opts.Location))
			}
			if err := validate.Struct(in); err != nil {
				return apperrors.Wrap(apperrors.ErrInputValidation, err.Error())
			}

			raw := &models.RawTrade{
				Symbol:    strings.ToUpper(strings.TrimSpace(in.Symbol)),
				Date:      in.Date,
				Time:      in.Time,
				Direction: in.Direction,
			}
			if v, _ := cmd.Flags().GetString("market"); v != "" {
				market, ok := models.ParseMarketType(v)
				if !ok {
					return apperrors.NewValidationError("market", v, "unknown market segment")
				}
				raw.MarketType = string(market)
			}
			if v, _ := cmd.Flags().GetString("type"); v != "" {
				style, ok := models.ParseTradeType(v)
				if !ok {
					return apperrors.NewValidationError("type", v, "unknown trade type")
				}
				raw.TradeType = string(style)
			}
			raw.StrategyUsed, _ = cmd.Flags().GetString("strategy")
			raw.EmotionsBefore, _ = cmd.Flags().GetString("emotion-before")
			raw.EmotionsAfter, _ = cmd.Flags().GetString("emotion-after")
			raw.Notes, _ = cmd.Flags().GetString("notes")
			raw.OutcomeSummary, _ = cmd.Flags().GetString("outcome")
			for _, f := range numericFlags {
				if cmd.Flags().Changed(f.name) {
					v, _ := cmd.Flags().GetFloat64(f.name)
					f.set(raw, v)
				}
			}
			if in.Confidence > 0 {
				raw.ConfidenceLevel = in.Confidence
			}
			if mistakes, _ := cmd.Flags().GetStringSlice("mistake"); len(mistakes) > 0 {
				raw.MistakeChecklist = mistakes
			}
			if tags, _ := cmd.Flags().GetStringSlice("tag"); len(tags) > 0 {
				raw.Tags = tags
			}

			st, err := app.Store()
			if err != nil {
				return err
			}
			if err := st.SaveTrade(ctx, raw); err != nil {
				return err
			}

			trade := analytics.Normalize(*raw, opts)
			if output.IsJSON() {
				return output.JSON(trade)
			}
			output.Success("✓ Trade %s recorded", raw.ID)
			output.KeyValues(
				"Symbol", trade.Symbol,
				"Date", strings.TrimSpace(trade.Date+" "+trade.Time),
				"Net P&L", output.FormatPnL(trade.NetPnl),
				"Planned R:R", FormatRiskReward(trade.PlannedRR),
			)
			return nil
		},
	}

	cmd.Flags().String("symbol", "", "instrument symbol")
	cmd.Flags().String("date", "", "trade date YYYY-MM-DD (default: today)")
	cmd.Flags().String("time", "", "entry time HH:MM")
	cmd.Flags().String("direction", "", "long or short")
	cmd.Flags().String("market", "", "market segment (Equity, Futures, Options, Currency, Commodity, Crypto)")
	cmd.Flags().String("type", "", "holding style (Intraday, Swing, Position, Scalp)")
	cmd.Flags().String("strategy", "", "strategy or setup name")
	for _, f := range numericFlags {
		cmd.Flags().Float64(f.name, 0, f.usage)
	}
	cmd.Flags().Int("confidence", 0, "confidence level 1-10")
	cmd.Flags().String("emotion-before", "", "emotion before entry")
	cmd.Flags().String("emotion-after", "", "emotion after exit")
	cmd.Flags().StringSlice("mistake", nil, "checklist mistake (repeatable)")
	cmd.Flags().StringSlice("tag", nil, "tag (repeatable)")
	cmd.Flags().String("notes", "", "free-form notes")
	cmd.Flags().String("outcome", "", "outcome summary")
	cmd.MarkFlagRequired("symbol")
	return cmd
}

func newTradeListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List trades, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			opts, err := app.Options()
			if err != nil {
				return err
			}
			st, err := app.Store()
			if err != nil {
				return err
			}
			raw, err := st.LoadTrades(ctx)
			if err != nil {
				return err
			}

			filter := models.TradeFilter{}
			filter.Symbol, _ = cmd.Flags().GetString("symbol")
			filter.StartDate, _ = cmd.Flags().GetString("from")
			filter.EndDate, _ = cmd.Flags().GetString("to")
			filter.Limit, _ = cmd.Flags().GetInt("limit")
			trades := analytics.NormalizeAll(store.FilterTrades(raw, filter), opts)

			if output.IsJSON() {
				return output.JSON(trades)
			}
			if len(trades) == 0 {
				output.Info("No trades found.")
				return nil
			}

			var total float64
			table := NewTable(output, "ID", "Date", "Time", "Symbol", "Side", "Qty", "Entry", "Exit", "Net P&L", "Strategy")
			for _, t := range trades {
				total += t.NetPnl
				table.AddRow(
					TruncateString(t.ID, 8),
					app.displayDate(t.Date),
					app.displayTime(t.Time),
					TruncateString(t.Symbol, 20),
					string(t.Direction),
					FormatQuantity(t.Quantity),
					FormatPrice(t.EntryPrice),
					FormatPrice(t.ExitPrice),
					output.FormatPnL(t.NetPnl),
					TruncateString(t.StrategyUsed, 15),
				)
			}
			table.Render()
			output.Println()
			output.Printf("  %d trades, net %s\n", len(trades), output.FormatPnL(total))
			return nil
		},
	}

	cmd.Flags().String("symbol", "", "only this symbol")
	cmd.Flags().String("from", "", "from date YYYY-MM-DD (inclusive)")
	cmd.Flags().String("to", "", "to date YYYY-MM-DD (inclusive)")
	cmd.Flags().Int("limit", 50, "maximum trades to show (0 for all)")
	return cmd
}

func newTradeDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <trade-id>",
		Short: "Delete a trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			st, err := app.Store()
			if err != nil {
				return err
			}
			if err := st.DeleteTrade(ctx, args[0]); err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{"deleted": args[0]})
			}
			output.Success("✓ Trade %s deleted", args[0])
			return nil
		},
	}
}

func newTradeImportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import trades from CSV, JSON or YAML",
		Long: `Import trades from a file. The format follows the extension:

  .csv          header row with journal column names (symbol, date, netPnl, ...)
                list columns (tags, mistakeChecklist) separate values with ';'
  .json         {"trades": [...]} or a bare array
  .yaml, .yml   the same document in YAML

Trades keep their ids, so importing the same file twice updates in place.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			trades, err := store.ImportFile(args[0])
			if err != nil {
				return err
			}

			dryRun, _ := cmd.Flags().GetBool("dry-run")
			if !dryRun {
				st, err := app.Store()
				if err != nil {
					return err
				}
				for i := range trades {
					if err := st.SaveTrade(ctx, &trades[i]); err != nil {
						return apperrors.Wrapf(err, "importing row %d", i+1)
					}
				}
				logging.LogStoreOp(app.Logger, st.Name(), "import", len(trades), nil)
			}

			if output.IsJSON() {
				return output.JSON(map[string]any{"file": args[0], "trades": len(trades), "dryRun": dryRun})
			}
			if dryRun {
				output.Info("%d trades would be imported from %s", len(trades), args[0])
				return nil
			}
			output.Success("✓ Imported %d trades from %s", len(trades), args[0])
			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "parse the file without saving")
	return cmd
}

func newTradeExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export trades as CSV",
		Example: `  journal trade export > journal.csv
  journal trade export --output journal.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			st, err := app.Store()
			if err != nil {
				return err
			}
			trades, err := st.LoadTrades(ctx)
			if err != nil {
				return err
			}

			path, _ := cmd.Flags().GetString("output")
			if path == "" {
				return store.ExportCSV(cmd.OutOrStdout(), trades)
			}

			f, err := os.Create(path)
			if err != nil {
				return err
			}
			if err := store.ExportCSV(f, trades); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			NewOutput(cmd).Success("✓ Exported %d trades to %s", len(trades), path)
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "write to a file instead of stdout")
	return cmd
}
