package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"trading-journal/internal/analytics"
	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/logging"
	"trading-journal/internal/models"
)

var validate = validator.New()

// addChallengeCommands adds capital-growth challenge commands.
func addChallengeCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "challenge",
		Short: "Capital-growth challenges",
		Long: `Track a capital-growth goal over a date window.

Only one challenge is active at a time; setting an active challenge
deactivates the previous one.`,
	}

	cmd.AddCommand(newChallengeStatusCmd(app))
	cmd.AddCommand(newChallengeSetCmd(app))
	cmd.AddCommand(newChallengeDeactivateCmd(app))
	cmd.AddCommand(newChallengeListCmd(app))

	rootCmd.AddCommand(cmd)
}

func newChallengeStatusCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [challenge-id]",
		Short: "Show progress towards the challenge target",
		Long: `Show progress of a challenge (the active one by default).

With --deactivate-lapsed, or analytics.deactivate_lapsed in the config, a
challenge whose target date has passed is marked inactive.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			snap, opts, err := app.snapshot(ctx, id)
			if err != nil {
				return err
			}
			if snap.Challenge == nil {
				if output.IsJSON() {
					return output.JSON(nil)
				}
				output.Info("No active challenge.")
				output.Dim("Tip: start one with 'journal challenge set --capital 30000 --target 40000 --end 2024-01-31'.")
				return nil
			}

			trades := analytics.NormalizeAll(snap.Trades, opts)
			progress := analytics.TrackChallenge(*snap.Challenge, trades, opts)

			deactivate, _ := cmd.Flags().GetBool("deactivate-lapsed")
			deactivate = deactivate || app.Config.Analytics.DeactivateLapsed
			if progress.Lapsed && progress.Active {
				logger := logging.WithChallenge(app.Logger, progress.ChallengeID)
				if deactivate {
					st, err := app.Store()
					if err != nil {
						return err
					}
					if err := st.SetChallengeActive(ctx, progress.ChallengeID, false); err != nil {
						return err
					}
					progress.Active = false
				}
				logging.LogChallengeLapse(logger, progress.ChallengeID, deactivate)
			}

			if output.IsJSON() {
				return output.JSON(progress)
			}
			renderChallenge(output, progress)
			if progress.Lapsed && !deactivate {
				output.Println()
				output.Warning("The challenge window has closed. Use --deactivate-lapsed to retire it.")
			}
			return nil
		},
	}

	cmd.Flags().Bool("deactivate-lapsed", false, "deactivate the challenge if its target date has passed")
	return cmd
}

// challengeInput is the validated form of 'challenge set'.
type challengeInput struct {
	ID              string  `validate:"omitempty,max=64"`
	StartingCapital float64 `validate:"gt=0"`
	TargetCapital   float64 `validate:"gt=0,nefield=StartingCapital"`
	StartDate       string  `validate:"required,datetime=2006-01-02"`
	StartTime       string  `validate:"omitempty,datetime=15:04"`
	TargetDate      string  `validate:"required,datetime=2006-01-02"`
}

func newChallengeSetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or update a challenge",
		Example: `  journal challenge set --capital 30000 --target 40000 --start 2024-01-01 --end 2024-01-31
  journal challenge set --id jan --name "January push" --capital 30000 --target 40000 --end 2024-01-31`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			opts, err := app.Options()
			if err != nil {
				return err
			}

			in := challengeInput{}
			in.ID, _ = cmd.Flags().GetString("id")
			in.StartingCapital, _ = cmd.Flags().GetFloat64("capital")
			in.TargetCapital, _ = cmd.Flags().GetFloat64("target")
			in.StartDate, _ = cmd.Flags().GetString("start")
			in.StartTime, _ = cmd.Flags().GetString("start-time")
			in.TargetDate, _ = cmd.Flags().GetString("end")
			if in.StartDate == "" {
				in.StartDate = analytics.DateKey(opts.Now.In(opts.Location))
			}
			if err := validate.Struct(in); err != nil {
				return apperrors.Wrap(apperrors.ErrInputValidation, err.Error())
			}
			if in.TargetDate < in.StartDate {
				return apperrors.NewValidationError("end", in.TargetDate, "must not be before the start date")
			}

			name, _ := cmd.Flags().GetString("name")
			inactive, _ := cmd.Flags().GetBool("inactive")
			c := &models.Challenge{
				ID:              in.ID,
				Name:            name,
				StartingCapital: in.StartingCapital,
				TargetCapital:   in.TargetCapital,
				StartDate:       in.StartDate,
				StartTime:       in.StartTime,
				TargetDate:      in.TargetDate,
				Active:          !inactive,
			}

			st, err := app.Store()
			if err != nil {
				return err
			}
			if c.ID != "" {
				if existing, err := st.LoadChallenge(ctx, c.ID); err == nil {
					c.CreatedAt = existing.CreatedAt
				} else if !apperrors.Is(err, apperrors.ErrChallengeNotFound) {
					return err
				}
			}
			if err := st.SaveChallenge(ctx, c); err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(c)
			}
			output.Success("✓ Challenge %s saved", c.ID)
			output.KeyValues(
				"Capital", FormatIndianCurrency(c.StartingCapital)+" → "+FormatIndianCurrency(c.TargetCapital),
				"Window", c.StartDate+" to "+c.TargetDate,
				"Active", strconv.FormatBool(c.Active),
			)
			return nil
		},
	}

	cmd.Flags().String("id", "", "challenge id (generated when empty)")
	cmd.Flags().String("name", "", "display name")
	cmd.Flags().Float64("capital", 0, "starting capital")
	cmd.Flags().Float64("target", 0, "target capital")
	cmd.Flags().String("start", "", "start date YYYY-MM-DD (default: today)")
	cmd.Flags().String("start-time", "", "start time HH:MM; trades before it on the start date are excluded")
	cmd.Flags().String("end", "", "target date YYYY-MM-DD (inclusive)")
	cmd.Flags().Bool("inactive", false, "save without making it the active challenge")
	cmd.MarkFlagRequired("capital")
	cmd.MarkFlagRequired("target")
	cmd.MarkFlagRequired("end")
	return cmd
}

func newChallengeDeactivateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <challenge-id>",
		Short: "Mark a challenge inactive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			st, err := app.Store()
			if err != nil {
				return err
			}
			if err := st.SetChallengeActive(ctx, args[0], false); err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]any{"id": args[0], "active": false})
			}
			output.Success("✓ Challenge %s deactivated", args[0])
			return nil
		},
	}
}

func newChallengeListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List challenges",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			st, err := app.Store()
			if err != nil {
				return err
			}
			challenges, err := st.ListChallenges(ctx)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(challenges)
			}
			if len(challenges) == 0 {
				output.Info("No challenges yet.")
				return nil
			}

			table := NewTable(output, "ID", "Name", "Capital", "Target", "Window", "Active")
			for _, c := range challenges {
				active := ""
				if c.Active {
					active = output.Green("●")
				}
				table.AddRow(
					TruncateString(c.ID, 36),
					TruncateString(c.Name, 20),
					FormatIndianCurrency(c.StartingCapital),
					FormatIndianCurrency(c.TargetCapital),
					app.displayDate(c.StartDate)+" → "+app.displayDate(c.TargetDate),
					active,
				)
			}
			table.Render()
			return nil
		},
	}
}

func renderChallenge(output *Output, p analytics.ChallengeProgress) {
	title := "Challenge " + p.ChallengeID
	if p.Name != "" {
		title += " - " + p.Name
	}
	output.Bold("%s", title)

	status := output.Green("on track")
	switch {
	case p.TargetReached:
		status = output.Green("target reached")
	case p.Lapsed:
		status = output.Red("lapsed")
	case !p.Active:
		status = output.DimText("inactive")
	}

	window := strings.TrimSpace(p.WindowStart + " → " + p.WindowEnd)
	output.KeyValues(
		"Status", status,
		"Window", window,
		"Progress", output.ProgressBar(p.ProgressToTarget),
		"Capital", FormatIndianCurrency(p.CurrentCapital)+" of "+FormatIndianCurrency(p.TargetCapital),
		"P&L", output.FormatPnL(p.TotalPnl)+returnOnCapital(output, p),
		"Today", output.FormatPnL(p.DailyProfitToday),
		"Days", fmt.Sprintf("%d elapsed, %d remaining", p.DaysElapsed, p.DaysRemaining),
		"Daily target", FormatIndianCurrency(p.DailyTargetAmount),
		"Trades", fmt.Sprintf("%d (%s win rate)", p.TradeCount, FormatRate(p.WinRate)),
		"Max drawdown", FormatRate(p.MaxDrawdownPct),
	)
}

// returnOnCapital is the P&L as a percentage of starting capital, or empty
// when there is no capital to measure against.
func returnOnCapital(output *Output, p analytics.ChallengeProgress) string {
	if p.StartingCapital <= 0 {
		return ""
	}
	pct := p.TotalPnl / p.StartingCapital * 100
	return " (" + output.ColoredString(output.PnLColor(pct), FormatPercent(pct)) + ")"
}
