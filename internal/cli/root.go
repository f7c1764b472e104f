// Package cli provides the command-line interface for the trading journal.
package cli

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"trading-journal/internal/analytics"
	"trading-journal/internal/config"
	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/logging"
	"trading-journal/internal/security"
	"trading-journal/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2024-01-01"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger

	journal   store.JournalStore
	openStore func(config.StoreConfig, zerolog.Logger) (store.JournalStore, error)
	clock     func() time.Time
}

// Store opens the configured backend on first use.
func (a *App) Store() (store.JournalStore, error) {
	if a.journal != nil {
		return a.journal, nil
	}
	st, err := a.openStore(a.Config.Store, a.Logger)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", a.Config.Store.Driver, err)
	}
	a.Logger.Debug().Str("backend", st.Name()).Msg("Journal store opened")
	a.journal = st
	return st, nil
}

// Options returns engine options in the configured timezone.
func (a *App) Options() (analytics.Options, error) {
	loc, err := a.Config.Location()
	if err != nil {
		return analytics.Options{}, err
	}
	return analytics.Options{Location: loc, Now: a.clock()}, nil
}

// Close releases the store if one was opened.
func (a *App) Close() error {
	if a.journal == nil {
		return nil
	}
	err := a.journal.Close()
	a.journal = nil
	return err
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{openStore: store.Open, clock: time.Now})
}

func newRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "journal",
		Short: "Trading journal analytics",
		Long: `Trading Journal records your trades and turns them into performance,
psychology and challenge analytics.

Trades live in a SQLite database by default; JSON/YAML documents, a remote
journal API and PostgreSQL are also supported (see 'journal config show').`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/trading-journal)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("tz", "", "timezone for bucketing trades into days (e.g. Asia/Kolkata)")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	addJournalCommands(rootCmd, app)
	addChallengeCommands(rootCmd, app)
	addTradeCommands(rootCmd, app)
	rootCmd.AddCommand(newServeCmd(app))

	return rootCmd
}

// setup loads configuration and builds the logger unless a caller already
// supplied them.
func (a *App) setup(cmd *cobra.Command) error {
	debug, _ := cmd.Flags().GetBool("debug")

	if a.Config == nil {
		dir, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(dir)
		if err != nil {
			return err
		}
		a.Config = cfg

		logCfg := logging.LogConfig{
			Level:      cfg.Logging.Level,
			Console:    true,
			File:       cfg.Logging.File,
			FilePath:   cfg.Logging.FilePath,
			MaxSize:    cfg.Logging.MaxSize,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAge:     cfg.Logging.MaxAge,
			Output:     cmd.ErrOrStderr(),
		}
		a.Logger = logging.NewLoggerWithConfig(logCfg)
	}

	if debug {
		logging.SetDebugLevel()
		a.Logger = a.Logger.Level(zerolog.DebugLevel)
	}

	if !a.Config.UI.ColorEnabled {
		color.NoColor = true
	}

	if tz, _ := cmd.Flags().GetString("tz"); strings.TrimSpace(tz) != "" {
		a.Config.Analytics.Timezone = tz
		if _, err := a.Config.Location(); err != nil {
			return err
		}
	}
	return nil
}

// displayDate renders a YYYY-MM-DD key with the configured date format.
func (a *App) displayDate(key string) string {
	t, err := time.Parse("2006-01-02", key)
	if err != nil || a.Config.UI.DateFormat == "" {
		return key
	}
	return t.Format(a.Config.UI.DateFormat)
}

// displayTime renders an HH:MM[:SS] clock with the configured time format.
func (a *App) displayTime(clock string) string {
	if a.Config.UI.TimeFormat == "" {
		return clock
	}
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, clock); err == nil {
			return t.Format(a.Config.UI.TimeFormat)
		}
	}
	return clock
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Trading Journal v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			cfg := redacted(app.Config)
			if output.IsJSON() {
				return output.JSON(cfg)
			}
			return showConfig(output, cfg)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			path := config.ConfigPath(app.Config.Dir)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": path})
			} else {
				output.Println(path)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("✓ Configuration is valid")
			return nil
		},
	})

	return cmd
}

// redacted returns a copy of cfg safe to print.
func redacted(cfg *config.Config) config.Config {
	out := *cfg
	if out.Store.APIToken != "" {
		out.Store.APIToken = security.MaskSecret(out.Store.APIToken)
	}
	out.Store.DSN = security.RedactDSN(out.Store.DSN)
	return out
}

func showConfig(output *Output, cfg config.Config) error {
	output.Bold("Store")
	output.KeyValues(
		"Driver", cfg.Store.Driver,
		"Path", cfg.Store.Path,
		"DSN", cfg.Store.DSN,
		"Base URL", cfg.Store.BaseURL,
		"API Token", cfg.Store.APIToken,
		"Timeout", cfg.Store.Timeout.String(),
		"Retries", fmt.Sprintf("%d", cfg.Store.RetryAttempts),
	)
	output.Println()

	output.Bold("Analytics")
	output.KeyValues(
		"Timezone", cfg.Analytics.Timezone,
		"Deactivate lapsed", fmt.Sprintf("%v", cfg.Analytics.DeactivateLapsed),
	)
	output.Println()

	output.Bold("Server")
	output.KeyValues(
		"Address", cfg.Addr(),
		"Read timeout", cfg.Server.ReadTimeout.String(),
		"Write timeout", cfg.Server.WriteTimeout.String(),
	)
	output.Println()

	output.Bold("Logging")
	output.KeyValues(
		"Level", cfg.Logging.Level,
		"File", fmt.Sprintf("%v", cfg.Logging.File),
		"File path", cfg.Logging.FilePath,
	)
	return nil
}

// splitAddr parses host:port, allowing an empty host.
func splitAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, apperrors.NewValidationError("addr", addr, err.Error())
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, apperrors.NewValidationError("addr", addr, "invalid port")
	}
	return host, port, nil
}
