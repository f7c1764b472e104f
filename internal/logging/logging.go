// Package logging provides structured logging functionality.
package logging

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig describes where log lines go. Config.Logging is translated into
// this by the CLI so the package does not depend on the config loader.
type LogConfig struct {
	Level      string
	Console    bool
	File       bool
	FilePath   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days

	// Output is the console destination, stderr when nil.
	Output io.Writer
}

var levelLabels = map[string]struct {
	text string
	attr color.Attribute
}{
	"debug": {"DBG", color.FgCyan},
	"info":  {"INF", color.FgGreen},
	"warn":  {"WRN", color.FgYellow},
	"error": {"ERR", color.FgRed},
}

// NewLoggerWithConfig builds a timestamped logger writing to the console,
// a rotating file, both or neither.
func NewLoggerWithConfig(cfg LogConfig) zerolog.Logger {
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))

	var sinks []io.Writer
	if cfg.Console {
		out := cfg.Output
		if out == nil {
			out = os.Stderr
		}
		sinks = append(sinks, zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			FormatLevel: func(i interface{}) string {
				name, _ := i.(string)
				if label, ok := levelLabels[name]; ok {
					return color.New(label.attr).Sprint(label.text)
				}
				return strings.ToUpper(name)
			},
		})
	}

	if cfg.File && cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err == nil {
			sinks = append(sinks, &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   true,
			})
		}
	}

	var w io.Writer = io.Discard
	switch len(sinks) {
	case 0:
	case 1:
		w = sinks[0]
	default:
		w = zerolog.MultiLevelWriter(sinks...)
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// ParseLevel maps a level name onto a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetDebugLevel lowers the global level for --debug.
func SetDebugLevel() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

type contextKey struct{}

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext retrieves the logger from context.
func FromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(zerolog.Logger); ok {
		return logger
	}
	return zerolog.Nop()
}

// WithOperation adds an operation name to the logger context.
func WithOperation(logger zerolog.Logger, operation string) zerolog.Logger {
	return logger.With().Str("operation", operation).Logger()
}

// WithChallenge adds a challenge ID to the logger context.
func WithChallenge(logger zerolog.Logger, challengeID string) zerolog.Logger {
	return logger.With().Str("challenge_id", challengeID).Logger()
}

// WithBackend adds a store backend name to the logger context.
func WithBackend(logger zerolog.Logger, backend string) zerolog.Logger {
	return logger.With().Str("backend", backend).Logger()
}

// LogReport logs a completed analytics run.
func LogReport(logger zerolog.Logger, trades int, totalPnl float64, duration time.Duration) {
	logger.Info().
		Str("event", "report").
		Int("trades", trades).
		Float64("total_pnl", totalPnl).
		Dur("duration", duration).
		Msg("Report generated")
}

// LogStoreOp logs a store operation.
func LogStoreOp(logger zerolog.Logger, backend, op string, records int, err error) {
	event := logger.Debug()
	if err != nil {
		event = logger.Error().Err(err)
	}
	event.
		Str("event", "store").
		Str("backend", backend).
		Str("op", op).
		Int("records", records).
		Msg("Store operation")
}

// LogChallengeLapse logs a challenge whose window has closed.
func LogChallengeLapse(logger zerolog.Logger, challengeID string, deactivated bool) {
	logger.Warn().
		Str("event", "challenge_lapsed").
		Str("challenge_id", challengeID).
		Bool("deactivated", deactivated).
		Msg("Challenge window has closed")
}

// LogAPICall logs an API call.
func LogAPICall(logger zerolog.Logger, method, endpoint string, status int, duration time.Duration, err error) {
	event := logger.Debug().
		Str("event", "api_call").
		Str("method", method).
		Str("endpoint", endpoint).
		Int("status", status).
		Dur("duration", duration)

	if err != nil {
		event.Err(err).Msg("API call failed")
	} else {
		event.Msg("API call completed")
	}
}
