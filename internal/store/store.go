// Package store provides journal persistence interfaces and implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"trading-journal/internal/analytics"
	"trading-journal/internal/config"
	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/logging"
	"trading-journal/internal/models"
)

// TradeLoader supplies the raw trades the analytics engine runs over.
type TradeLoader interface {
	LoadTrades(ctx context.Context) ([]models.RawTrade, error)
}

// ChallengeLoader supplies challenge definitions.
type ChallengeLoader interface {
	// LoadChallenge returns ErrChallengeNotFound when no challenge has the id.
	LoadChallenge(ctx context.Context, id string) (*models.Challenge, error)
	// ActiveChallenge returns nil without error when no challenge is active.
	ActiveChallenge(ctx context.Context) (*models.Challenge, error)
	ListChallenges(ctx context.Context) ([]models.Challenge, error)
}

// JournalStore is a readable and writable journal backend.
type JournalStore interface {
	TradeLoader
	ChallengeLoader

	// SaveTrade inserts or replaces a trade, assigning an id when empty.
	SaveTrade(ctx context.Context, trade *models.RawTrade) error
	DeleteTrade(ctx context.Context, id string) error
	// SaveChallenge inserts or replaces a challenge. Saving an active
	// challenge deactivates every other one.
	SaveChallenge(ctx context.Context, challenge *models.Challenge) error
	SetChallengeActive(ctx context.Context, id string, active bool) error

	Name() string
	Close() error
}

// Open creates the backend selected by cfg.Driver.
func Open(cfg config.StoreConfig, logger zerolog.Logger) (JournalStore, error) {
	logger = logging.WithBackend(logger, cfg.Driver)

	switch strings.ToLower(cfg.Driver) {
	case config.DriverSQLite, "":
		return NewSQLiteStore(cfg.Path)
	case config.DriverFile:
		return NewFileStore(cfg.Path)
	case config.DriverREST:
		return ReadOnly(NewRESTStore(cfg, logger)), nil
	case config.DriverPostgres:
		return NewPostgresStore(cfg.DSN, cfg.DebugSQL)
	default:
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedBackend, cfg.Driver)
	}
}

// LoadSnapshot reads trades and the challenge concurrently and hands back
// one consistent snapshot. With an empty challengeID the active challenge
// is used if there is one; an explicit id that does not exist is an error.
func LoadSnapshot(ctx context.Context, tl TradeLoader, cl ChallengeLoader, challengeID string) (analytics.Snapshot, error) {
	var snap analytics.Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		trades, err := tl.LoadTrades(gctx)
		if err != nil {
			return apperrors.Wrap(err, "loading trades")
		}
		snap.Trades = trades
		return nil
	})

	if cl != nil {
		g.Go(func() error {
			var (
				c   *models.Challenge
				err error
			)
			if challengeID != "" {
				c, err = cl.LoadChallenge(gctx, challengeID)
			} else {
				c, err = cl.ActiveChallenge(gctx)
			}
			if err != nil {
				return apperrors.Wrap(err, "loading challenge")
			}
			snap.Challenge = c
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return analytics.Snapshot{}, err
	}
	if snap.Trades == nil {
		snap.Trades = []models.RawTrade{}
	}
	return snap, nil
}

// FilterTrades applies a TradeFilter to raw trades and returns the newest
// first, as the trade listing shows them.
func FilterTrades(trades []models.RawTrade, filter models.TradeFilter) []models.RawTrade {
	out := make([]models.RawTrade, 0, len(trades))
	for _, t := range trades {
		if filter.Symbol != "" && !strings.EqualFold(strings.TrimSpace(t.Symbol), filter.Symbol) {
			continue
		}
		day := dayOf(t.Date)
		if filter.StartDate != "" && (day == "" || day < filter.StartDate) {
			continue
		}
		if filter.EndDate != "" && (day == "" || day > filter.EndDate) {
			continue
		}
		out = append(out, t)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := dayOf(out[i].Date)+" "+out[i].Time, dayOf(out[j].Date)+" "+out[j].Time
		return a > b
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out
}

// dayOf returns the YYYY-MM-DD prefix of a stored date.
func dayOf(date string) string {
	date = strings.TrimSpace(date)
	if len(date) < 10 {
		return date
	}
	return date[:10]
}
