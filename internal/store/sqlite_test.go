package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/models"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteTradeRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	later := &models.RawTrade{Symbol: "TCS", Date: "2024-01-03", NetPnl: "-40", StopLoss: nil, Tags: []string{"gap"}}
	earlier := &models.RawTrade{ID: "fixed", Symbol: "INFY", Date: "2024-01-02", Time: "09:30", EntryPrice: 1500.5, Quantity: 10}

	require.NoError(t, s.SaveTrade(ctx, later))
	require.NoError(t, s.SaveTrade(ctx, earlier))
	assert.NotEmpty(t, later.ID, "an id is assigned on save")

	trades, err := s.LoadTrades(ctx)
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "fixed", trades[0].ID)
	assert.Equal(t, 1500.5, trades[0].EntryPrice)
	assert.Equal(t, "-40", trades[1].NetPnl)
	assert.Nil(t, trades[1].StopLoss)
	assert.Equal(t, []any{"gap"}, trades[1].Tags)

	earlier.Notes = "moved stop"
	require.NoError(t, s.SaveTrade(ctx, earlier))
	trades, err = s.LoadTrades(ctx)
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "moved stop", trades[0].Notes)

	require.NoError(t, s.DeleteTrade(ctx, "fixed"))
	err = s.DeleteTrade(ctx, "fixed")
	assert.ErrorIs(t, err, apperrors.ErrTradeNotFound)
}

func TestSQLiteChallenges(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	active, err := s.ActiveChallenge(ctx)
	require.NoError(t, err)
	assert.Nil(t, active)

	_, err = s.LoadChallenge(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrChallengeNotFound)

	jan := &models.Challenge{ID: "jan", StartingCapital: 30000, TargetCapital: 40000, StartDate: "2024-01-01", TargetDate: "2024-01-31", Active: true}
	feb := &models.Challenge{ID: "feb", StartingCapital: 35000, TargetCapital: 45000, StartDate: "2024-02-01", TargetDate: "2024-02-29"}
	require.NoError(t, s.SaveChallenge(ctx, jan))
	require.NoError(t, s.SaveChallenge(ctx, feb))

	active, err = s.ActiveChallenge(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "jan", active.ID)
	assert.Equal(t, "2024-01-31", active.TargetDate)

	require.NoError(t, s.SetChallengeActive(ctx, "feb", true))
	active, err = s.ActiveChallenge(ctx)
	require.NoError(t, err)
	assert.Equal(t, "feb", active.ID)

	got, err := s.LoadChallenge(ctx, "jan")
	require.NoError(t, err)
	assert.False(t, got.Active, "activating one challenge deactivates the rest")

	all, err := s.ListChallenges(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.ErrorIs(t, s.SetChallengeActive(ctx, "nope", true), apperrors.ErrChallengeNotFound)
}
