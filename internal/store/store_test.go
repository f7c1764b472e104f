package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/models"
)

type memoryLoader struct {
	trades     []models.RawTrade
	challenges []models.Challenge
	tradeErr   error
}

func (m *memoryLoader) LoadTrades(context.Context) ([]models.RawTrade, error) {
	return m.trades, m.tradeErr
}

func (m *memoryLoader) LoadChallenge(_ context.Context, id string) (*models.Challenge, error) {
	for _, c := range m.challenges {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", apperrors.ErrChallengeNotFound, id)
}

func (m *memoryLoader) ActiveChallenge(context.Context) (*models.Challenge, error) {
	for _, c := range m.challenges {
		if c.Active {
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memoryLoader) ListChallenges(context.Context) ([]models.Challenge, error) {
	return m.challenges, nil
}

func TestLoadSnapshot(t *testing.T) {
	ctx := context.Background()
	m := &memoryLoader{
		trades:     []models.RawTrade{{ID: "1", Date: "2024-01-02"}},
		challenges: []models.Challenge{{ID: "jan", Active: true}, {ID: "old"}},
	}

	snap, err := LoadSnapshot(ctx, m, m, "")
	require.NoError(t, err)
	assert.Len(t, snap.Trades, 1)
	require.NotNil(t, snap.Challenge)
	assert.Equal(t, "jan", snap.Challenge.ID)

	snap, err = LoadSnapshot(ctx, m, m, "old")
	require.NoError(t, err)
	assert.Equal(t, "old", snap.Challenge.ID)

	_, err = LoadSnapshot(ctx, m, m, "missing")
	assert.ErrorIs(t, err, apperrors.ErrChallengeNotFound)

	snap, err = LoadSnapshot(ctx, m, nil, "")
	require.NoError(t, err)
	assert.Nil(t, snap.Challenge)
}

func TestLoadSnapshotWithoutActiveChallenge(t *testing.T) {
	m := &memoryLoader{}

	snap, err := LoadSnapshot(context.Background(), m, m, "")
	require.NoError(t, err)
	assert.Nil(t, snap.Challenge)
	assert.NotNil(t, snap.Trades)
}

func TestLoadSnapshotPropagatesTradeErrors(t *testing.T) {
	boom := errors.New("disk on fire")
	m := &memoryLoader{tradeErr: boom}

	_, err := LoadSnapshot(context.Background(), m, m, "")
	assert.ErrorIs(t, err, boom)
}

func TestFilterTrades(t *testing.T) {
	trades := []models.RawTrade{
		{ID: "a", Symbol: "TCS", Date: "2024-01-02", Time: "09:30"},
		{ID: "b", Symbol: "tcs", Date: "2024-01-02", Time: "14:00"},
		{ID: "c", Symbol: "INFY", Date: "2024-01-05"},
		{ID: "d", Symbol: "TCS", Date: "2024-01-09T10:00:00Z"},
		{ID: "e", Symbol: "TCS"},
	}

	got := FilterTrades(trades, models.TradeFilter{Symbol: "TCS", StartDate: "2024-01-02", EndDate: "2024-01-09"})
	ids := make([]string, len(got))
	for i, t := range got {
		ids[i] = t.ID
	}
	assert.Equal(t, []string{"d", "b", "a"}, ids)

	assert.Len(t, FilterTrades(trades, models.TradeFilter{Limit: 2}), 2)
	assert.Len(t, FilterTrades(trades, models.TradeFilter{}), 5)
}
