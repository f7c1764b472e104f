package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-journal/internal/config"
	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/models"
	"trading-journal/internal/resilience"
)

func newRemoteJournal(t *testing.T, flaky *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/trades", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if flaky != nil && atomic.AddInt32(flaky, -1) >= 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"trades":[{"id":"r1","symbol":"NIFTY","date":"2024-01-05","netPnl":3000},{"id":"r2","symbol":"NIFTY","date":"2024-01-10","netPnl":"2000"}]}`))
	})
	mux.HandleFunc("/api/challenges/jan", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"jan","startingCapital":30000,"targetCapital":40000,"challengeStartDate":"2024-01-01","challengeEndDate":"2024-01-31","active":true}`))
	})
	mux.HandleFunc("/api/challenges/active", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func restConfig(url string) config.StoreConfig {
	return config.StoreConfig{
		Driver:        config.DriverREST,
		BaseURL:       url + "/api/",
		APIToken:      "secret",
		Timeout:       2 * time.Second,
		RetryAttempts: 3,
	}
}

func TestRESTStoreLoadsSnapshot(t *testing.T) {
	srv := newRemoteJournal(t, nil)
	s := NewRESTStore(restConfig(srv.URL), zerolog.Nop())
	defer s.Close()

	snap, err := LoadSnapshot(context.Background(), s, s, "jan")
	require.NoError(t, err)
	require.Len(t, snap.Trades, 2)
	assert.Equal(t, "r1", snap.Trades[0].ID)
	require.NotNil(t, snap.Challenge)
	assert.Equal(t, "2024-01-31", snap.Challenge.TargetDate)

	active, err := s.ActiveChallenge(context.Background())
	require.NoError(t, err)
	assert.Nil(t, active)

	_, err = s.LoadChallenge(context.Background(), "feb")
	assert.ErrorIs(t, err, apperrors.ErrChallengeNotFound)
}

func TestRESTStoreRetriesServerErrors(t *testing.T) {
	flaky := int32(2)
	srv := newRemoteJournal(t, &flaky)
	s := NewRESTStore(restConfig(srv.URL), zerolog.Nop())
	s.retry.InitialDelay = time.Millisecond

	trades, err := s.LoadTrades(context.Background())
	require.NoError(t, err)
	assert.Len(t, trades, 2)
}

func TestRESTStoreOpensCircuitOnRepeatedFailures(t *testing.T) {
	flaky := int32(100)
	srv := newRemoteJournal(t, &flaky)
	s := NewRESTStore(restConfig(srv.URL), zerolog.Nop())
	s.retry.InitialDelay = time.Millisecond

	_, err := s.LoadTrades(context.Background())
	var remote *apperrors.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusServiceUnavailable, remote.StatusCode)

	_, err = s.LoadTrades(context.Background())
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, resilience.CircuitOpen, s.breaker.State())
	assert.Equal(t, int32(95), atomic.LoadInt32(&flaky), "open circuit stops hitting the backend")
}

func TestRESTStoreRateLimit(t *testing.T) {
	srv := newRemoteJournal(t, nil)
	cfg := restConfig(srv.URL)
	cfg.RateLimit = 0.001
	s := NewRESTStore(cfg, zerolog.Nop())

	for i := 0; i < 5; i++ {
		_, err := s.LoadTrades(context.Background())
		require.NoError(t, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := s.LoadTrades(ctx)
	assert.ErrorIs(t, err, apperrors.ErrTimeout)
	assert.Equal(t, resilience.CircuitClosed, s.breaker.State())
}

func TestRESTStoreDoesNotRetryClientErrors(t *testing.T) {
	srv := newRemoteJournal(t, nil)
	cfg := restConfig(srv.URL)
	cfg.APIToken = "wrong"
	s := NewRESTStore(cfg, zerolog.Nop())

	_, err := s.LoadTrades(context.Background())
	require.Error(t, err)

	var remote *apperrors.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusUnauthorized, remote.StatusCode)
	assert.Equal(t, resilience.CircuitClosed, s.breaker.State())
}

func TestOpenWrapsRESTAsReadOnly(t *testing.T) {
	srv := newRemoteJournal(t, nil)
	s, err := Open(restConfig(srv.URL), zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "rest", s.Name())
	assert.ErrorIs(t, s.SaveTrade(context.Background(), &models.RawTrade{}), apperrors.ErrReadOnly)
	assert.ErrorIs(t, s.DeleteTrade(context.Background(), "r1"), apperrors.ErrReadOnly)
	assert.ErrorIs(t, s.SaveChallenge(context.Background(), &models.Challenge{}), apperrors.ErrReadOnly)
	assert.ErrorIs(t, s.SetChallengeActive(context.Background(), "jan", false), apperrors.ErrReadOnly)

	trades, err := s.LoadTrades(context.Background())
	require.NoError(t, err)
	assert.Len(t, trades, 2)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(config.StoreConfig{Driver: "mongo"}, zerolog.Nop())
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedBackend)
}
