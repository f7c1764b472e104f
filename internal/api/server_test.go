package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-journal/internal/analytics"
	"trading-journal/internal/config"
	"trading-journal/internal/models"
	"trading-journal/internal/store"
)

var testNow = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	ctx := context.Background()

	fs, err := store.NewFileStore(filepath.Join(t.TempDir(), "journal.json"))
	require.NoError(t, err)
	require.NoError(t, fs.SaveTrade(ctx, &models.RawTrade{ID: "a", Symbol: "NIFTY", Date: "2024-01-05", Time: "10:00", NetPnl: 500}))
	require.NoError(t, fs.SaveTrade(ctx, &models.RawTrade{ID: "b", Symbol: "NIFTY", Date: "2024-01-10", Time: "11:00", NetPnl: -200}))
	require.NoError(t, fs.SaveChallenge(ctx, &models.Challenge{
		ID:              "jan",
		StartingCapital: 30000,
		TargetCapital:   40000,
		StartDate:       "2024-01-01",
		TargetDate:      "2024-01-31",
		Active:          true,
	}))

	s := NewServer(config.ServerConfig{Port: 8080}, fs, time.UTC, zerolog.Nop())
	s.clock = func() time.Time { return testNow }
	return s
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestAnalyzeMatchesEngine(t *testing.T) {
	body := `{
		"trades": [
			{"id": "x1", "symbol": "BANKNIFTY", "date": "2024-01-08", "netPnl": 1200, "strategyUsed": "ORB", "confidenceLevel": 8},
			{"id": "x2", "symbol": "BANKNIFTY", "date": "2024-01-09", "netPnl": "-300", "mistakeChecklist": ["FOMO"]}
		],
		"challenge": {"id": "c", "startingCapital": 10000, "targetCapital": 12000, "startDate": "2024-01-01", "targetDate": "2024-01-31", "active": true},
		"timezone": "UTC",
		"now": "2024-01-15T12:00:00Z"
	}`

	rec := do(t, newTestServer(t), http.MethodPost, "/api/analyze", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var req AnalyzeRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	want, err := json.Marshal(analytics.Analyze(
		analytics.Snapshot{Trades: req.Trades, Challenge: req.Challenge},
		analytics.Options{Location: time.UTC, Now: *req.Now},
	))
	require.NoError(t, err)
	assert.JSONEq(t, string(want), rec.Body.String())
}

func TestAnalyzeRejectsBadInput(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"trades": [`},
		{"missing trades", `{}`},
		{"unknown timezone", `{"trades": [], "timezone": "Mars/Olympus"}`},
		{"challenge without id", `{"trades": [], "challenge": {"startingCapital": 1}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/analyze", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestReportUsesActiveChallenge(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/api/report", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var report analytics.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 2, report.TradeCount)
	assert.InDelta(t, 300, report.Performance.TotalPnl, 1e-9)
	require.NotNil(t, report.Challenge)
	assert.Equal(t, "jan", report.Challenge.ChallengeID)
	assert.InDelta(t, 30300, report.Challenge.CurrentCapital, 1e-9)
	assert.Equal(t, 1, report.Calendar.Month)
}

func TestReportUnknownChallenge(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/api/report?challenge=nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCalendar(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/calendar?year=2024&month=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var cal analytics.CalendarMonth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cal))
	assert.Equal(t, "January 2024", cal.Label)
	assert.Equal(t, 2, cal.Summary.TradingDays)
	assert.InDelta(t, 300, cal.Summary.TotalPnl, 1e-9)

	rec = do(t, s, http.MethodGet, "/api/calendar", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cal))
	assert.Equal(t, 2024, cal.Year)
	assert.Equal(t, 1, cal.Month)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/calendar?month=13", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/calendar?month=jan", "").Code)
}

func TestChallengeProgress(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/challenges/jan/progress", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var p analytics.ChallengeProgress
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, 2, p.TradeCount)
	assert.InDelta(t, 3, p.ProgressToTarget, 1e-9)
	assert.Equal(t, 17, p.DaysRemaining)

	rec = do(t, s, http.MethodGet, "/api/challenges/feb/progress", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
