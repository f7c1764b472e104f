package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"trading-journal/internal/analytics"
	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/logging"
	"trading-journal/internal/models"
	"trading-journal/internal/store"
)

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	Trades    []models.RawTrade `json:"trades" validate:"required"`
	Challenge *models.Challenge `json:"challenge,omitempty"`
	// Timezone is an IANA zone name; the server zone is used when empty.
	Timezone string `json:"timezone,omitempty"`
	// Now pins "today" for reproducible reports.
	Now *time.Time `json:"now,omitempty"`
}

type calendarQuery struct {
	Year  int `query:"year" validate:"omitempty,gte=1900,lte=9999"`
	Month int `query:"month" validate:"omitempty,gte=1,lte=12"`
}

func (s *Server) options() analytics.Options {
	return analytics.Options{Location: s.location, Now: s.clock()}
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"time":   s.clock().UTC(),
	})
}

func (s *Server) analyze(c echo.Context) error {
	req := new(AnalyzeRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if err := s.validator.Struct(req); err != nil {
		return s.fail(c, err)
	}

	opts := s.options()
	if tz := strings.TrimSpace(req.Timezone); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return s.fail(c, apperrors.NewValidationError("timezone", tz, "unknown timezone"))
		}
		opts.Location = loc
	}
	if req.Now != nil {
		opts.Now = *req.Now
	}

	start := time.Now()
	report := analytics.Analyze(analytics.Snapshot{Trades: req.Trades, Challenge: req.Challenge}, opts)
	logging.LogReport(logging.FromContext(c.Request().Context()), report.TradeCount, report.Performance.TotalPnl, time.Since(start))

	return c.JSON(http.StatusOK, report)
}

func (s *Server) report(c echo.Context) error {
	ctx := c.Request().Context()

	snap, err := store.LoadSnapshot(ctx, s.source, s.source, c.QueryParam("challenge"))
	if err != nil {
		return s.fail(c, err)
	}

	start := time.Now()
	report := analytics.Analyze(snap, s.options())
	logging.LogReport(logging.FromContext(c.Request().Context()), report.TradeCount, report.Performance.TotalPnl, time.Since(start))

	return c.JSON(http.StatusOK, report)
}

func (s *Server) calendar(c echo.Context) error {
	ctx := c.Request().Context()

	var q calendarQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "year and month must be integers"})
	}
	if err := s.validator.Struct(q); err != nil {
		return s.fail(c, err)
	}

	opts := s.options()
	now := opts.Now.In(opts.Location)
	if q.Year == 0 {
		q.Year = now.Year()
	}
	if q.Month == 0 {
		q.Month = int(now.Month())
	}

	raw, err := s.source.LoadTrades(ctx)
	if err != nil {
		return s.fail(c, err)
	}
	trades := analytics.NormalizeAll(raw, opts)

	return c.JSON(http.StatusOK, analytics.BuildCalendar(trades, q.Year, time.Month(q.Month), opts))
}

func (s *Server) challengeProgress(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	snap, err := store.LoadSnapshot(ctx, s.source, s.source, id)
	if err != nil {
		return s.fail(c, err)
	}
	if snap.Challenge == nil {
		return s.fail(c, apperrors.Wrapf(apperrors.ErrChallengeNotFound, "challenge %s", id))
	}

	opts := s.options()
	progress := analytics.TrackChallenge(*snap.Challenge, analytics.NormalizeAll(snap.Trades, opts), opts)
	if progress.Lapsed {
		logging.LogChallengeLapse(logging.WithChallenge(logging.FromContext(c.Request().Context()), id), id, false)
	}

	return c.JSON(http.StatusOK, progress)
}
