// Package api serves journal analytics over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"trading-journal/internal/config"
	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/logging"
	"trading-journal/internal/security"
	"trading-journal/internal/store"
)

// Source is the journal the server reports on.
type Source interface {
	store.TradeLoader
	store.ChallengeLoader
}

// Server is the HTTP API.
type Server struct {
	echo      *echo.Echo
	validator *goValidator.Validate
	source    Source
	location  *time.Location
	cfg       config.ServerConfig
	logger    zerolog.Logger
	clock     func() time.Time
}

// NewServer builds the API with its routes registered. loc interprets
// trade dates when a request does not name a timezone.
func NewServer(cfg config.ServerConfig, source Source, loc *time.Location, logger zerolog.Logger) *Server {
	if loc == nil {
		loc = time.Local
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout

	s := &Server{
		echo:      e,
		validator: goValidator.New(),
		source:    source,
		location:  loc,
		cfg:       cfg,
		logger:    logging.WithOperation(logger, "api"),
		clock:     time.Now,
	}

	e.Use(middleware.Recover())
	e.Use(s.requestLogger)
	s.SetupRoutes()
	return s
}

// SetupRoutes registers every endpoint under /api.
func (s *Server) SetupRoutes() {
	base := s.echo.Group("/api")
	base.GET("/health", s.health)
	base.POST("/analyze", s.analyze)
	base.GET("/report", s.report)
	base.GET("/calendar", s.calendar)
	base.GET("/challenges/:id/progress", s.challengeProgress)
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("Starting HTTP server")
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server, waiting at most the configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s.logger.Info().Msg("Shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		logger := s.logger.With().Str("request_id", uuid.NewString()).Logger()
		req := c.Request()
		c.SetRequest(req.WithContext(logging.WithLogger(req.Context(), logger)))

		err := next(c)
		if err != nil {
			c.Error(err)
		}
		logging.LogAPICall(logger, req.Method, c.Path(), c.Response().Status, time.Since(start), err)
		return nil
	}
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

// fail maps err onto a status code and writes it as JSON.
func (s *Server) fail(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	var invalid goValidator.ValidationErrors

	switch {
	case apperrors.Is(err, apperrors.ErrChallengeNotFound), apperrors.Is(err, apperrors.ErrTradeNotFound):
		status = http.StatusNotFound
	case apperrors.Is(err, apperrors.ErrInputValidation), errors.As(err, &invalid):
		status = http.StatusBadRequest
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger := logging.FromContext(c.Request().Context())
		logger.Error().
			Str("error", security.MaskSensitive(err.Error())).
			Str("path", c.Path()).
			Msg("Request failed")
		msg = "internal error"
	}
	return c.JSON(status, errorResponse{Error: msg})
}
