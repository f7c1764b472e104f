package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"trading-journal/internal/config"
	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/logging"
	"trading-journal/internal/models"
	"trading-journal/internal/resilience"
	"trading-journal/pkg/utils"
)

// RESTStore reads a journal served by a remote HTTP API:
//
//	GET /trades             -> [trade...] or {"trades": [trade...]}
//	GET /challenges         -> [challenge...]
//	GET /challenges/{id}    -> challenge, 404 when unknown
//	GET /challenges/active  -> challenge, 404 or 204 when none is active
type RESTStore struct {
	client  *resty.Client
	retry   utils.RetryConfig
	breaker *resilience.CircuitBreaker
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewRESTStore creates a remote journal reader.
func NewRESTStore(cfg config.StoreConfig, logger zerolog.Logger) *RESTStore {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if cfg.APIToken != "" {
		client.SetAuthToken(cfg.APIToken)
	}

	retry := utils.DefaultRetryConfig()
	if cfg.RetryAttempts > 0 {
		retry.MaxAttempts = cfg.RetryAttempts
	}
	retry.ShouldRetry = isTemporary

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	breakerCfg := resilience.DefaultCircuitBreakerConfig()
	breakerCfg.IsFailure = isTemporary

	return &RESTStore{
		client:  client,
		retry:   retry,
		breaker: resilience.NewCircuitBreaker("rest:"+cfg.BaseURL, breakerCfg),
		limiter: rate.NewLimiter(limit, 5),
		logger:  logger,
	}
}

// Name returns the backend name.
func (s *RESTStore) Name() string { return "rest" }

// Close releases idle connections.
func (s *RESTStore) Close() error {
	s.client.GetClient().CloseIdleConnections()
	return nil
}

func isTemporary(err error) bool {
	var remote *apperrors.RemoteError
	if apperrors.As(err, &remote) {
		return remote.Temporary()
	}
	if apperrors.Is(err, resilience.ErrCircuitOpen) || apperrors.Is(err, apperrors.ErrTimeout) {
		return false
	}
	return !apperrors.Is(err, context.Canceled) && !apperrors.Is(err, context.DeadlineExceeded)
}

// get fetches endpoint and returns the body of a 2xx response. A 404 or
// 204 yields a nil body. Requests are paced by the rate limiter; repeated
// temporary failures open the circuit and later calls fail fast with
// ErrCircuitOpen until the cooldown passes.
func (s *RESTStore) get(ctx context.Context, endpoint string) ([]byte, error) {
	return utils.RetryWithResult(ctx, s.retry, func() ([]byte, error) {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrTimeout, err)
		}
		return resilience.ExecuteWithResult(s.breaker, ctx, func(ctx context.Context) ([]byte, error) {
			return s.fetch(ctx, endpoint)
		})
	})
}

func (s *RESTStore) fetch(ctx context.Context, endpoint string) ([]byte, error) {
	start := time.Now()
	resp, err := s.client.R().SetContext(ctx).Get(endpoint)
	if err != nil {
		logging.LogAPICall(s.logger, http.MethodGet, endpoint, 0, time.Since(start), err)
		return nil, fmt.Errorf("%w: %v", apperrors.ErrConnectionFailed, err)
	}
	logging.LogAPICall(s.logger, http.MethodGet, endpoint, resp.StatusCode(), time.Since(start), nil)

	switch {
	case resp.StatusCode() == http.StatusNotFound, resp.StatusCode() == http.StatusNoContent:
		return nil, nil
	case resp.IsError():
		return nil, apperrors.NewRemoteError(resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	return resp.Body(), nil
}

// LoadTrades fetches every trade from the remote journal.
func (s *RESTStore) LoadTrades(ctx context.Context) ([]models.RawTrade, error) {
	body, err := s.get(ctx, "/trades")
	if err != nil {
		return nil, apperrors.NewStoreError("rest", "load trades", err)
	}

	doc, err := DecodeDocument(body, false)
	if err != nil {
		return nil, apperrors.NewStoreError("rest", "decode trades", err)
	}
	if doc.Trades == nil {
		doc.Trades = []models.RawTrade{}
	}
	logging.LogStoreOp(s.logger, "rest", "load trades", len(doc.Trades), nil)
	return doc.Trades, nil
}

func (s *RESTStore) challenge(ctx context.Context, endpoint string) (*models.Challenge, error) {
	body, err := s.get(ctx, endpoint)
	if err != nil {
		return nil, apperrors.NewStoreError("rest", "load challenge", err)
	}
	if len(body) == 0 || string(body) == "null" {
		return nil, nil
	}

	var record models.ChallengeRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, apperrors.NewStoreError("rest", "decode challenge", err)
	}
	c := record.Resolve()
	return &c, nil
}

// LoadChallenge fetches one challenge by id.
func (s *RESTStore) LoadChallenge(ctx context.Context, id string) (*models.Challenge, error) {
	c, err := s.challenge(ctx, "/challenges/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrChallengeNotFound, id)
	}
	return c, nil
}

// ActiveChallenge fetches the active challenge, or nil when there is none.
func (s *RESTStore) ActiveChallenge(ctx context.Context) (*models.Challenge, error) {
	return s.challenge(ctx, "/challenges/active")
}

// ListChallenges fetches every challenge.
func (s *RESTStore) ListChallenges(ctx context.Context) ([]models.Challenge, error) {
	body, err := s.get(ctx, "/challenges")
	if err != nil {
		return nil, apperrors.NewStoreError("rest", "list challenges", err)
	}

	var records []models.ChallengeRecord
	if len(body) > 0 {
		if err := json.Unmarshal(body, &records); err != nil {
			return nil, apperrors.NewStoreError("rest", "decode challenges", err)
		}
	}
	out := make([]models.Challenge, 0, len(records))
	for _, r := range records {
		out = append(out, r.Resolve())
	}
	return out, nil
}

// readOnlyLoader is what ReadOnly needs from a backend.
type readOnlyLoader interface {
	TradeLoader
	ChallengeLoader
	Name() string
	Close() error
}

// readOnlyStore rejects every write with ErrReadOnly.
type readOnlyStore struct {
	readOnlyLoader
}

// ReadOnly exposes a loader as a JournalStore whose writes fail.
func ReadOnly(l readOnlyLoader) JournalStore {
	return readOnlyStore{l}
}

func (r readOnlyStore) SaveTrade(context.Context, *models.RawTrade) error {
	return fmt.Errorf("%w: %s", apperrors.ErrReadOnly, r.Name())
}

func (r readOnlyStore) DeleteTrade(context.Context, string) error {
	return fmt.Errorf("%w: %s", apperrors.ErrReadOnly, r.Name())
}

func (r readOnlyStore) SaveChallenge(context.Context, *models.Challenge) error {
	return fmt.Errorf("%w: %s", apperrors.ErrReadOnly, r.Name())
}

func (r readOnlyStore) SetChallengeActive(context.Context, string, bool) error {
	return fmt.Errorf("%w: %s", apperrors.ErrReadOnly, r.Name())
}
