package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend down")

func newTestBreaker(cfg CircuitBreakerConfig) (*CircuitBreaker, *time.Time) {
	clock := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker("test", cfg)
	cb.now = func() time.Time { return clock }
	return cb, &clock
}

func fail(context.Context) error { return errBackend }
func succeed(context.Context) error { return nil }

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb, _ := newTestBreaker(CircuitBreakerConfig{FailureThreshold: 3, Cooldown: time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(ctx, fail), errBackend)
	}
	assert.Equal(t, CircuitOpen, cb.State())

	called := false
	err := cb.Execute(ctx, func(context.Context) error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
	assert.Equal(t, int64(1), cb.Rejected())
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb, _ := newTestBreaker(CircuitBreakerConfig{FailureThreshold: 2, Cooldown: time.Minute})
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	require.NoError(t, cb.Execute(ctx, succeed))
	_ = cb.Execute(ctx, fail)
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenAfterCooldown(t *testing.T) {
	cb, clock := newTestBreaker(CircuitBreakerConfig{FailureThreshold: 1, Cooldown: time.Minute})
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	require.Equal(t, CircuitOpen, cb.State())

	*clock = clock.Add(2 * time.Minute)
	require.NoError(t, cb.Execute(ctx, succeed))
	assert.Equal(t, CircuitClosed, cb.State())

	_ = cb.Execute(ctx, fail)
	require.Equal(t, CircuitOpen, cb.State())
	*clock = clock.Add(2 * time.Minute)
	_ = cb.Execute(ctx, fail)
	assert.Equal(t, CircuitOpen, cb.State(), "failed probe reopens")
}

func TestCircuitBreaker_IgnoresNonCountingErrors(t *testing.T) {
	errClient := errors.New("bad request")
	cb, _ := newTestBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		Cooldown:         time.Minute,
		IsFailure:        func(err error) bool { return !errors.Is(err, errClient) },
	})

	err := cb.Execute(context.Background(), func(context.Context) error { return errClient })
	assert.ErrorIs(t, err, errClient)
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestExecuteWithResult(t *testing.T) {
	cb, _ := newTestBreaker(DefaultCircuitBreakerConfig())

	v, err := ExecuteWithResult(cb, context.Background(), func(context.Context) (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	cb.Reset()
	assert.Equal(t, CircuitClosed, cb.State())
	assert.Equal(t, "test", cb.Name())
}
