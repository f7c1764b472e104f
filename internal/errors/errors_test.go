package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreErrorUnwraps(t *testing.T) {
	err := Wrap(NewStoreError("sqlite", "load trades", ErrDatabaseError), "loading snapshot")

	assert.True(t, Is(err, ErrDatabaseError))

	var se *StoreError
	assert.True(t, As(err, &se))
	assert.Equal(t, "sqlite", se.Backend)
	assert.Equal(t, "loading snapshot: store error [sqlite] load trades: database error", err.Error())
}

func TestValidationErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("decode: %w", NewValidationError("targetCapital", -5, "must be >= 0"))
	assert.True(t, Is(err, ErrInputValidation))
}

func TestRemoteErrorTemporary(t *testing.T) {
	assert.True(t, NewRemoteError(503, "unavailable").Temporary())
	assert.True(t, NewRemoteError(429, "slow down").Temporary())
	assert.False(t, NewRemoteError(404, "missing").Temporary())
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ctx"))
	assert.Nil(t, Wrapf(nil, "ctx %d", 1))
}
