package common

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	verr := &ValidationError{}
	assert.NoError(t, verr.OrNil())

	verr.Add("email", "must be a valid email")
	verr.Add("password", "must be at least 6 characters")

	err := verr.OrNil()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "email: must be a valid email")
	assert.Contains(t, err.Error(), "password: must be at least 6 characters")

	var got *ValidationError
	require.True(t, errors.As(err, &got))
	assert.Len(t, got.Fields, 2)
}

func TestNotFoundAndConflict(t *testing.T) {
	err := NotFound("category")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "category not found", err.Error())

	err = Conflict("timer already running")
	assert.True(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "conflict: timer already running", err.Error())
}

func TestWithRetry(t *testing.T) {
	ctx := context.Background()
	opts := RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := WithRetry(ctx, func() error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		}, opts)
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		calls := 0
		err := WithRetry(ctx, func() error {
			calls++
			return errors.New("always")
		}, opts)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMaxRetries))
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on non-retryable error", func(t *testing.T) {
		calls := 0
		err := WithRetry(ctx, func() error {
			calls++
			return Permanent(errors.New("bad request"))
		}, opts)
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrMaxRetries))
		assert.Equal(t, 1, calls)
	})

	t.Run("stops when the context ends", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		calls := 0
		err := WithRetry(cctx, func() error {
			calls++
			cancel()
			return errors.New("transient")
		}, RetryOptions{MaxAttempts: 5, InitialDelay: time.Hour})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}

func TestParseLevel(t *testing.T) {
	_, err := ParseLevel("debug")
	require.NoError(t, err)

	_, err = ParseLevel("loud")
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestIsDomainError(t *testing.T) {
	assert.True(t, IsDomainError(NewValidationError("name", "is required")))
	assert.True(t, IsDomainError(NotFound("category")))
	assert.True(t, IsDomainError(Conflict("a timer is already running")))
	assert.False(t, IsDomainError(errors.New("disk I/O error")))
	assert.False(t, IsDomainError(ErrUnauthorized))
}

func TestUserError(t *testing.T) {
	cause := NotFound("user")
	err := fmt.Errorf("resolve: %w", NewUserError("no account for ada@example.com", cause))

	var userErr *UserError
	require.ErrorAs(t, err, &userErr)
	assert.Equal(t, "no account for ada@example.com", userErr.UserMessage)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "no account for ada@example.com: user not found", userErr.Error())
	assert.Equal(t, "plain", NewUserError("plain", nil).Error())
}
