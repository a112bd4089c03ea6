package common

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrRateLimit marks a rate-limited call; WithRetry waits MaxDelay before the next attempt.
	ErrRateLimit = errors.New("rate limit exceeded")
	// ErrMaxRetries is returned once every attempt has failed.
	ErrMaxRetries = errors.New("max retries exceeded")
)

// RetryOptions configures WithRetry. Zero fields take DefaultRetryOptions values.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryOptions suit calls to remote APIs.
var DefaultRetryOptions = RetryOptions{
	MaxAttempts:  3,
	InitialDelay: 250 * time.Millisecond,
	MaxDelay:     30 * time.Second,
	Multiplier:   2,
}

func (o RetryOptions) withDefaults() RetryOptions {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultRetryOptions.MaxAttempts
	}
	if o.InitialDelay <= 0 {
		o.InitialDelay = DefaultRetryOptions.InitialDelay
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = DefaultRetryOptions.MaxDelay
	}
	if o.Multiplier < 1 {
		o.Multiplier = DefaultRetryOptions.Multiplier
	}
	return o
}

// RetryableError tells WithRetry whether Err is worth another attempt.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// Permanent marks err so WithRetry returns it immediately.
func Permanent(err error) error {
	return &RetryableError{Err: err, Retryable: false}
}

func isPermanent(err error) bool {
	var re *RetryableError
	return errors.As(err, &re) && !re.Retryable
}

// WithRetry runs op until it succeeds, returns a permanent error, the
// context ends, or MaxAttempts is reached. Delays grow by Multiplier up to MaxDelay.
func WithRetry(ctx context.Context, op func() error, opts RetryOptions) error {
	opts = opts.withDefaults()
	delay := opts.InitialDelay

	for attempt := 1; ; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		if isPermanent(err) {
			return err
		}
		if attempt >= opts.MaxAttempts {
			return fmt.Errorf("%w after %d attempts: %w", ErrMaxRetries, attempt, err)
		}

		wait := delay
		if errors.Is(err, ErrRateLimit) {
			wait = opts.MaxDelay
		}
		Logger(ctx).Warn("retrying after failure",
			"attempt", attempt,
			"max_attempts", opts.MaxAttempts,
			"wait", wait,
			"error", err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay = min(time.Duration(float64(delay)*opts.Multiplier), opts.MaxDelay)
	}
}
