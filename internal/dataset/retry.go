package dataset

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// RetryConfig configures download retry behavior.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	Jitter        bool
}

// DefaultRetryConfig returns sensible defaults for dataset downloads.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  1 * time.Second,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 2.0,
		Jitter:        true,
	}
}

// ErrTemporary marks a failure worth retrying (network errors, 5xx).
var ErrTemporary = errors.New("temporary error")

type temporaryError struct {
	err error
}

func (e *temporaryError) Error() string        { return e.err.Error() }
func (e *temporaryError) Unwrap() error        { return e.err }
func (e *temporaryError) Is(target error) bool { return target == ErrTemporary }

// WrapTemporary wraps an error as temporary/retryable.
func WrapTemporary(err error) error {
	if err == nil {
		return nil
	}
	return &temporaryError{err: err}
}

// RetryWithResult runs fn until it succeeds, returns a non-temporary error,
// runs out of attempts or ctx is done.
func RetryWithResult[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var result T
	var lastErr error

	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		var err error
		result, err = fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !errors.Is(err, ErrTemporary) || attempt == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(calculateDelay(attempt, cfg)):
		}
	}

	return result, lastErr
}

func calculateDelay(attempt int, cfg RetryConfig) time.Duration {
	delay := float64(cfg.InitialDelay) * math.Pow(cfg.BackoffFactor, float64(attempt))

	if cfg.Jitter {
		// up to 25% jitter
		delay += delay * 0.25 * rand.Float64()
	}

	if cfg.MaxDelay > 0 && delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}

	return time.Duration(delay)
}
