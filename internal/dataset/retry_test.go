package dataset

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:   attempts,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2,
	}
}

func TestRetryWithResult_Success(t *testing.T) {
	count := 0
	v, err := RetryWithResult(context.Background(), fastRetry(3), func() (string, error) {
		count++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 1, count)
}

func TestRetryWithResult_TemporaryThenSuccess(t *testing.T) {
	count := 0
	v, err := RetryWithResult(context.Background(), fastRetry(3), func() (int, error) {
		count++
		if count < 3 {
			return 0, WrapTemporary(errors.New("connection reset"))
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 3, count)
}

func TestRetryWithResult_PermanentStopsImmediately(t *testing.T) {
	permanent := errors.New("404")
	count := 0
	_, err := RetryWithResult(context.Background(), fastRetry(5), func() (int, error) {
		count++
		return 0, permanent
	})
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, count)
}

func TestRetryWithResult_ExhaustsAttempts(t *testing.T) {
	count := 0
	_, err := RetryWithResult(context.Background(), fastRetry(3), func() (int, error) {
		count++
		return 0, WrapTemporary(errors.New("503"))
	})
	assert.ErrorIs(t, err, ErrTemporary)
	assert.Equal(t, 3, count)
}

func TestRetryWithResult_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	count := 0
	_, err := RetryWithResult(ctx, fastRetry(3), func() (int, error) {
		count++
		return 0, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, count)
}

func TestWrapTemporary(t *testing.T) {
	assert.Nil(t, WrapTemporary(nil))

	base := errors.New("timeout")
	err := WrapTemporary(base)
	assert.ErrorIs(t, err, ErrTemporary)
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "timeout", err.Error())
}

func TestCalculateDelay(t *testing.T) {
	cfg := RetryConfig{InitialDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond, BackoffFactor: 2}

	assert.Equal(t, 100*time.Millisecond, calculateDelay(0, cfg))
	assert.Equal(t, 200*time.Millisecond, calculateDelay(1, cfg))
	assert.Equal(t, 300*time.Millisecond, calculateDelay(5, cfg))
}
