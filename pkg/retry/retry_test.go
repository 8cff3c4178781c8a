package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rewardserrors "github.com/tradequest/rewards-backend/pkg/errors"
	"github.com/tradequest/rewards-backend/pkg/logging"
)

func fastConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:      3,
		InitialDelay:    time.Millisecond,
		MaxDelay:        5 * time.Millisecond,
		BackoffFactor:   2.0,
		JitterFactor:    0,
		LogRetryAttempt: false,
	}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	result, err := Retry(context.Background(), func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("no connections available")
		}
		return "ok", nil
	}, fastConfig(), &logging.NoopLogger{})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, attempts)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	attempts := 0
	_, err := Retry(context.Background(), func() (int, error) {
		attempts++
		return 0, errors.New("i/o timeout")
	}, fastConfig(), &logging.NoopLogger{})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestRetryStopsOnNonRetryableError(t *testing.T) {
	cfg := fastConfig()
	cfg.ShouldRetry = func(err error, attempt int) bool {
		return rewardserrors.IsRetryable(err)
	}

	attempts := 0
	_, err := Retry(context.Background(), func() (int, error) {
		attempts++
		return 0, rewardserrors.Validationf("amount must be positive")
	}, cfg, &logging.NoopLogger{})

	require.Error(t, err)
	assert.Equal(t, 1, attempts, "validation errors must not be retried")
	assert.True(t, rewardserrors.IsValidation(err))
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	_, err := Retry(ctx, func() (int, error) {
		attempts++
		return 0, errors.New("transient")
	}, fastConfig(), &logging.NoopLogger{})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, attempts)
}

func TestCalculateNextDelayIsCapped(t *testing.T) {
	next := CalculateNextDelay(8*time.Second, 2.0, 10*time.Second)
	assert.Equal(t, 10*time.Second, next)
}

func TestConfigValidation(t *testing.T) {
	cfg := fastConfig()
	cfg.BackoffFactor = 0.5
	assert.Error(t, cfg.Validate())

	cfg = fastConfig()
	cfg.JitterFactor = 1.5
	assert.Error(t, cfg.Validate())

	assert.NoError(t, fastConfig().Validate())
}
