package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Acquire(t *testing.T) {
	limiter := NewRateLimiter(RateLimiterConfig{MaxTokens: 3, RefillRate: 10})
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, limiter.Acquire(ctx))
	assert.Less(t, time.Since(start), 100*time.Millisecond, "first acquire should be immediate")

	limiter.TryAcquire()
	limiter.TryAcquire()

	start = time.Now()
	require.NoError(t, limiter.Acquire(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond, "acquire should wait for refill")
}

func TestRateLimiter_TryAcquire(t *testing.T) {
	limiter := NewRateLimiter(RateLimiterConfig{MaxTokens: 2, RefillRate: 0.1})

	assert.True(t, limiter.TryAcquire())
	assert.True(t, limiter.TryAcquire())
	assert.False(t, limiter.TryAcquire())
}

func TestRateLimiter_AcquireCancelled(t *testing.T) {
	limiter := NewRateLimiter(RateLimiterConfig{MaxTokens: 1, RefillRate: 0.01})
	require.True(t, limiter.TryAcquire())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := limiter.Acquire(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRateLimiterConfigForRPM(t *testing.T) {
	cfg := RateLimiterConfigForRPM(120)
	assert.Equal(t, 12.0, cfg.MaxTokens)
	assert.Equal(t, 2.0, cfg.RefillRate)

	cfg = RateLimiterConfigForRPM(5)
	assert.Equal(t, 1.0, cfg.MaxTokens)

	cfg = RateLimiterConfigForRPM(0)
	assert.Equal(t, 1.0, cfg.RefillRate)
}

func TestRateLimiter_AvailableCapped(t *testing.T) {
	limiter := NewRateLimiter(RateLimiterConfig{MaxTokens: 2, RefillRate: 1000})
	time.Sleep(5 * time.Millisecond)
	assert.LessOrEqual(t, limiter.Available(), 2.0)
}
