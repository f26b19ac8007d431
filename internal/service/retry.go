package service

import (
	"context"
	"math/rand"
	"time"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
)

// RetryPolicy re-runs model calls that fail with a retryable domain error.
// The wait before attempt n+1 is base*2^(n-1), capped at maxDelay and spread
// by ±jitter.
type RetryPolicy struct {
	attempts int
	base     time.Duration
	maxDelay time.Duration
	jitter   float64
}

// NewRetryPolicy allows up to attempts calls in total; values below one
// mean a single call.
func NewRetryPolicy(attempts int) *RetryPolicy {
	if attempts < 1 {
		attempts = 1
	}
	return &RetryPolicy{
		attempts: attempts,
		base:     time.Second,
		maxDelay: 30 * time.Second,
		jitter:   0.2,
	}
}

// Attempts is the total number of calls Do may make.
func (p *RetryPolicy) Attempts() int {
	return p.attempts
}

// Do calls fn until it succeeds, fails with an error core.IsRetryable
// rejects, ctx ends or the attempts run out. The last error from fn is
// returned as is. onRetry, when set, runs before each wait.
func (p *RetryPolicy) Do(ctx context.Context, fn func(context.Context) error, onRetry func(attempt int, err error, wait time.Duration)) error {
	var err error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err = fn(ctx); err == nil || !core.IsRetryable(err) {
			return err
		}
		if attempt == p.attempts {
			break
		}

		wait := p.delay(attempt)
		if onRetry != nil {
			onRetry(attempt, err, wait)
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return err
}

func (p *RetryPolicy) delay(attempt int) time.Duration {
	d := p.base
	for i := 1; i < attempt && d < p.maxDelay; i++ {
		d *= 2
	}
	if d > p.maxDelay {
		d = p.maxDelay
	}
	if p.jitter > 0 {
		d += time.Duration((rand.Float64()*2 - 1) * p.jitter * float64(d))
	}
	return d
}
