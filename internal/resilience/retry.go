// Package resilience provides the retry policy used for calls against the
// CRM backend's cooperative rate limiter.
package resilience

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Policy controls retry behavior with exponential backoff.
type Policy struct {
	// MaxAttempts is the total number of attempts (including the first
	// try). A value of 1 means no retries. Default: 3.
	MaxAttempts int

	// BaseDelay is the delay before the first retry. Default: 500ms.
	BaseDelay time.Duration

	// MaxDelay caps the backoff duration. Default: 30s.
	MaxDelay time.Duration

	// OnRetry is called before each retry sleep with the attempt number
	// just completed.
	OnRetry func(attempt int)
}

// DefaultPolicy returns the retry configuration used for CRM calls unless
// overridden by configuration.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    30 * time.Second,
	}
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 500 * time.Millisecond
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 30 * time.Second
	}
	return p
}

// Backoff returns the delay before the retry following the given 1-based
// attempt: BaseDelay * 2^(attempt-1), capped at MaxDelay.
func (p Policy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

// Do executes fn up to MaxAttempts times, retrying while shouldRetry
// reports the result as retryable. The result of the final attempt is
// returned whether or not it is retryable; errors are never retried.
// Context cancellation stops the backoff sleep immediately.
func Do[T any](ctx context.Context, p Policy, shouldRetry func(T) bool, fn func(ctx context.Context) (T, error)) (T, error) {
	p = p.withDefaults()

	var last T
	for attempt := 1; ; attempt++ {
		val, err := fn(ctx)
		if err != nil {
			return val, err
		}
		last = val

		if !shouldRetry(val) || attempt >= p.MaxAttempts {
			return last, nil
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt)
		}

		timer := time.NewTimer(p.Backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return last, ctx.Err()
		case <-timer.C:
		}
	}
}

// RetryLogger returns an OnRetry callback that logs each retry attempt.
func RetryLogger(operation, phone string) func(int) {
	return func(attempt int) {
		zap.L().Warn("backend queue busy, retrying",
			zap.String("operation", operation),
			zap.String("phone", phone),
			zap.Int("attempt", attempt),
		)
	}
}
