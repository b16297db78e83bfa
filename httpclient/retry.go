package httpclient

import (
	"context"
	"fmt"
	"time"
)

// RetryPolicy declares how many times a request is attempted and the fixed pause between attempts.
// Only transport failures are retried.
type RetryPolicy struct {
	// MaxAttempts counts the first attempt; 1 means no retry. Values below 1 are treated as 1.
	MaxAttempts int
	// Backoff is the delay before each retry. Zero retries immediately.
	Backoff time.Duration
}

// NewRetryPolicy creates a retry policy.
func NewRetryPolicy(maxAttempts int, backoff time.Duration) RetryPolicy {
	return RetryPolicy{MaxAttempts: maxAttempts, Backoff: backoff}
}

// NoRetry is the policy used when neither the request nor the client sets one.
func NoRetry() RetryPolicy {
	return RetryPolicy{MaxAttempts: 1}
}

// Validate rejects policies that cannot describe a retry schedule.
func (p RetryPolicy) Validate() error {
	if p.MaxAttempts < 1 {
		return NewConfigurationError(fmt.Sprintf("retry max attempts must be at least 1, got %d", p.MaxAttempts), nil)
	}
	if p.Backoff < 0 {
		return NewConfigurationError(fmt.Sprintf("retry backoff must not be negative, got %v", p.Backoff), nil)
	}
	return nil
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.Backoff < 0 {
		p.Backoff = 0
	}
	return p
}

// effectiveRetryPolicy picks the request policy, then the client default, then NoRetry.
func effectiveRetryPolicy(request, client *RetryPolicy) RetryPolicy {
	switch {
	case request != nil:
		return request.normalized()
	case client != nil:
		return client.normalized()
	default:
		return NoRetry()
	}
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
