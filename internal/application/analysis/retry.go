package analysis

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 2 * time.Second
	DefaultCallTimeout = 60 * time.Second
)

// RetryPolicy is the fixed-delay retry applied to every classification batch.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultRetryPolicy is three attempts two seconds apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: DefaultMaxAttempts, Delay: DefaultRetryDelay}
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Backoff builds a fresh go-retry backoff for one batch. retry.NewConstant
// rejects a zero delay, so the constant step is written out directly.
func (p RetryPolicy) Backoff() retry.Backoff {
	delay := p.Delay
	if delay < 0 {
		delay = 0
	}
	b := retry.BackoffFunc(func() (time.Duration, bool) {
		return delay, false
	})
	return retry.WithMaxRetries(uint64(p.attempts()-1), b)
}

// withTimeout bounds a single remote call. A non-positive timeout leaves ctx as is.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
