package provider

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds the per-call retry behavior of an adapter
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt
	MaxRetries uint64

	// InitialInterval is the first backoff delay
	InitialInterval time.Duration

	// MaxInterval caps the exponential backoff delay
	MaxInterval time.Duration
}

// DefaultRetryPolicy returns the policy adapters use unless configured
// otherwise
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     30 * time.Second,
	}
}

// Do runs one external call with bounded exponential backoff. Before every
// attempt it waits on the shared gate, so a pause triggered by any sibling
// call holds this one back too. A RateLimitError pauses the gate for the
// server-provided delay and retries; errors that do not mark themselves
// retryable stop immediately.
func Do(ctx context.Context, gate *Gate, policy RetryPolicy, fn func() error) error {
	op := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		if err := gate.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		err := fn()
		if err == nil {
			return nil
		}

		if rl, ok := asRateLimit(err); ok {
			if rl.RetryAfter > 0 {
				gate.Pause(rl.RetryAfter)
			}
			return err
		}

		if !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = policy.InitialInterval
	b.MaxInterval = policy.MaxInterval

	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, policy.MaxRetries), ctx))
}

func asRateLimit(err error) (*RateLimitError, bool) {
	var rl *RateLimitError
	if stderrors.As(err, &rl) {
		return rl, true
	}
	return nil, false
}
