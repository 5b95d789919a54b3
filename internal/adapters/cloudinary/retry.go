package cloudinary

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// linearBackOff waits step, 2*step, 3*step, ...
type linearBackOff struct {
	step time.Duration
	n    int
}

func (l *linearBackOff) NextBackOff() time.Duration {
	l.n++
	return time.Duration(l.n) * l.step
}

func (l *linearBackOff) Reset() { l.n = 0 }

// retryPolicy bounds total attempts (not retries) and binds the wait to ctx
func retryPolicy(ctx context.Context, attempts int, step time.Duration) backoff.BackOff {
	if attempts < 1 {
		attempts = 1
	}
	b := backoff.WithMaxRetries(&linearBackOff{step: step}, uint64(attempts-1))
	return backoff.WithContext(b, ctx)
}

// providerError is a failure the provider reported in its response body
// the provider already answered, so it is final and never retried
type providerError struct {
	msg string
}

func (e *providerError) Error() string { return e.msg }

type timeouter interface{ Timeout() bool }

// isTimeout reports whether an attempt failed for timing reasons while the caller is still waiting
// parent cancellation is never a timeout, it aborts the whole upload
func isTimeout(parent context.Context, err error) bool {
	if err == nil || parent.Err() != nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var t timeouter
	if errors.As(err, &t) {
		return t.Timeout()
	}
	return false
}
