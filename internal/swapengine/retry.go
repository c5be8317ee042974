package swapengine

import (
	"context"
	"errors"
	"time"
)

// ErrRetriesExhausted is returned by Poll when no attempt reached a verdict.
var ErrRetriesExhausted = errors.New("retries exhausted")

// RetryPolicy bounds a polling loop by attempt count and, optionally,
// by wall-clock time.
type RetryPolicy struct {
	MaxAttempts int
	Interval    time.Duration
	Deadline    time.Duration // zero = no deadline
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 20,
		Interval:    3 * time.Second,
	}
}

// Poll calls fn until it reports done. fn's attempt number starts at 1.
// It returns the attempts used and ErrRetriesExhausted, the context error,
// or nil once fn is done.
func (p RetryPolicy) Poll(ctx context.Context, fn func(ctx context.Context, attempt int) (done bool)) (int, error) {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	if p.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Deadline)
		defer cancel()
	}

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt - 1, err
		}
		if fn(ctx, attempt) {
			return attempt, nil
		}
		if attempt == p.MaxAttempts {
			break
		}
		if err := sleepCtx(ctx, p.Interval); err != nil {
			return attempt, err
		}
	}
	return p.MaxAttempts, ErrRetriesExhausted
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
