package worker

import (
	"context"
	"time"
)

// Strategy computes the delay before a retry attempt.
// Strategies are stateless and safe for concurrent use.
type Strategy interface {
	// Delay returns how long to wait after failed attempt n (1-indexed).
	Delay(attempt int) time.Duration
}

// Linear increases the delay linearly with the attempt number.
// Delay = min(Base * attempt, Cap).
type Linear struct {
	Base time.Duration
	Cap  time.Duration
}

func NewLinear(base, cap time.Duration) *Linear {
	return &Linear{Base: base, Cap: cap}
}

func (l *Linear) Delay(attempt int) time.Duration {
	d := l.Base * time.Duration(attempt)
	if l.Cap > 0 && d > l.Cap {
		return l.Cap
	}
	return d
}

// DefaultStrategy is the backoff used by the job runner: 2s growing per
// attempt, capped at 10s.
func DefaultStrategy() Strategy {
	return NewLinear(2*time.Second, 10*time.Second)
}

// sleep waits for d, returning early with the context error when cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
