package broadcast

import (
	"context"
	"time"
)

const DefaultPacing = 500 * time.Millisecond

// FixedPacer waits the same delay every time, independent of platform feedback.
type FixedPacer struct {
	Delay time.Duration
}

func NewFixedPacer(delay time.Duration) FixedPacer {
	if delay < 0 {
		delay = 0
	}
	return FixedPacer{Delay: delay}
}

func (p FixedPacer) Wait(ctx context.Context) error {
	if p.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
