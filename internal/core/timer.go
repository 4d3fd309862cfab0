package core

import (
	"context"
	"time"
)

// FixedStep paces simulation updates at a steady ticks-per-second rate.
// Deadlines advance from the previous deadline rather than from wake-up time,
// so scheduling latency does not accumulate.
type FixedStep struct {
	step time.Duration
	next time.Time
}

// NewFixedStep constructs a FixedStep controller targeting the given TPS.
func NewFixedStep(tps int) *FixedStep {
	fs := &FixedStep{}
	fs.SetTPS(tps)
	return fs
}

// SetTPS changes the tick rate. Non-positive rates fall back to 60. Rates
// above one tick per nanosecond are capped there.
func (f *FixedStep) SetTPS(tps int) {
	if tps <= 0 {
		tps = 60
	}
	f.step = max(time.Second/time.Duration(tps), time.Nanosecond)
}

// Interval returns the duration of one tick.
func (f *FixedStep) Interval() time.Duration { return f.step }

// Wait blocks until the next tick deadline or until ctx is done. The first
// call returns after one interval. When the caller has fallen more than a
// tick behind, missed ticks are dropped and Wait returns immediately.
func (f *FixedStep) Wait(ctx context.Context) error {
	now := time.Now()
	if f.next.IsZero() {
		f.next = now
	}
	f.next = f.next.Add(f.step)
	delay := f.next.Sub(now)
	if delay <= 0 {
		f.next = now
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
