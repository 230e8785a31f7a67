package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Throttle enforces a fixed pause between request batches. It is not
// adaptive: the pause is the same after a success or a failure.
type Throttle struct {
	mu        sync.Mutex
	delay     time.Duration
	pauses    int64
	lastPause time.Time
	after     func(time.Duration) <-chan time.Time
}

// NewThrottle creates a throttle that pauses for delay. A zero delay never blocks.
func NewThrottle(delay time.Duration) *Throttle {
	if delay < 0 {
		delay = 0
	}
	return &Throttle{
		delay: delay,
		after: time.After,
	}
}

// Delay returns the configured pause
func (t *Throttle) Delay() time.Duration {
	return t.delay
}

// Pause blocks for the configured delay or until ctx is done
func (t *Throttle) Pause(ctx context.Context) error {
	t.mu.Lock()
	t.pauses++
	t.lastPause = time.Now()
	t.mu.Unlock()

	if t.delay == 0 {
		return ctx.Err()
	}

	select {
	case <-t.after(t.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns throttle statistics
func (t *Throttle) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	return Stats{
		Delay:     t.delay,
		Pauses:    t.pauses,
		LastPause: t.lastPause,
	}
}

// Stats contains statistics for a throttle
type Stats struct {
	Delay     time.Duration
	Pauses    int64
	LastPause time.Time
}
