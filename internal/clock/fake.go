// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package clock

import (
	"context"
	"sync"
	"time"
)

// Fake is a manually driven Clock. SleepUntil returns immediately after
// moving the clock forward to the requested instant.
type Fake struct {
	mu    sync.Mutex
	now   time.Time
	waits []time.Duration

	// interruptAt, when > 0, makes the Nth SleepUntil call (1-based) fail
	// with context.Canceled without advancing time.
	interruptAt int
	calls       int
}

// NewFake returns a Fake clock frozen at now.
func NewFake(now time.Time) *Fake {
	return &Fake{now: now}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) SleepUntil(ctx context.Context, t time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.interruptAt > 0 && f.calls == f.interruptAt {
		return context.Canceled
	}

	d := t.Sub(f.now)
	if d < 0 {
		d = 0
	}
	f.waits = append(f.waits, d)
	if t.After(f.now) {
		f.now = t
	}
	return nil
}

// Advance moves the clock forward by d. Negative values are ignored.
func (f *Fake) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// Set moves the clock to t, which may be in the past.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

// InterruptSleep scripts the nth SleepUntil call (1-based) to fail as if the
// user had interrupted the run.
func (f *Fake) InterruptSleep(n int) {
	f.mu.Lock()
	f.interruptAt = n
	f.mu.Unlock()
}

// Waits returns the durations of every completed SleepUntil call.
func (f *Fake) Waits() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.waits...)
}
