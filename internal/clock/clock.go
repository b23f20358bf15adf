// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package clock isolates the recorder from wall time so the scheduling loop
// can be driven by a fake in tests.
package clock

import (
	"context"
	"time"
)

// Clock reports the current time and suspends until a deadline.
type Clock interface {
	Now() time.Time
	// SleepUntil blocks until t or until ctx is done. It returns ctx.Err()
	// when the wait was cut short and nil otherwise.
	SleepUntil(ctx context.Context, t time.Time) error
}

// Real implements Clock using the standard time package.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) SleepUntil(ctx context.Context, t time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d := time.Until(t)
	if d <= 0 {
		return nil
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
