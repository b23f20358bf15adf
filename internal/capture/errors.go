// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package capture

import (
	"errors"
	"fmt"
)

var (
	// ErrCapture marks a capture tool failure; the run continues.
	ErrCapture = errors.New("capture: tool failed")
	// ErrInterrupted marks a user-requested stop; the run halts.
	ErrInterrupted = errors.New("capture: interrupted")
)

// ExitError describes a non-zero exit (or a failed start, Code -1) of the
// capture tool together with the tail of its stderr.
type ExitError struct {
	Code   int
	Stderr []string
	Err    error
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("capture: exit code %d", e.Code)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if n := len(e.Stderr); n > 0 {
		msg = fmt.Sprintf("%s: %s", msg, e.Stderr[n-1])
	}
	return msg
}

func (e *ExitError) Is(target error) bool { return target == ErrCapture }

func (e *ExitError) Unwrap() error { return e.Err }

// interrupted wraps cause so that errors.Is matches both ErrInterrupted and
// the original context error.
func interrupted(cause error) error {
	if cause == nil {
		return ErrInterrupted
	}
	return fmt.Errorf("%w: %w", ErrInterrupted, cause)
}
