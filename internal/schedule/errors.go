// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package schedule

import (
	"errors"
	"fmt"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrFetch = errors.New("schedule: document could not be retrieved")
	ErrParse = errors.New("schedule: document did not yield events")
)

// FetchError reports a transport failure or a non-success status while
// retrieving the schedule document. It is fatal to a run.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("schedule: fetch %s", e.URL)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s: HTTP %d", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a row (or, with Row < 0, the whole document) that could
// not be turned into an Event. Row-level parse errors are not fatal.
type ParseError struct {
	Row    int
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	where := "document"
	if e.Row >= 0 {
		where = fmt.Sprintf("row %d", e.Row)
	}
	msg := fmt.Sprintf("schedule: parse %s: %s", where, e.Reason)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

func (e *ParseError) Unwrap() error { return e.Err }
