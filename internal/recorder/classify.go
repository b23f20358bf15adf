// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package recorder

import (
	"time"

	"github.com/ManuGH/trackrec/internal/schedule"
)

// DecisionKind is the classification of an event against the current time.
type DecisionKind int

const (
	// Past events are skipped without a capture job.
	Past DecisionKind = iota
	// Future events are waited for and then recorded in full.
	Future
	// InProgress events are recorded from the live point until their end.
	InProgress
)

func (k DecisionKind) String() string {
	switch k {
	case Past:
		return "past"
	case Future:
		return "future"
	case InProgress:
		return "in_progress"
	default:
		return "unknown"
	}
}

func (k DecisionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Skip reasons.
const (
	ReasonFinished           = "already finished"
	ReasonDegenerate         = "empty or inverted interval"
	ReasonFinishedDuringPlan = "finished during processing"
	ReasonDryRun             = "dry run"
)

// Decision is computed once per event per iteration.
type Decision struct {
	Kind DecisionKind `json:"kind"`
	// Wait is how long to suspend before capturing (Future only).
	Wait time.Duration `json:"wait,omitempty"`
	// Capture is the duration handed to the capture tool; always > 0 unless
	// Kind is Past.
	Capture time.Duration `json:"capture,omitempty"`
	// Reason explains a Past decision.
	Reason string `json:"reason,omitempty"`
}

// Classify places ev relative to now:
//
//   - End <= Start, or End < now: Past.
//   - Start > now: Future, wait Start-now, capture End-Start.
//   - otherwise InProgress, capture End-now; a non-positive remainder is Past.
func Classify(ev schedule.Event, now time.Time) Decision {
	planned := ev.PlannedDuration()
	switch {
	case planned <= 0:
		return Decision{Kind: Past, Reason: ReasonDegenerate}
	case ev.End.Before(now):
		return Decision{Kind: Past, Reason: ReasonFinished}
	case ev.Start.After(now):
		return Decision{Kind: Future, Wait: ev.Start.Sub(now), Capture: planned}
	}

	remaining := ev.End.Sub(now)
	if remaining <= 0 {
		return Decision{Kind: Past, Reason: ReasonFinishedDuringPlan}
	}
	return Decision{Kind: InProgress, Capture: remaining}
}
