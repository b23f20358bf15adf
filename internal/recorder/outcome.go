// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package recorder

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/ManuGH/trackrec/internal/schedule"
)

// ErrInterrupted is returned by Run when the user stopped the run.
var ErrInterrupted = errors.New("recorder: run interrupted")

// OutcomeKind is the per-event result.
type OutcomeKind int

const (
	Recorded OutcomeKind = iota
	Skipped
	Failed
	Interrupted
)

func (k OutcomeKind) String() string {
	switch k {
	case Recorded:
		return "recorded"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	case Interrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Outcome is one of Recorded, Skipped(Reason), Failed(Err) or Interrupted.
type Outcome struct {
	Kind   OutcomeKind
	Reason string
	Err    error
}

func recorded() Outcome { return Outcome{Kind: Recorded} }

func skipped(reason string) Outcome { return Outcome{Kind: Skipped, Reason: reason} }

func failed(err error) Outcome { return Outcome{Kind: Failed, Err: err} }

func interruptedOutcome(err error) Outcome { return Outcome{Kind: Interrupted, Err: err} }

// Halts reports whether the outcome stops the whole run.
func (o Outcome) Halts() bool { return o.Kind == Interrupted }

func (o Outcome) MarshalJSON() ([]byte, error) {
	v := struct {
		Kind   string `json:"kind"`
		Reason string `json:"reason,omitempty"`
		Error  string `json:"error,omitempty"`
	}{Kind: o.Kind.String(), Reason: o.Reason}
	if o.Err != nil {
		v.Error = o.Err.Error()
	}
	return json.Marshal(v)
}

// Result records what happened to one plan entry.
type Result struct {
	Index      int            `json:"index"`
	Event      schedule.Event `json:"event"`
	Path       string         `json:"path"`
	Decision   Decision       `json:"decision"`
	Outcome    Outcome        `json:"outcome"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`
}

// Report summarises a run.
type Report struct {
	RunID        string    `json:"runId"`
	DryRun       bool      `json:"dryRun"`
	StartedAt    time.Time `json:"startedAt"`
	FinishedAt   time.Time `json:"finishedAt"`
	Planned      int       `json:"planned"`
	NotAttempted int       `json:"notAttempted"`
	Results      []Result  `json:"results"`
}

// Count returns how many results have the given outcome kind.
func (r Report) Count(kind OutcomeKind) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome.Kind == kind {
			n++
		}
	}
	return n
}
