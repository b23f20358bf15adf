// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package status

import (
	"sync"
	"time"

	"github.com/ManuGH/trackrec/internal/recorder"
)

// EntryState is the live view of one plan entry.
type EntryState struct {
	recorder.PlanEntry
	State    string             `json:"state"` // pending, active, done
	Decision *recorder.Decision `json:"decision,omitempty"`
	Result   *recorder.Result   `json:"result,omitempty"`
}

// Snapshot is served by /api/plan.
type Snapshot struct {
	RunID     string       `json:"runId,omitempty"`
	DryRun    bool         `json:"dryRun"`
	UpdatedAt time.Time    `json:"updatedAt"`
	Active    *int         `json:"active,omitempty"`
	Entries   []EntryState `json:"entries"`
}

// Tracker records scheduler progress for the status endpoints.
type Tracker struct {
	mu    sync.RWMutex
	runID string
	snap  Snapshot
	now   func() time.Time
}

var _ recorder.Observer = (*Tracker)(nil)

// NewTracker returns an empty tracker tagged with runID.
func NewTracker(runID string) *Tracker {
	return &Tracker{runID: runID, now: time.Now, snap: Snapshot{RunID: runID, Entries: []EntryState{}}}
}

func (t *Tracker) PlanReady(plan recorder.Plan, dryRun bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries := make([]EntryState, 0, len(plan))
	for _, e := range plan {
		entries = append(entries, EntryState{PlanEntry: e, State: "pending"})
	}
	t.snap = Snapshot{RunID: t.runID, DryRun: dryRun, UpdatedAt: t.now(), Entries: entries}
}

func (t *Tracker) EntryStarted(entry recorder.PlanEntry, d recorder.Decision) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if es := t.entry(entry.Index); es != nil {
		es.State = "active"
		es.Decision = &d
		idx := entry.Index
		t.snap.Active = &idx
	}
	t.snap.UpdatedAt = t.now()
}

func (t *Tracker) EntryFinished(res recorder.Result) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if es := t.entry(res.Index); es != nil {
		es.State = "done"
		es.Result = &res
	}
	t.snap.Active = nil
	t.snap.UpdatedAt = t.now()
}

func (t *Tracker) entry(i int) *EntryState {
	if i < 0 || i >= len(t.snap.Entries) {
		return nil
	}
	return &t.snap.Entries[i]
}

// Snapshot returns a copy safe to encode after the lock is released.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := t.snap
	out.Entries = append([]EntryState(nil), t.snap.Entries...)
	if t.snap.Active != nil {
		idx := *t.snap.Active
		out.Active = &idx
	}
	return out
}
