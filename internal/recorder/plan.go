// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package recorder

import (
	"path/filepath"
	"sort"

	"github.com/ManuGH/trackrec/internal/schedule"
)

// PlanEntry is one event scheduled for processing.
type PlanEntry struct {
	Index int            `json:"index"`
	Event schedule.Event `json:"event"`
	Path  string         `json:"path"`
}

// Plan is ordered ascending by event start; equal starts keep fetch order.
type Plan []PlanEntry

// Layout decides where plan entries are written.
type Layout struct {
	Dir       string
	Extension string
}

// BuildPlan orders events by start and assigns each a unique output path
// inside layout.Dir. The input slice is not modified.
func BuildPlan(events []schedule.Event, layout Layout) Plan {
	sorted := make([]schedule.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	names := newUniqueName()
	plan := make(Plan, 0, len(sorted))
	for i, ev := range sorted {
		plan = append(plan, PlanEntry{
			Index: i,
			Event: ev,
			Path:  filepath.Join(layout.Dir, names.take(FileName(ev, layout.Extension))),
		})
	}
	return plan
}
