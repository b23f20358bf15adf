// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package schedule retrieves a track timetable and normalises it into Events.
package schedule

import (
	"context"
	"strings"
	"time"
)

// Event is one scheduled programme item. Events are immutable once a Source
// has produced them. End > Start is expected but not enforced here.
type Event struct {
	Title string    `json:"title"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	// Optional metadata; empty when the document does not carry it.
	Room string `json:"room,omitempty"`
	URL  string `json:"url,omitempty"`
}

// PlannedDuration is the announced length of the event. It is zero or
// negative for degenerate intervals.
func (e Event) PlannedDuration() time.Duration {
	return e.End.Sub(e.Start)
}

// Source produces the set of Events published at location.
type Source interface {
	FetchEvents(ctx context.Context, location string) ([]Event, error)
}

// normalizeTitle trims and collapses whitespace.
func normalizeTitle(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
