// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package capture

import "sync"

// LineRing keeps the last N lines of tool output.
type LineRing struct {
	mu    sync.Mutex
	lines []string
	head  int
	full  bool
}

// NewLineRing creates a LineRing with the given capacity (minimum 1).
func NewLineRing(capacity int) *LineRing {
	if capacity < 1 {
		capacity = 1
	}
	return &LineRing{lines: make([]string, capacity)}
}

// Add appends one line, evicting the oldest when full. Empty lines are ignored.
func (r *LineRing) Add(line string) {
	if line == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines[r.head] = line
	r.head = (r.head + 1) % len(r.lines)
	if r.head == 0 {
		r.full = true
	}
}

// LastN returns up to n most recent lines in chronological order.
func (r *LineRing) LastN(n int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ordered []string
	if r.full {
		ordered = append(ordered, r.lines[r.head:]...)
	}
	ordered = append(ordered, r.lines[:r.head]...)

	if n >= 0 && len(ordered) > n {
		ordered = ordered[len(ordered)-n:]
	}
	return ordered
}
