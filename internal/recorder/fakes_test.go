// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package recorder

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ManuGH/trackrec/internal/capture"
	"github.com/ManuGH/trackrec/internal/clock"
	"github.com/ManuGH/trackrec/internal/schedule"
)

var day = time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func event(title string, start, end time.Time) schedule.Event {
	return schedule.Event{Title: title, Start: start, End: end}
}

// fakeRunner consumes simulated time equal to the job duration.
type fakeRunner struct {
	clk *clock.Fake

	mu        sync.Mutex
	jobs      []capture.Job
	active    int
	maxActive int
	// results are returned by call number (0-based); missing means success.
	results map[int]error
	// onCall runs before the result is returned.
	onCall func(n int)
}

func newFakeRunner(clk *clock.Fake) *fakeRunner {
	return &fakeRunner{clk: clk, results: map[int]error{}}
}

func (r *fakeRunner) Run(_ context.Context, job capture.Job) error {
	r.mu.Lock()
	n := len(r.jobs)
	r.jobs = append(r.jobs, job)
	r.active++
	if r.active > r.maxActive {
		r.maxActive = r.active
	}
	err := r.results[n]
	hook := r.onCall
	r.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	if err == nil {
		r.clk.Advance(job.Duration)
	}

	r.mu.Lock()
	r.active--
	r.mu.Unlock()
	return err
}

func (r *fakeRunner) Jobs() []capture.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]capture.Job(nil), r.jobs...)
}

// MockObserver
type MockObserver struct {
	mock.Mock
}

func (m *MockObserver) PlanReady(plan Plan, dryRun bool) {
	m.Called(plan, dryRun)
}

func (m *MockObserver) EntryStarted(entry PlanEntry, d Decision) {
	m.Called(entry, d)
}

func (m *MockObserver) EntryFinished(res Result) {
	m.Called(res)
}
