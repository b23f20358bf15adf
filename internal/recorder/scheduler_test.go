// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package recorder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ManuGH/trackrec/internal/capture"
	"github.com/ManuGH/trackrec/internal/clock"
	"github.com/ManuGH/trackrec/internal/schedule"
)

const streamURL = "https://stream.example/track.m3u8"

func newTestScheduler(now time.Time) (*Scheduler, *clock.Fake, *fakeRunner) {
	clk := clock.NewFake(now)
	runner := newFakeRunner(clk)
	return &Scheduler{
		Clock:     clk,
		Runner:    runner,
		StreamURL: streamURL,
		Logger:    zerolog.Nop(),
	}, clk, runner
}

func planFor(events ...schedule.Event) Plan {
	return BuildPlan(events, Layout{Dir: "out"})
}

func TestScenarioA_FutureEventWaitsThenRecordsFullLength(t *testing.T) {
	s, clk, runner := newTestScheduler(at(9, 0))

	report, err := s.Run(context.Background(), planFor(event("T", at(10, 0), at(10, 30))))
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{time.Hour}, clk.Waits())
	jobs := runner.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, 30*time.Minute, jobs[0].Duration)
	assert.Equal(t, "1800", jobs[0].Seconds())
	assert.Equal(t, streamURL, jobs[0].StreamURL)
	assert.Equal(t, filepath.Join("out", "1000_T.mp4"), jobs[0].OutputPath)
	assert.Equal(t, Recorded, report.Results[0].Outcome.Kind)
}

func TestScenarioB_InProgressEventRecordsRemainder(t *testing.T) {
	s, clk, runner := newTestScheduler(at(9, 10))

	report, err := s.Run(context.Background(), planFor(event("T", at(9, 0), at(9, 30))))
	require.NoError(t, err)

	assert.Empty(t, clk.Waits())
	jobs := runner.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, 20*time.Minute, jobs[0].Duration)
	assert.Equal(t, InProgress, report.Results[0].Decision.Kind)
}

func TestScenarioC_PastEventIsSkipped(t *testing.T) {
	s, clk, runner := newTestScheduler(at(9, 0))

	report, err := s.Run(context.Background(), planFor(event("T", at(8, 0), at(8, 30))))
	require.NoError(t, err)

	assert.Empty(t, runner.Jobs())
	assert.Empty(t, clk.Waits())
	require.Len(t, report.Results, 1)
	assert.Equal(t, Skipped, report.Results[0].Outcome.Kind)
	assert.Equal(t, ReasonFinished, report.Results[0].Outcome.Reason)
}

func TestScenarioD_OverlapTruncatesLaterEvent(t *testing.T) {
	s, clk, runner := newTestScheduler(at(9, 0))

	// Fetch order deliberately reversed.
	report, err := s.Run(context.Background(), planFor(
		event("B", at(10, 15), at(10, 45)),
		event("A", at(10, 0), at(10, 30)),
	))
	require.NoError(t, err)

	require.Len(t, report.Results, 2)
	assert.Equal(t, "A", report.Results[0].Event.Title)
	assert.Equal(t, "B", report.Results[1].Event.Title)

	assert.Equal(t, []time.Duration{time.Hour}, clk.Waits())
	jobs := runner.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, 30*time.Minute, jobs[0].Duration)
	assert.Equal(t, 15*time.Minute, jobs[1].Duration)
	assert.Equal(t, "900", jobs[1].Seconds())

	b := report.Results[1]
	assert.Equal(t, InProgress, b.Decision.Kind)
	assert.Equal(t, at(10, 30), b.StartedAt)
}

func TestScenarioE_DryRunTouchesNothing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "track")
	s, clk, runner := newTestScheduler(at(9, 0))
	s.DryRun = true

	plan := BuildPlan([]schedule.Event{
		event("Past", at(8, 0), at(8, 30)),
		event("Now", at(8, 45), at(9, 15)),
		event("Later", at(10, 0), at(10, 30)),
	}, Layout{Dir: dir})

	report, err := s.Run(context.Background(), plan)
	require.NoError(t, err)

	assert.Empty(t, clk.Waits())
	assert.Empty(t, runner.Jobs())
	assert.NoDirExists(t, dir)
	assert.True(t, report.DryRun)
	assert.Equal(t, at(9, 0), clk.Now())

	require.Len(t, report.Results, 3)
	for _, res := range report.Results {
		assert.Equal(t, Skipped, res.Outcome.Kind)
		assert.Equal(t, ReasonDryRun, res.Outcome.Reason)
	}
	assert.Equal(t, Past, report.Results[0].Decision.Kind)
	assert.Equal(t, InProgress, report.Results[1].Decision.Kind)
	assert.Equal(t, 15*time.Minute, report.Results[1].Decision.Capture)
	assert.Equal(t, Future, report.Results[2].Decision.Kind)
	assert.Equal(t, time.Hour, report.Results[2].Decision.Wait)
}

func TestRun_ProcessesInStartOrder(t *testing.T) {
	s, _, _ := newTestScheduler(at(7, 0))

	events := []schedule.Event{
		event("e", at(12, 0), at(12, 30)),
		event("a", at(8, 0), at(8, 30)),
		event("c", at(10, 0), at(10, 30)),
		event("b1", at(9, 0), at(9, 20)),
		event("d", at(11, 0), at(11, 30)),
		event("b2", at(9, 0), at(9, 10)),
	}
	report, err := s.Run(context.Background(), planFor(events...))
	require.NoError(t, err)

	var titles []string
	for i, res := range report.Results {
		titles = append(titles, res.Event.Title)
		if i > 0 {
			assert.False(t, res.Event.Start.Before(report.Results[i-1].Event.Start))
		}
	}
	// b1 and b2 share a start and keep fetch order; b2 then ends before
	// processing reaches it.
	assert.Equal(t, []string{"a", "b1", "b2", "c", "d", "e"}, titles)
	assert.Equal(t, Skipped, report.Results[2].Outcome.Kind)
}

func TestRun_PastEventsNeverBecomeJobs(t *testing.T) {
	s, _, runner := newTestScheduler(at(12, 0))

	report, err := s.Run(context.Background(), planFor(
		event("old1", at(8, 0), at(8, 30)),
		event("live", at(11, 30), at(12, 30)),
		event("old2", at(9, 0), at(11, 59)),
	))
	require.NoError(t, err)

	jobs := runner.Jobs()
	require.Len(t, jobs, 1)
	assert.Contains(t, jobs[0].OutputPath, "live")
	assert.Equal(t, 2, report.Count(Skipped))
	assert.Equal(t, 1, report.Count(Recorded))
}

func TestRun_InProgressDurationIsEndMinusNow(t *testing.T) {
	now := at(14, 7).Add(13 * time.Second)
	s, _, runner := newTestScheduler(now)

	ev := event("T", at(14, 0), at(15, 0))
	_, err := s.Run(context.Background(), planFor(ev))
	require.NoError(t, err)

	jobs := runner.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, ev.End.Sub(now), jobs[0].Duration)
	assert.NotEqual(t, ev.PlannedDuration(), jobs[0].Duration)
}

func TestRun_SubMillisecondRemainderStillCaptures(t *testing.T) {
	ev := event("T", at(14, 0), at(15, 0))
	now := ev.End.Add(-300 * time.Microsecond)
	s, _, runner := newTestScheduler(now)

	report, err := s.Run(context.Background(), planFor(ev))
	require.NoError(t, err)

	jobs := runner.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, 300*time.Microsecond, jobs[0].Duration)
	assert.Equal(t, "0.001", jobs[0].Seconds())
	require.Len(t, report.Results, 1)
	assert.Equal(t, Recorded, report.Results[0].Outcome.Kind)
}

func TestRun_DegenerateIntervalsAreSkipped(t *testing.T) {
	s, clk, runner := newTestScheduler(at(9, 0))

	report, err := s.Run(context.Background(), planFor(
		event("zero", at(10, 0), at(10, 0)),
		event("inverted", at(11, 0), at(10, 30)),
		event("inverted-now", at(9, 30), at(8, 30)),
	))
	require.NoError(t, err)

	assert.Empty(t, runner.Jobs())
	assert.Empty(t, clk.Waits())
	for _, res := range report.Results {
		assert.Equal(t, Skipped, res.Outcome.Kind)
		assert.Equal(t, ReasonDegenerate, res.Outcome.Reason)
	}
}

func TestRun_SingleJobInFlight(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s, _, runner := newTestScheduler(at(9, 0))
	var events []schedule.Event
	for i := 0; i < 8; i++ {
		start := at(9, 0).Add(time.Duration(i) * 10 * time.Minute)
		events = append(events, event(fmt.Sprintf("talk %d", i), start, start.Add(25*time.Minute)))
	}

	_, err := s.Run(context.Background(), planFor(events...))
	require.NoError(t, err)

	assert.Equal(t, 1, runner.maxActive)
	assert.Len(t, runner.Jobs(), 8)
}

func TestRun_InterruptDuringWaitHaltsRun(t *testing.T) {
	s, clk, runner := newTestScheduler(at(9, 0))
	clk.InterruptSleep(2)

	report, err := s.Run(context.Background(), planFor(
		event("A", at(10, 0), at(10, 30)),
		event("B", at(11, 0), at(11, 30)),
		event("C", at(12, 0), at(12, 30)),
	))
	require.ErrorIs(t, err, ErrInterrupted)
	require.ErrorIs(t, err, context.Canceled)

	assert.Len(t, runner.Jobs(), 1)
	require.Len(t, report.Results, 2)
	assert.Equal(t, Recorded, report.Results[0].Outcome.Kind)
	assert.Equal(t, Interrupted, report.Results[1].Outcome.Kind)
	assert.Equal(t, 1, report.NotAttempted)
}

func TestRun_InterruptDuringCaptureHaltsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, clk, runner := newTestScheduler(at(9, 0))
	runner.results[0] = fmt.Errorf("%w: %w", capture.ErrInterrupted, context.Canceled)
	runner.onCall = func(int) { cancel() }

	report, err := s.Run(ctx, planFor(
		event("A", at(9, 0), at(9, 30)),
		event("B", at(10, 0), at(10, 30)),
	))
	require.ErrorIs(t, err, ErrInterrupted)

	assert.Len(t, runner.Jobs(), 1)
	assert.Empty(t, clk.Waits())
	require.Len(t, report.Results, 1)
	assert.Equal(t, Interrupted, report.Results[0].Outcome.Kind)
	assert.Equal(t, 1, report.NotAttempted)
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, _, runner := newTestScheduler(at(9, 0))
	report, err := s.Run(ctx, planFor(event("A", at(8, 0), at(8, 30)), event("B", at(10, 0), at(10, 30))))
	require.ErrorIs(t, err, ErrInterrupted)

	assert.Empty(t, runner.Jobs())
	require.Len(t, report.Results, 1)
	assert.Equal(t, 1, report.NotAttempted)
}

func TestRun_FailedCaptureContinues(t *testing.T) {
	s, _, runner := newTestScheduler(at(9, 0))
	runner.results[0] = &capture.ExitError{Code: 1, Stderr: []string{"Connection refused"}}

	report, err := s.Run(context.Background(), planFor(
		event("A", at(9, 0), at(9, 30)),
		event("B", at(10, 0), at(10, 30)),
	))
	require.NoError(t, err)

	require.Len(t, report.Results, 2)
	assert.Equal(t, Failed, report.Results[0].Outcome.Kind)
	assert.True(t, errors.Is(report.Results[0].Outcome.Err, capture.ErrCapture))
	assert.Equal(t, Recorded, report.Results[1].Outcome.Kind)
	assert.Len(t, runner.Jobs(), 2)
}

func TestRun_EmptyPlan(t *testing.T) {
	s, clk, runner := newTestScheduler(at(9, 0))

	report, err := s.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, report.Results)
	assert.Empty(t, runner.Jobs())
	assert.Empty(t, clk.Waits())
}

func TestRun_NotifiesObserver(t *testing.T) {
	s, _, _ := newTestScheduler(at(9, 0))
	plan := planFor(event("A", at(8, 0), at(8, 30)), event("B", at(9, 0), at(9, 30)))

	obs := new(MockObserver)
	obs.On("PlanReady", plan, false).Once()
	obs.On("EntryStarted", mock.AnythingOfType("recorder.PlanEntry"), mock.AnythingOfType("recorder.Decision")).Twice()
	obs.On("EntryFinished", mock.MatchedBy(func(r Result) bool { return r.Outcome.Kind == Skipped })).Once()
	obs.On("EntryFinished", mock.MatchedBy(func(r Result) bool { return r.Outcome.Kind == Recorded })).Once()
	s.Observer = obs

	_, err := s.Run(context.Background(), plan)
	require.NoError(t, err)
	obs.AssertExpectations(t)
}

func TestRun_RequiresRunner(t *testing.T) {
	s := &Scheduler{Clock: clock.NewFake(at(9, 0)), Logger: zerolog.Nop()}
	_, err := s.Run(context.Background(), planFor(event("A", at(10, 0), at(10, 30))))
	require.Error(t, err)
}

func TestRun_DoesNotCreateFiles(t *testing.T) {
	dir := t.TempDir()
	s, _, _ := newTestScheduler(at(9, 0))

	_, err := s.Run(context.Background(), BuildPlan([]schedule.Event{event("A", at(9, 0), at(9, 30))}, Layout{Dir: dir}))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
