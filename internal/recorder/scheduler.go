// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package recorder turns a fetched schedule into a sequence of capture jobs.
// Events are processed strictly one at a time in start order: past events are
// skipped, future events are waited for, events already underway are captured
// for their remaining time.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/trackrec/internal/capture"
	"github.com/ManuGH/trackrec/internal/clock"
	"github.com/ManuGH/trackrec/internal/log"
	"github.com/ManuGH/trackrec/internal/metrics"
)

// Observer receives progress notifications from a run. Calls are made from
// the goroutine executing Run.
type Observer interface {
	PlanReady(plan Plan, dryRun bool)
	EntryStarted(entry PlanEntry, d Decision)
	EntryFinished(res Result)
}

// Scheduler drives a Plan through a Runner.
type Scheduler struct {
	Clock     clock.Clock
	Runner    capture.Runner
	StreamURL string
	DryRun    bool
	Observer  Observer // optional
	Logger    zerolog.Logger
}

// NewScheduler returns a scheduler using the real clock.
func NewScheduler(runner capture.Runner, streamURL string) *Scheduler {
	return &Scheduler{
		Clock:     clock.Real{},
		Runner:    runner,
		StreamURL: streamURL,
		Logger:    log.WithComponent("recorder"),
	}
}

// Run processes every entry of plan in order and returns the collected
// results. It returns ErrInterrupted once ctx is cancelled during a wait or a
// capture; entries after that point are counted as not attempted.
func (s *Scheduler) Run(ctx context.Context, plan Plan) (Report, error) {
	if s.Clock == nil {
		s.Clock = clock.Real{}
	}
	if s.Runner == nil && !s.DryRun {
		return Report{}, errors.New("recorder: no capture runner configured")
	}
	logger := log.WithContext(ctx, s.Logger)

	report := Report{
		RunID:     log.RunIDFromContext(ctx),
		DryRun:    s.DryRun,
		StartedAt: s.Clock.Now(),
		Planned:   len(plan),
		Results:   make([]Result, 0, len(plan)),
	}
	if s.Observer != nil {
		s.Observer.PlanReady(plan, s.DryRun)
	}
	logger.Info().
		Int("events", len(plan)).
		Bool("dry_run", s.DryRun).
		Msg("processing plan")

	var runErr error
	now := s.Clock.Now()
	for i, entry := range plan {
		res := s.process(ctx, entry, now, logger)
		report.Results = append(report.Results, res)
		metrics.IncOutcome(res.Outcome.Kind.String())
		if s.Observer != nil {
			s.Observer.EntryFinished(res)
		}

		if res.Outcome.Halts() {
			report.NotAttempted = len(plan) - i - 1
			runErr = fmt.Errorf("%w: %w", ErrInterrupted, res.Outcome.Err)
			logger.Warn().
				Int("not_attempted", report.NotAttempted).
				Msg("run interrupted, remaining events not attempted")
			break
		}
		now = s.Clock.Now()
	}

	report.FinishedAt = s.Clock.Now()
	logger.Info().
		Int("recorded", report.Count(Recorded)).
		Int("skipped", report.Count(Skipped)).
		Int("failed", report.Count(Failed)).
		Int("interrupted", report.Count(Interrupted)).
		Msg("plan processed")
	return report, runErr
}

func (s *Scheduler) process(ctx context.Context, entry PlanEntry, now time.Time, parent zerolog.Logger) Result {
	ev := entry.Event
	d := Classify(ev, now)
	metrics.IncPlanDecision(d.Kind.String())

	logger := parent.With().
		Int(log.FieldIndex, entry.Index).
		Str(log.FieldTitle, ev.Title).
		Time(log.FieldStart, ev.Start).
		Time(log.FieldEnd, ev.End).
		Str(log.FieldDecision, d.Kind.String()).
		Logger()

	res := Result{Index: entry.Index, Event: ev, Path: entry.Path, Decision: d, StartedAt: now}
	if s.Observer != nil {
		s.Observer.EntryStarted(entry, d)
	}
	finish := func(o Outcome) Result {
		res.Outcome = o
		res.FinishedAt = s.Clock.Now()
		le := logger.Info()
		switch o.Kind {
		case Failed:
			le = logger.Error().Err(o.Err)
		case Interrupted:
			le = logger.Warn().AnErr("cause", o.Err)
		}
		le.Str(log.FieldOutcome, o.Kind.String()).
			Str(log.FieldReason, o.Reason).
			Str(log.FieldPath, entry.Path).
			Msg("event processed")
		return res
	}

	if ctx.Err() != nil {
		return finish(interruptedOutcome(context.Cause(ctx)))
	}

	if s.DryRun {
		logger.Info().
			Dur(log.FieldWait, d.Wait).
			Dur(log.FieldDuration, d.Capture).
			Str(log.FieldReason, d.Reason).
			Str(log.FieldPath, entry.Path).
			Msg("planned")
		return finish(skipped(ReasonDryRun))
	}

	switch d.Kind {
	case Past:
		return finish(skipped(d.Reason))

	case Future:
		logger.Info().
			Dur(log.FieldWait, d.Wait).
			Time("until", ev.Start).
			Msg("waiting for event start")
		metrics.ObserveWait(ev.Start, d.Wait)
		err := s.Clock.SleepUntil(ctx, ev.Start)
		metrics.ClearWait()
		if err != nil {
			return finish(interruptedOutcome(err))
		}
	}

	job, err := capture.NewJob(entry.Path, s.StreamURL, d.Capture)
	if err != nil {
		return finish(failed(err))
	}

	metrics.ObserveCaptureRequested(job.Duration)
	logger.Info().
		Dur(log.FieldDuration, job.Duration).
		Str(log.FieldPath, job.OutputPath).
		Msg("recording")

	err = s.Runner.Run(ctx, job)
	switch {
	case err == nil:
		return finish(recorded())
	case errors.Is(err, capture.ErrInterrupted), ctx.Err() != nil:
		return finish(interruptedOutcome(err))
	default:
		return finish(failed(err))
	}
}
