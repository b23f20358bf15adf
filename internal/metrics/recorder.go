// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics holds the prometheus collectors of a recording run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scheduleFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trackrec_schedule_fetch_total",
		Help: "Schedule fetch attempts by result",
	}, []string{"result"}) // result=ok|error|status|parse_error

	scheduleEvents = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "trackrec_schedule_events",
		Help: "Rows found in the last fetched schedule",
	}, []string{"state"}) // state=valid|dropped

	planDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trackrec_plan_decisions_total",
		Help: "Classification decisions taken by the recorder",
	}, []string{"decision"}) // decision=past|future|in_progress

	outcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trackrec_outcomes_total",
		Help: "Per-event recording outcomes",
	}, []string{"outcome"}) // outcome=recorded|skipped|failed|interrupted

	waitSeconds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trackrec_wait_seconds_total",
		Help: "Total time spent waiting for events to start",
	})

	nextStart = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "trackrec_next_start_timestamp_seconds",
		Help: "Unix time of the event currently waited for (0 when not waiting)",
	})

	captureSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "trackrec_capture_requested_seconds",
		Help:    "Requested duration of dispatched capture jobs",
		Buckets: []float64{60, 300, 600, 1200, 1800, 3600, 7200},
	})

	captureExitTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trackrec_capture_exit_total",
		Help: "Capture process exits by reason",
	}, []string{"reason"}) // reason=clean|error|interrupted|start_failed

	procTerminateTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trackrec_proc_terminate_total",
		Help: "Signals sent to capture process groups",
	}, []string{"signal", "result"})
)

// IncScheduleFetch counts a schedule fetch by result.
func IncScheduleFetch(result string) {
	scheduleFetchTotal.WithLabelValues(result).Inc()
}

// SetScheduleEvents records the valid and dropped row counts of the last fetch.
func SetScheduleEvents(valid, dropped int) {
	scheduleEvents.WithLabelValues("valid").Set(float64(valid))
	scheduleEvents.WithLabelValues("dropped").Set(float64(dropped))
}

func IncPlanDecision(decision string) {
	planDecisionsTotal.WithLabelValues(decision).Inc()
}

func IncOutcome(outcome string) {
	outcomesTotal.WithLabelValues(outcome).Inc()
}

// ObserveWait records a wait that is about to start.
func ObserveWait(until time.Time, d time.Duration) {
	nextStart.Set(float64(until.Unix()))
	if d > 0 {
		waitSeconds.Add(d.Seconds())
	}
}

// ClearWait resets the next-start gauge after a wait ended.
func ClearWait() {
	nextStart.Set(0)
}

func ObserveCaptureRequested(d time.Duration) {
	captureSeconds.Observe(d.Seconds())
}

func IncCaptureExit(reason string) {
	captureExitTotal.WithLabelValues(reason).Inc()
}

func IncProcTerminate(signal, result string) {
	procTerminateTotal.WithLabelValues(signal, result).Inc()
}
