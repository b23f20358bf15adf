// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package capture runs the external stream-capture tool for one bounded job.
package capture

import (
	"context"
	"errors"
	"strconv"
	"time"
)

// ErrInvalidDuration is returned by NewJob for non-positive durations.
var ErrInvalidDuration = errors.New("capture: job duration must be positive")

// Job is one bounded copy of the stream into OutputPath.
type Job struct {
	OutputPath string
	StreamURL  string
	Duration   time.Duration
}

// NewJob validates and builds a Job. Jobs with a non-positive duration are
// never constructed.
func NewJob(outputPath, streamURL string, d time.Duration) (Job, error) {
	if d <= 0 {
		return Job{}, ErrInvalidDuration
	}
	return Job{OutputPath: outputPath, StreamURL: streamURL, Duration: d}, nil
}

// Seconds renders the duration limit handed to the capture tool, rounded up
// to milliseconds so a positive duration never renders as zero.
func (j Job) Seconds() string {
	ms := int64((j.Duration + time.Millisecond - 1) / time.Millisecond)
	if ms%1000 == 0 {
		return strconv.FormatInt(ms/1000, 10)
	}
	return strconv.FormatFloat(float64(ms)/1000, 'f', 3, 64)
}

// Runner executes a Job synchronously. It returns nil when the tool exited
// cleanly, an error matching ErrCapture on tool failure and one matching
// ErrInterrupted when ctx was cancelled while the job was running.
type Runner interface {
	Run(ctx context.Context, job Job) error
}
