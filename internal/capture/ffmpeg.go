// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package capture

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os/exec"
	"syscall"
	"time"

	"github.com/ManuGH/trackrec/internal/log"
	"github.com/ManuGH/trackrec/internal/metrics"
	"github.com/ManuGH/trackrec/internal/procgroup"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	defaultStopGrace   = 5 * time.Second
	stderrTailLines    = 64
	progressLogEvery   = 30 * time.Second
	reportedStderrTail = 10
)

// FFmpegRunner runs one ffmpeg process per Job.
type FFmpegRunner struct {
	BinPath   string
	Args      ArgsOptions
	StopGrace time.Duration // SIGINT -> SIGKILL escalation delay
	Reporter  Reporter      // optional
	Logger    zerolog.Logger
}

// NewFFmpegRunner creates a runner for the given binary (default "ffmpeg").
func NewFFmpegRunner(binPath string, args ArgsOptions, stopGrace time.Duration) *FFmpegRunner {
	if binPath == "" {
		binPath = "ffmpeg"
	}
	if stopGrace <= 0 {
		stopGrace = defaultStopGrace
	}
	return &FFmpegRunner{
		BinPath:   binPath,
		Args:      args,
		StopGrace: stopGrace,
		Logger:    log.WithComponent("capture"),
	}
}

var _ Runner = (*FFmpegRunner)(nil)

// Run starts ffmpeg for job and waits for it. On ctx cancellation the
// process group receives SIGINT so ffmpeg can finalise the file, then
// SIGKILL after StopGrace. Partial output is left in place.
func (r *FFmpegRunner) Run(ctx context.Context, job Job) (err error) {
	if job.Duration <= 0 {
		return ErrInvalidDuration
	}
	if cerr := ctx.Err(); cerr != nil {
		return interrupted(context.Cause(ctx))
	}

	logger := log.WithContext(ctx, r.Logger).With().
		Str(log.FieldPath, job.OutputPath).
		Dur(log.FieldDuration, job.Duration).
		Logger()

	if r.Reporter != nil {
		r.Reporter.Begin(job)
		defer func() { r.Reporter.End(err) }()
	}

	// Cancellation is handled below instead of via exec.CommandContext so the
	// tool gets a graceful signal first.
	cmd := exec.Command(r.BinPath, BuildArgs(job, r.Args)...) // #nosec G204
	procgroup.Set(cmd)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		metrics.IncCaptureExit("start_failed")
		return &ExitError{Code: -1, Err: err}
	}

	ring := NewLineRing(stderrTailLines)

	logger.Info().Str("command", cmd.String()).Msg("starting capture")
	if err := cmd.Start(); err != nil {
		metrics.IncCaptureExit("start_failed")
		return &ExitError{Code: -1, Err: err}
	}
	logger.Debug().Int(log.FieldPID, cmd.Process.Pid).Msg("capture process started")

	waitCh := make(chan error, 1)
	go func() {
		// Wait must only run once stderr is drained.
		r.consume(stderr, ring, logger)
		waitCh <- cmd.Wait()
	}()

	select {
	case werr := <-waitCh:
		return r.exitResult(werr, ring, logger)
	case <-ctx.Done():
		logger.Warn().Msg("interrupt received, stopping capture")
		werr := procgroup.Terminate(cmd, waitCh, syscall.SIGINT, r.StopGrace)
		metrics.IncCaptureExit("interrupted")
		logger.Info().AnErr("exit", werr).Msg("capture stopped, partial output kept")
		return interrupted(context.Cause(ctx))
	}
}

func (r *FFmpegRunner) consume(stderr io.Reader, ring *LineRing, logger zerolog.Logger) {
	sometimes := rate.Sometimes{First: 1, Interval: progressLogEvery}

	scanner := bufio.NewScanner(stderr)
	scanner.Split(scanLinesOrCR)
	for scanner.Scan() {
		line := scanner.Text()
		done, ok := parseProgress(line)
		if !ok {
			ring.Add(line)
			continue
		}
		if r.Reporter != nil {
			r.Reporter.Update(done)
		}
		sometimes.Do(func() {
			logger.Debug().Dur("recorded", done).Msg("capture progress")
		})
	}
	// Keep draining so the child never blocks on a full pipe.
	_, _ = io.Copy(io.Discard, stderr)
}

func (r *FFmpegRunner) exitResult(werr error, ring *LineRing, logger zerolog.Logger) error {
	if werr == nil {
		metrics.IncCaptureExit("clean")
		logger.Info().Msg("capture finished")
		return nil
	}

	code := -1
	var exitErr *exec.ExitError
	if errors.As(werr, &exitErr) {
		code = exitErr.ExitCode()
	}
	tail := ring.LastN(reportedStderrTail)
	metrics.IncCaptureExit("error")
	logger.Error().
		Err(werr).
		Int(log.FieldExitCode, code).
		Strs("stderr", tail).
		Msg("capture failed")
	return &ExitError{Code: code, Stderr: tail, Err: werr}
}
