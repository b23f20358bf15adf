// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/trackrec/internal/capture"
	"github.com/ManuGH/trackrec/internal/config"
	xglog "github.com/ManuGH/trackrec/internal/log"
	"github.com/ManuGH/trackrec/internal/platform/httpx"
	"github.com/ManuGH/trackrec/internal/recorder"
	"github.com/ManuGH/trackrec/internal/schedule"
	"github.com/ManuGH/trackrec/internal/status"
	"github.com/ManuGH/trackrec/internal/version"
)

// Exit codes.
const (
	exitOK          = 0
	exitConfig      = 1
	exitInterrupted = 130
)

// run executes one recording session and returns the process exit code.
func run(ctx context.Context, cfg config.Config, logOut io.Writer) int {
	xglog.Configure(xglog.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Output:  logOut,
		Version: version.Version,
	})
	logger := xglog.WithComponent("cli")

	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return exitConfig
	}

	runID := uuid.NewString()
	ctx = xglog.ContextWithRunID(ctx, runID)
	logger = xglog.WithContext(ctx, logger)

	userAgent := version.UserAgent()
	client := httpx.NewClient(cfg.FetchTimeout, userAgent)

	source := schedule.NewHTTPSource(client, schedule.Format(cfg.Format), userAgent)
	events, err := source.FetchEvents(ctx, cfg.ScheduleURL)
	if err != nil {
		if ctx.Err() != nil {
			logger.Warn().Err(err).Msg("interrupted while fetching schedule")
			return exitInterrupted
		}
		logger.Error().Err(err).Str(xglog.FieldURL, cfg.ScheduleURL).Msg("cannot fetch schedule")
		return exitConfig
	}

	dir := filepath.Join(cfg.OutputRoot, recorder.DirName(cfg.Name, cfg.ScheduleURL))
	plan := recorder.BuildPlan(events, recorder.Layout{Dir: dir, Extension: cfg.Extension})
	logger.Info().
		Str(xglog.FieldPath, dir).
		Int("events", len(plan)).
		Bool("dry_run", cfg.DryRun).
		Msg("plan built")

	if !cfg.DryRun {
		if err := recorder.PrepareOutputDir(dir); err != nil {
			logger.Error().Err(err).Msg("cannot create output directory")
			return exitConfig
		}
		if cfg.Preflight {
			runPreflight(ctx, client, cfg.StreamURL)
		}
	}

	runner := capture.NewFFmpegRunner(cfg.FFmpeg.Path, capture.ArgsOptions{
		LogLevel:  cfg.FFmpeg.LogLevel,
		InputArgs: cfg.FFmpeg.InputArgs,
	}, cfg.FFmpeg.StopGrace)

	if cfg.Progress && !cfg.DryRun && isTerminal(os.Stderr) {
		bars := capture.NewBars(os.Stderr)
		runner.Reporter = bars
		defer bars.Wait()
	}

	tracker := status.NewTracker(runID)
	sched := recorder.NewScheduler(runner, cfg.StreamURL)
	sched.DryRun = cfg.DryRun
	sched.Observer = tracker

	var srv *status.Server
	if cfg.StatusListen != "" {
		srv = status.New(cfg.StatusListen, tracker)
		if err := srv.Listen(); err != nil {
			logger.Error().Err(err).Str("addr", cfg.StatusListen).Msg("cannot start status server")
			return exitConfig
		}
	}

	serveCtx, stopServe := context.WithCancel(ctx)
	var (
		report recorder.Report
		runErr error
	)
	var g errgroup.Group
	if srv != nil {
		g.Go(func() error {
			if err := srv.Serve(serveCtx); err != nil {
				logger.Warn().Err(err).Msg("status server failed")
			}
			return nil
		})
	}
	g.Go(func() error {
		defer stopServe()
		report, runErr = sched.Run(ctx, plan)
		return nil
	})
	_ = g.Wait()

	if !cfg.DryRun && cfg.WriteReport {
		if path, err := recorder.WriteReport(dir, report); err != nil {
			logger.Warn().Err(err).Msg("cannot write report")
		} else {
			logger.Info().Str(xglog.FieldPath, path).Msg("report written")
		}
	}

	switch {
	case errors.Is(runErr, recorder.ErrInterrupted):
		return exitInterrupted
	case runErr != nil:
		logger.Error().Err(runErr).Msg("run failed")
		return exitConfig
	}
	return exitOK
}

func runPreflight(ctx context.Context, client *http.Client, streamURL string) {
	logger := xglog.WithComponent("cli")
	if !strings.HasPrefix(streamURL, "http://") && !strings.HasPrefix(streamURL, "https://") {
		logger.Debug().Str(xglog.FieldStreamURL, streamURL).Msg("preflight skipped for non-HTTP stream")
		return
	}
	res, err := capture.Preflight(ctx, client, streamURL)
	if err != nil {
		logger.Warn().Err(err).Msg("stream preflight failed, recording anyway")
		return
	}
	logger.Info().
		Int("status", res.Status).
		Str("content_type", res.ContentType).
		Str("playlist", res.Playlist).
		Int("variants", res.Variants).
		Int("segments", res.Segments).
		Msg("stream preflight ok")
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
