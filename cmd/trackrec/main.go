// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Command trackrec records every talk of a conference track from its live
// stream, one file per talk, following the published schedule.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/ManuGH/trackrec/internal/config"
	xglog "github.com/ManuGH/trackrec/internal/log"
	"github.com/ManuGH/trackrec/internal/version"
)

var (
	configPath   string
	name         string
	outputRoot   string
	ffmpegPath   string
	statusListen string
	logLevel     string
	format       string
	dryRun       bool
	preflight    bool
	noProgress   bool
)

var flags = []cli.Flag{
	cli.StringFlag{
		Name:        "config, c",
		Usage:       "path to a YAML config file",
		EnvVar:      "TRACKREC_CONFIG",
		Destination: &configPath,
	},
	cli.StringFlag{
		Name:        "name, n",
		Usage:       "output directory name (derived from the schedule URL if not specified)",
		Destination: &name,
	},
	cli.StringFlag{
		Name:        "output-root, o",
		Usage:       "directory the output directory is created in",
		Destination: &outputRoot,
	},
	cli.StringFlag{
		Name:        "ffmpeg",
		Usage:       "path to the ffmpeg binary",
		Destination: &ffmpegPath,
	},
	cli.StringFlag{
		Name:        "format",
		Usage:       "schedule format: auto, html or ics",
		Destination: &format,
	},
	cli.StringFlag{
		Name:        "status-listen",
		Usage:       "serve /healthz, /api/plan and /metrics on this address",
		Destination: &statusListen,
	},
	cli.StringFlag{
		Name:        "log-level",
		Usage:       "debug, info, warn or error",
		Destination: &logLevel,
	},
	cli.BoolFlag{
		Name:        "dry-run",
		Usage:       "print the plan without waiting, recording or writing files",
		Destination: &dryRun,
	},
	cli.BoolFlag{
		Name:        "preflight",
		Usage:       "probe the stream URL before the first recording",
		Destination: &preflight,
	},
	cli.BoolFlag{
		Name:        "no-progress",
		Usage:       "disable the progress bar",
		Destination: &noProgress,
	},
}

func main() {
	xglog.Configure(xglog.Config{Level: "info", Version: version.Version})

	app := cli.App{
		Name:      "trackrec",
		HelpName:  "trackrec",
		Usage:     "record a conference track's live stream talk by talk",
		UsageText: "trackrec [options] <schedule-url> <stream-url>",
		Version:   version.String(),
		Flags:     flags,
		Action:    action,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitConfig)
	}
}

func action(c *cli.Context) error {
	if c.NArg() > 2 {
		return cli.NewExitError("too many arguments; usage: "+c.App.UsageText, exitConfig)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return cli.NewExitError(err.Error(), exitConfig)
	}
	applyFlags(c, &cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if code := run(ctx, cfg, os.Stderr); code != exitOK {
		return cli.NewExitError("", code)
	}
	return nil
}

// applyFlags overlays explicitly set flags and positional arguments.
func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.NArg() > 0 {
		cfg.ScheduleURL = c.Args().Get(0)
	}
	if c.NArg() > 1 {
		cfg.StreamURL = c.Args().Get(1)
	}

	set := func(flag string, dst *string, v string) {
		if c.IsSet(flag) {
			*dst = v
		}
	}
	set("name", &cfg.Name, name)
	set("output-root", &cfg.OutputRoot, outputRoot)
	set("ffmpeg", &cfg.FFmpeg.Path, ffmpegPath)
	set("format", &cfg.Format, format)
	set("status-listen", &cfg.StatusListen, statusListen)
	set("log-level", &cfg.LogLevel, logLevel)

	if c.IsSet("dry-run") {
		cfg.DryRun = dryRun
	}
	if c.IsSet("preflight") {
		cfg.Preflight = preflight
	}
	if noProgress {
		cfg.Progress = false
	}
}
