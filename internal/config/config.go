// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config holds the trackrec run configuration.
//
// Precedence, lowest first: Default, YAML file, TRACKREC_* environment,
// command-line flags (applied by the caller).
package config

import (
	"time"
)

// Config is the complete run configuration.
type Config struct {
	ScheduleURL string `yaml:"schedule_url"`
	StreamURL   string `yaml:"stream_url"`

	// Name overrides the output directory name derived from ScheduleURL.
	Name       string `yaml:"name"`
	OutputRoot string `yaml:"output_root"`
	Extension  string `yaml:"extension"`

	DryRun       bool          `yaml:"dry_run"`
	Format       string        `yaml:"format"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	FFmpeg FFmpegConfig `yaml:"ffmpeg"`

	Preflight   bool `yaml:"preflight"`
	Progress    bool `yaml:"progress"`
	WriteReport bool `yaml:"write_report"`

	StatusListen string `yaml:"status_listen"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// FFmpegConfig controls the capture process.
type FFmpegConfig struct {
	Path      string        `yaml:"path"`
	LogLevel  string        `yaml:"loglevel"`
	InputArgs []string      `yaml:"input_args"`
	StopGrace time.Duration `yaml:"stop_grace"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		OutputRoot:   ".",
		Extension:    ".mp4",
		Format:       "auto",
		FetchTimeout: 30 * time.Second,
		FFmpeg: FFmpegConfig{
			Path:      "ffmpeg",
			StopGrace: 5 * time.Second,
		},
		Progress:    true,
		WriteReport: true,
		LogLevel:    "info",
		LogFormat:   "console",
	}
}
