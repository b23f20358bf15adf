// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/trackrec/internal/log"
)

// EnvPrefix is prepended to every environment key.
const EnvPrefix = "TRACKREC_"

// ApplyEnv overlays TRACKREC_* variables onto cfg.
func ApplyEnv(cfg *Config) {
	cfg.ScheduleURL = ParseString(EnvPrefix+"SCHEDULE_URL", cfg.ScheduleURL)
	cfg.StreamURL = ParseString(EnvPrefix+"STREAM_URL", cfg.StreamURL)
	cfg.Name = ParseString(EnvPrefix+"NAME", cfg.Name)
	cfg.OutputRoot = ParseString(EnvPrefix+"OUTPUT_ROOT", cfg.OutputRoot)
	cfg.Extension = ParseString(EnvPrefix+"EXTENSION", cfg.Extension)
	cfg.DryRun = ParseBool(EnvPrefix+"DRY_RUN", cfg.DryRun)
	cfg.Format = ParseString(EnvPrefix+"FORMAT", cfg.Format)
	cfg.FetchTimeout = ParseDuration(EnvPrefix+"FETCH_TIMEOUT", cfg.FetchTimeout)

	cfg.FFmpeg.Path = ParseString(EnvPrefix+"FFMPEG_PATH", cfg.FFmpeg.Path)
	cfg.FFmpeg.LogLevel = ParseString(EnvPrefix+"FFMPEG_LOGLEVEL", cfg.FFmpeg.LogLevel)
	cfg.FFmpeg.InputArgs = ParseFields(EnvPrefix+"FFMPEG_INPUT_ARGS", cfg.FFmpeg.InputArgs)
	cfg.FFmpeg.StopGrace = ParseDuration(EnvPrefix+"FFMPEG_STOP_GRACE", cfg.FFmpeg.StopGrace)

	cfg.Preflight = ParseBool(EnvPrefix+"PREFLIGHT", cfg.Preflight)
	cfg.Progress = ParseBool(EnvPrefix+"PROGRESS", cfg.Progress)
	cfg.WriteReport = ParseBool(EnvPrefix+"WRITE_REPORT", cfg.WriteReport)
	cfg.StatusListen = ParseString(EnvPrefix+"STATUS_LISTEN", cfg.StatusListen)
	cfg.LogLevel = ParseString(EnvPrefix+"LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = ParseString(EnvPrefix+"LOG_FORMAT", cfg.LogFormat)
}

// ParseString reads a string from the environment or returns defaultValue.
func ParseString(key, defaultValue string) string {
	return parseStringWithLogger(log.WithComponent("config"), key, defaultValue)
}

func parseStringWithLogger(logger zerolog.Logger, key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	switch {
	case !exists:
		return defaultValue
	case value == "":
		logger.Debug().
			Str("key", key).
			Str("default", defaultValue).
			Str("source", "default").
			Msg("using default value (environment variable is empty)")
		return defaultValue
	case strings.Contains(strings.ToLower(key), "url"):
		logger.Debug().
			Str("key", key).
			Str("source", "environment").
			Msg("using environment variable")
	default:
		logger.Debug().
			Str("key", key).
			Str("value", value).
			Str("source", "environment").
			Msg("using environment variable")
	}
	return value
}

// ParseFields reads a whitespace separated list from the environment.
func ParseFields(key string, defaultValue []string) []string {
	v := ParseString(key, "")
	if v == "" {
		return defaultValue
	}
	return strings.Fields(v)
}

// ParseDuration reads a Go duration (e.g. "5s") from the environment. Invalid
// values fall back to defaultValue with a warning.
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Dur("default", defaultValue).
			Msg("invalid duration in environment variable, using default")
		return defaultValue
	}
	logger.Debug().
		Str("key", key).
		Dur("value", d).
		Str("source", "environment").
		Msg("using environment variable")
	return d
}

// ParseBool accepts "true", "false", "1", "0", "yes", "no" (case-insensitive).
func ParseBool(key string, defaultValue bool) bool {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Bool("default", defaultValue).
			Msg("invalid boolean in environment variable, using default")
		return defaultValue
	}
}
