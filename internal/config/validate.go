// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

// ErrInvalid is matched by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// FieldError names the offending option.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *FieldError) Is(target error) bool { return target == ErrInvalid }

// Validate reports every problem with c at once.
func (c Config) Validate() error {
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, &FieldError{Field: field, Reason: fmt.Sprintf(format, args...)})
	}

	if c.ScheduleURL == "" {
		add("schedule_url", "required")
	} else if u, err := url.Parse(c.ScheduleURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		add("schedule_url", "must be an absolute http(s) URL, got %q", c.ScheduleURL)
	}

	if strings.TrimSpace(c.StreamURL) == "" {
		add("stream_url", "required")
	}

	switch c.Format {
	case "auto", "html", "ics":
	default:
		add("format", "must be one of auto, html, ics, got %q", c.Format)
	}

	if c.FetchTimeout <= 0 {
		add("fetch_timeout", "must be positive")
	}
	if c.FFmpeg.Path == "" {
		add("ffmpeg.path", "required")
	}
	if c.FFmpeg.StopGrace <= 0 {
		add("ffmpeg.stop_grace", "must be positive")
	}
	if strings.ContainsAny(c.Extension, `/\`) {
		add("extension", "must not contain path separators")
	}
	if strings.ContainsAny(c.Name, `/\`) || c.Name == "." || c.Name == ".." {
		add("name", "must be a single directory name")
	}

	if c.StatusListen != "" {
		if _, _, err := net.SplitHostPort(c.StatusListen); err != nil {
			add("status_listen", "%v", err)
		}
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		add("log_level", "%v", err)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		add("log_format", "must be console or json, got %q", c.LogFormat)
	}

	return errors.Join(errs...)
}
