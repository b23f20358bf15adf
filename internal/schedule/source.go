// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package schedule

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ManuGH/trackrec/internal/log"
	"github.com/ManuGH/trackrec/internal/metrics"
	"github.com/rs/zerolog"
)

// Format selects the document parser.
type Format string

const (
	FormatAuto Format = "auto"
	FormatHTML Format = "html"
	FormatICS  Format = "ics"
)

// maxDocumentSize bounds the schedule body we are willing to read.
const maxDocumentSize = 16 << 20

// HTTPSource fetches a schedule document over HTTP(S).
type HTTPSource struct {
	Client    *http.Client
	Format    Format
	UserAgent string
	Logger    zerolog.Logger
	// MaxBytes caps the document size; zero means maxDocumentSize.
	MaxBytes int64
}

// NewHTTPSource returns a source using client. An empty format means auto.
func NewHTTPSource(client *http.Client, format Format, userAgent string) *HTTPSource {
	if format == "" {
		format = FormatAuto
	}
	return &HTTPSource{
		Client:    client,
		Format:    format,
		UserAgent: userAgent,
		Logger:    log.WithComponent("schedule"),
	}
}

// FetchEvents retrieves location and returns every valid Event it contains.
// Transport failures and non-2xx statuses yield a *FetchError; a body that
// cannot be parsed at all yields a *ParseError. Individual malformed rows are
// logged and dropped.
func (s *HTTPSource) FetchEvents(ctx context.Context, location string) ([]Event, error) {
	logger := log.WithContext(ctx, s.Logger)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		metrics.IncScheduleFetch("error")
		return nil, &FetchError{URL: location, Err: err}
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}
	req.Header.Set("Accept", "text/html, text/calendar;q=0.9, */*;q=0.5")

	logger.Info().Str(log.FieldURL, location).Msg("fetching schedule")

	resp, err := s.Client.Do(req)
	if err != nil {
		metrics.IncScheduleFetch("error")
		return nil, &FetchError{URL: location, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.IncScheduleFetch("status")
		return nil, &FetchError{URL: location, Status: resp.StatusCode, Err: fmt.Errorf("%s", resp.Status)}
	}

	limit := s.MaxBytes
	if limit <= 0 {
		limit = maxDocumentSize
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		metrics.IncScheduleFetch("error")
		return nil, &FetchError{URL: location, Status: resp.StatusCode, Err: err}
	}
	if int64(len(body)) > limit {
		metrics.IncScheduleFetch("too_large")
		return nil, &FetchError{URL: location, Status: resp.StatusCode, Err: fmt.Errorf("document exceeds %d bytes", limit)}
	}

	format := s.Format
	if format == FormatAuto {
		format = detectFormat(resp.Header.Get("Content-Type"), body)
	}

	var (
		events  []Event
		dropped []error
	)
	switch format {
	case FormatICS:
		events, dropped, err = ParseICS(bytes.NewReader(body))
	default:
		events, dropped, err = ParseHTML(bytes.NewReader(body))
	}
	if err != nil {
		metrics.IncScheduleFetch("parse_error")
		return nil, err
	}

	for _, d := range dropped {
		logger.Debug().Err(d).Msg("dropped schedule row")
	}
	metrics.IncScheduleFetch("ok")
	metrics.SetScheduleEvents(len(events), len(dropped))

	logger.Info().
		Str("format", string(format)).
		Int("events", len(events)).
		Int("dropped", len(dropped)).
		Msg("schedule fetched")

	return events, nil
}

func detectFormat(contentType string, body []byte) Format {
	if strings.Contains(strings.ToLower(contentType), "text/calendar") {
		return FormatICS
	}
	if bytes.HasPrefix(bytes.TrimSpace(body), []byte("BEGIN:VCALENDAR")) {
		return FormatICS
	}
	return FormatHTML
}
