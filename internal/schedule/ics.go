// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package schedule

import (
	"io"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"
)

const (
	// Recurring events are expanded for at most this span after DTSTART.
	maxRecurrenceSpan = 31 * 24 * time.Hour
	maxOccurrences    = 64
)

// ParseICS extracts Events from an iCalendar document. Each VEVENT needs a
// SUMMARY, DTSTART and DTEND; incomplete ones are reported in dropped.
// VEVENTs carrying an RRULE contribute one Event per occurrence.
func ParseICS(r io.Reader) (events []Event, dropped []error, err error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, nil, &ParseError{Row: -1, Reason: "invalid calendar", Err: err}
	}

	for i, ve := range cal.Events() {
		ev, perr := parseVEvent(i, ve)
		if perr != nil {
			dropped = append(dropped, perr)
			continue
		}
		p := ve.GetProperty(ical.ComponentPropertyRrule)
		if p == nil {
			events = append(events, ev)
			continue
		}
		occ, rerr := expandRRule(i, ev, p.Value)
		if rerr != nil {
			dropped = append(dropped, rerr)
			continue
		}
		events = append(events, occ...)
	}
	return events, dropped, nil
}

func parseVEvent(idx int, ve *ical.VEvent) (Event, error) {
	var out Event

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Title = normalizeTitle(p.Value)
	}
	if out.Title == "" {
		return out, &ParseError{Row: idx, Reason: "missing SUMMARY"}
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return out, &ParseError{Row: idx, Reason: "DTSTART", Err: err}
	}
	end, err := ve.GetEndAt()
	if err != nil {
		return out, &ParseError{Row: idx, Reason: "DTEND", Err: err}
	}
	out.Start = start
	out.End = end

	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Room = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyUrl); p != nil {
		out.URL = p.Value
	}
	return out, nil
}

// expandRRule returns one Event per occurrence of rule, keeping the base
// event's duration. EXDATE and RECURRENCE-ID overrides are not applied.
func expandRRule(idx int, base Event, rule string) ([]Event, error) {
	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return nil, &ParseError{Row: idx, Reason: "RRULE", Err: err}
	}
	r.DTStart(base.Start)

	var set rrule.Set
	set.RRule(r)

	starts := set.Between(base.Start, base.Start.Add(maxRecurrenceSpan), true)
	if len(starts) > maxOccurrences {
		starts = starts[:maxOccurrences]
	}

	dur := base.PlannedDuration()
	out := make([]Event, 0, len(starts))
	for _, st := range starts {
		ev := base
		ev.Start = st
		ev.End = st.Add(dur)
		out = append(out, ev)
	}
	return out, nil
}
