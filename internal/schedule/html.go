// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package schedule

import (
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Column layout of a track timetable row:
//
//	| # | title | speakers | start | end | ...
//
// The start and end cells each hold a link whose title attribute carries the
// ISO-8601 instant, e.g. <a title="2026-01-31T10:30:00+01:00">10:30</a>.
const (
	colTitle   = 1
	colStart   = 3
	colEnd     = 4
	minColumns = 5
)

// instantLayouts are tried in order when parsing start/end attributes. All of
// them require a zone offset; naive timestamps are rejected.
var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04Z07:00",
}

// ParseHTML extracts Events from a timetable document. Rows with fewer than
// five cells (headers, separators) are ignored silently. Rows that look like
// data but lack a title link or parsable instants are reported in dropped and
// left out of events. err is only set when the document is not HTML at all.
func ParseHTML(r io.Reader) (events []Event, dropped []error, err error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, nil, &ParseError{Row: -1, Reason: "invalid html", Err: err}
	}

	row := 0
	walk(doc, func(n *html.Node) bool {
		if n.DataAtom != atom.Tr {
			return true
		}
		idx := row
		row++

		cells := children(n, atom.Td)
		if len(cells) < minColumns {
			return false
		}

		ev, perr := parseRow(idx, cells)
		if perr != nil {
			dropped = append(dropped, perr)
			return false
		}
		events = append(events, ev)
		return false
	})

	return events, dropped, nil
}

func parseRow(idx int, cells []*html.Node) (Event, error) {
	link := firstLink(cells[colTitle], false)
	if link == nil {
		return Event{}, &ParseError{Row: idx, Reason: "missing title link"}
	}
	title := normalizeTitle(textContent(link))
	if title == "" {
		return Event{}, &ParseError{Row: idx, Reason: "empty title"}
	}

	start, err := cellInstant(cells[colStart])
	if err != nil {
		return Event{}, &ParseError{Row: idx, Reason: "start", Err: err}
	}
	end, err := cellInstant(cells[colEnd])
	if err != nil {
		return Event{}, &ParseError{Row: idx, Reason: "end", Err: err}
	}

	return Event{
		Title: title,
		Start: start,
		End:   end,
		URL:   attr(link, "href"),
	}, nil
}

func cellInstant(cell *html.Node) (time.Time, error) {
	link := firstLink(cell, true)
	if link == nil {
		return time.Time{}, fmt.Errorf("no link with title attribute")
	}
	return parseInstant(attr(link, "title"))
}

func parseInstant(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, fmt.Errorf("empty instant")
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised instant %q", v)
}

// walk visits n and its descendants depth-first. visit returns false to
// skip the children of the current node.
func walk(n *html.Node, visit func(*html.Node) bool) {
	if n.Type == html.ElementNode && !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func children(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			out = append(out, c)
		}
	}
	return out
}

// firstLink returns the first <a> below n, optionally requiring a title attribute.
func firstLink(n *html.Node, withTitle bool) *html.Node {
	var found *html.Node
	walk(n, func(c *html.Node) bool {
		if found != nil {
			return false
		}
		if c.DataAtom == atom.A && (!withTitle || hasAttr(c, "title")) {
			found = c
			return false
		}
		return true
	})
	return found
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			collect(cc)
		}
	}
	collect(n)
	return b.String()
}
