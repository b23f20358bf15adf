// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package recorder

import (
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/ManuGH/trackrec/internal/schedule"
)

// DefaultExtension is the container suffix used when none is configured.
const DefaultExtension = ".mp4"

const fallbackDirName = "recordings"

// Sanitize NFC-normalises s and replaces every rune that is not a letter,
// digit, underscore or hyphen with an underscore.
func Sanitize(s string) string {
	s = norm.NFC.String(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	return b.String()
}

// DirName returns the output directory name: the sanitised name when given,
// otherwise the last non-empty path segment of the schedule URL.
func DirName(name, scheduleURL string) string {
	if name = strings.TrimSpace(name); name != "" {
		return Sanitize(name)
	}

	u, err := url.Parse(scheduleURL)
	if err != nil {
		return fallbackDirName
	}
	segments := strings.Split(u.Path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if seg, _ := url.PathUnescape(segments[i]); strings.TrimSpace(seg) != "" {
			return Sanitize(seg)
		}
	}
	if u.Hostname() != "" {
		return Sanitize(u.Hostname())
	}
	return fallbackDirName
}

// FileName is "<HHMM>_<sanitised title><ext>", HHMM taken in the start's own zone.
func FileName(ev schedule.Event, ext string) string {
	if ext == "" {
		ext = DefaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ev.Start.Format("1504") + "_" + Sanitize(ev.Title) + ext
}

// uniqueName hands out file names, suffixing repeats with _2, _3 and so on.
type uniqueName struct {
	used map[string]struct{}
}

func newUniqueName() *uniqueName {
	return &uniqueName{used: make(map[string]struct{})}
}

func (u *uniqueName) take(name string) string {
	candidate := name
	ext := ""
	stem := name
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		stem, ext = name[:i], name[i:]
	}
	for n := 2; ; n++ {
		if _, dup := u.used[candidate]; !dup {
			u.used[candidate] = struct{}{}
			return candidate
		}
		candidate = stem + "_" + strconv.Itoa(n) + ext
	}
}
