// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package capture

import (
	"bytes"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Reporter receives progress of the running job. Begin and End bracket
// every Run; Update is called for each progress line of the tool.
type Reporter interface {
	Begin(job Job)
	Update(done time.Duration)
	End(err error)
}

var progressTime = regexp.MustCompile(`time=\s*(-?\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)

// parseProgress extracts the elapsed output time from an ffmpeg stats line.
func parseProgress(line string) (time.Duration, bool) {
	m := progressTime.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	h, err1 := strconv.Atoi(m[1])
	mm, err2 := strconv.Atoi(m[2])
	s, err3 := strconv.ParseFloat(m[3], 64)
	if err1 != nil || err2 != nil || err3 != nil || h < 0 {
		return 0, false
	}
	d := time.Duration(h)*time.Hour + time.Duration(mm)*time.Minute + time.Duration(s*float64(time.Second))
	return d, true
}

// scanLinesOrCR splits on '\n' or '\r'; ffmpeg rewrites its stats line with
// carriage returns.
func scanLinesOrCR(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, bytes.TrimRight(data[:i], "\r\n"), nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// Bars renders one terminal progress bar per job.
type Bars struct {
	p     *mpb.Progress
	mu    sync.Mutex
	bar   *mpb.Bar
	total int64
}

// NewBars creates a bar container writing to w.
func NewBars(w io.Writer) *Bars {
	return &Bars{p: mpb.New(mpb.WithWidth(48), mpb.WithOutput(w))}
}

func (b *Bars) Begin(job Job) {
	name := filepath.Base(job.OutputPath)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.total = max(int64(job.Duration/time.Second), 1)
	b.bar = b.p.New(b.total,
		mpb.BarStyle().Lbound("[").Filler("=").Tip(">").Padding(" ").Rbound("]"),
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DindentRight}),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.Percentage(decor.WC{W: 5}), "done"),
		),
	)
}

func (b *Bars) Update(done time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bar != nil {
		b.bar.SetCurrent(int64(done / time.Second))
	}
}

func (b *Bars) End(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bar == nil {
		return
	}
	if err != nil {
		b.bar.Abort(false)
	} else {
		// The bar completes only once current reaches total.
		b.bar.SetCurrent(b.total)
	}
	b.bar = nil
}

// Wait flushes the container; call once after the last job.
func (b *Bars) Wait() {
	b.p.Wait()
}
