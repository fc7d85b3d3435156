package progress

import (
	"fmt"
	"io"
)

// Reporter prints one progress line per completed URL.
type Reporter interface {
	Report(count int, url, reason string)
}

// LineReporter writes "Processed <N>: <url>[ - <reason>]" lines. It is meant
// to be driven by a single goroutine; each line is written with one Write call.
type LineReporter struct {
	w io.Writer
}

// NewLineReporter returns a LineReporter writing to w.
func NewLineReporter(w io.Writer) *LineReporter {
	if w == nil {
		w = io.Discard
	}
	return &LineReporter{w: w}
}

// Report writes a single progress line.
func (r *LineReporter) Report(count int, url, reason string) {
	line := fmt.Sprintf("Processed %d: %s", count, url)
	if reason != "" {
		line += " - " + reason
	}
	_, _ = io.WriteString(r.w, line+"\n")
}

// NopReporter discards progress lines.
type NopReporter struct{}

// Report implements Reporter.
func (NopReporter) Report(int, string, string) {}
