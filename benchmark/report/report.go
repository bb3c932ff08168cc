// Package report - Reporters that write benchmark results as a text table,
// CSV, JSON lines, YAML or the Go benchmark format.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-filterbench/benchmark"
)

// Format represents the available report formats.
type Format string

const (
	// FormatText is a human-readable table.
	FormatText Format = "text"
	// FormatCSV writes one row per instance.
	FormatCSV Format = "csv"
	// FormatJSON writes JSON lines: a run record, one record per instance and
	// a summary record.
	FormatJSON Format = "json"
	// FormatYAML writes a single YAML document once the run ends.
	FormatYAML Format = "yaml"
	// FormatBenchfmt writes Go benchmark format, readable by benchstat.
	FormatBenchfmt Format = "benchfmt"
)

// Formats returns every supported format.
func Formats() []Format {
	return []Format{FormatText, FormatCSV, FormatJSON, FormatYAML, FormatBenchfmt}
}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", errors.Errorf("unknown report format %q (want one of %v)", s, Formats())
}

// Options tune reporters.
type Options struct {
	// NoColor disables colour in text output even on a terminal.
	NoColor bool
}

// New creates a reporter writing format to w.
func New(format Format, w io.Writer, opts Options) (benchmark.Reporter, error) {
	switch format {
	case FormatText:
		return NewText(w, opts), nil
	case FormatCSV:
		return NewCSV(w), nil
	case FormatJSON:
		return NewJSON(w), nil
	case FormatYAML:
		return NewYAML(w), nil
	case FormatBenchfmt:
		return NewBenchfmt(w), nil
	default:
		return nil, errors.Errorf("unknown report format %q", format)
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func (c nopCloser) Unwrap() io.Writer { return c.Writer }

// NopCloser returns a WriteCloser whose Close does nothing. Unwrap still
// reaches w, so a terminal behind it keeps its colours.
func NopCloser(w io.Writer) io.WriteCloser {
	return nopCloser{w}
}

// Unwrap follows Unwrap() io.Writer methods down to the innermost writer.
func Unwrap(w io.Writer) io.Writer {
	for {
		u, ok := w.(interface{ Unwrap() io.Writer })
		if !ok {
			return w
		}
		w = u.Unwrap()
	}
}

// Open returns the destination for a report. "" and "-" mean stdout, which is
// not closed; any other path is created along with its parent directories.
func Open(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "failed to create output directory")
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create report file")
	}
	return f, nil
}

// Multi fans every call out to several reporters. All reporters see every
// call; the first error is returned.
type Multi []benchmark.Reporter

func (m Multi) Begin(info benchmark.RunInfo) error {
	return m.each(func(r benchmark.Reporter) error { return r.Begin(info) })
}

func (m Multi) Record(res benchmark.Result) error {
	return m.each(func(r benchmark.Reporter) error { return r.Record(res) })
}

func (m Multi) End(sum benchmark.Summary) error {
	return m.each(func(r benchmark.Reporter) error { return r.End(sum) })
}

func (m Multi) each(fn func(benchmark.Reporter) error) error {
	var first error
	for _, r := range m {
		if err := fn(r); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Collector keeps everything it is given in memory.
type Collector struct {
	Info    benchmark.RunInfo
	Results []benchmark.Result
	Summary benchmark.Summary
	Ended   bool
}

func (c *Collector) Begin(info benchmark.RunInfo) error {
	c.Info = info
	return nil
}

func (c *Collector) Record(res benchmark.Result) error {
	c.Results = append(c.Results, res)
	return nil
}

func (c *Collector) End(sum benchmark.Summary) error {
	c.Summary = sum
	c.Ended = true
	return nil
}

// formatDuration rounds d for display: microsecond precision above a
// millisecond, nanoseconds below.
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Second:
		return d.Round(time.Millisecond).String()
	case d >= time.Millisecond:
		return d.Round(time.Microsecond).String()
	default:
		return d.String()
	}
}

func describe(res benchmark.Result) string {
	switch res.Status {
	case benchmark.StatusSkipped:
		return "skipped: " + res.Reason
	case benchmark.StatusFailed:
		return fmt.Sprintf("failed during %s: %s", res.Phase, res.Reason)
	}
	if res.Measurement != nil && res.Measurement.UnderSampled {
		return "ok (under-sampled)"
	}
	return "ok"
}
