package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/nvr-ai/go-filterbench/benchmark"
)

// colorScheme defines the colours used for statuses in text output.
type colorScheme struct {
	OK      *color.Color
	Warn    *color.Color
	Error   *color.Color
	Header  *color.Color
	Summary *color.Color
}

func newColorScheme(enabled bool) *colorScheme {
	s := &colorScheme{
		OK:      color.New(color.FgGreen),
		Warn:    color.New(color.FgYellow),
		Error:   color.New(color.FgRed, color.Bold),
		Header:  color.New(color.FgCyan, color.Bold),
		Summary: color.New(color.FgMagenta, color.Bold),
	}
	for _, c := range []*color.Color{s.OK, s.Warn, s.Error, s.Header, s.Summary} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

// terminalFd reports whether fd is a terminal.
var terminalFd = func(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// isTerminal reports whether w, once unwrapped, is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := Unwrap(w).(*os.File)
	if !ok {
		return false
	}
	return terminalFd(f.Fd())
}

// Text writes an aligned table. Rows are buffered until End so columns line
// up; progress during the run goes to the log.
type Text struct {
	w      io.Writer
	tw     *tabwriter.Writer
	colors *colorScheme
}

// NewText creates a text reporter. Colour is used when w is a terminal and
// opts.NoColor is false.
func NewText(w io.Writer, opts Options) *Text {
	return &Text{
		w:      w,
		tw:     tabwriter.NewWriter(w, 0, 4, 2, ' ', 0),
		colors: newColorScheme(!opts.NoColor && isTerminal(w)),
	}
}

func (t *Text) Begin(info benchmark.RunInfo) error {
	_, err := fmt.Fprintf(t.w, "%s %s\n%s/%s, %d CPUs, %s, devices: %s\n\n",
		t.colors.Header.Sprint("run"), info.ID,
		info.GOOS, info.GOARCH, info.NumCPU, info.GoVersion,
		strings.Join(info.Devices, ", "))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(t.tw, "CASE\tPARAMS\tDEVICE\tSAMPLES\tMEAN\tMEDIAN\tMIN\tSTDDEV\tALLOCS/OP\tSTATUS")
	return err
}

func (t *Text) Record(res benchmark.Result) error {
	mean, median, minimum, stddev, allocs := "-", "-", "-", "-", "-"
	if m := res.Measurement; m != nil && m.Count() > 0 {
		mean = formatDuration(m.Statistics.Mean)
		median = formatDuration(m.Statistics.Median)
		minimum = formatDuration(m.Statistics.Min)
		stddev = formatDuration(m.Statistics.StdDev)
		allocs = fmt.Sprint(m.Memory.AllocsPerOp)
	}

	status := describe(res)
	switch {
	case res.Status == benchmark.StatusFailed:
		status = t.colors.Error.Sprint(status)
	case res.Status == benchmark.StatusSkipped, res.Measurement != nil && res.Measurement.UnderSampled:
		status = t.colors.Warn.Sprint(status)
	default:
		status = t.colors.OK.Sprint(status)
	}

	params := res.Params
	if params == "" {
		params = "-"
	}
	_, err := fmt.Fprintf(t.tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
		res.Case, params, res.Device, res.Measurement.Count(),
		mean, median, minimum, stddev, allocs, status)
	return err
}

func (t *Text) End(sum benchmark.Summary) error {
	if err := t.tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(t.w, "\n%s\n", t.colors.Summary.Sprint(sum.String()))
	return err
}
