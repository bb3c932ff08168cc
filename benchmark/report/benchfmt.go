package report

import (
	"fmt"
	"io"
	"strconv"

	"golang.org/x/perf/benchfmt"

	"github.com/nvr-ai/go-filterbench/benchmark"
)

// Benchfmt writes results in the Go benchmark format so runs can be compared
// with benchstat. Every timed sample becomes one result line with an
// iteration count of 1, which lets benchstat compute medians and confidence
// intervals. The device is a file-level configuration key, so
// "benchstat -col device" contrasts backends.
type Benchfmt struct {
	w    io.Writer
	bw   *benchfmt.Writer
	info benchmark.RunInfo
}

// NewBenchfmt creates a Go benchmark format reporter.
func NewBenchfmt(w io.Writer) *Benchfmt {
	return &Benchfmt{w: w, bw: benchfmt.NewWriter(w)}
}

func (b *Benchfmt) Begin(info benchmark.RunInfo) error {
	b.info = info
	return nil
}

func (b *Benchfmt) Record(res benchmark.Result) error {
	name := res.Name()
	switch res.Status {
	case benchmark.StatusSkipped:
		_, err := fmt.Fprintf(b.w, "--- SKIP: Benchmark%s (device %s)\n    %s\n", name, res.Device, res.Reason)
		return err
	case benchmark.StatusFailed:
		_, err := fmt.Fprintf(b.w, "--- FAIL: Benchmark%s (device %s)\n    %s: %s\n", name, res.Device, res.Phase, res.Reason)
		return err
	}

	m := res.Measurement
	if m.Count() == 0 {
		return nil
	}

	config := []benchfmt.Config{
		{Key: "goos", Value: []byte(b.info.GOOS), File: true},
		{Key: "goarch", Value: []byte(b.info.GOARCH), File: true},
		{Key: "cpus", Value: []byte(strconv.Itoa(b.info.NumCPU)), File: true},
		{Key: "device", Value: []byte(res.Device), File: true},
	}
	for _, sample := range m.Samples {
		r := &benchfmt.Result{
			Config: config,
			Name:   benchfmt.Name(name),
			Iters:  1,
			Values: []benchfmt.Value{
				{Value: float64(sample.Nanoseconds()), Unit: "ns/op"},
				{Value: float64(m.Memory.BytesPerOp), Unit: "B/op"},
				{Value: float64(m.Memory.AllocsPerOp), Unit: "allocs/op"},
			},
		}
		if err := b.bw.Write(r); err != nil {
			return err
		}
	}
	return nil
}

func (b *Benchfmt) End(benchmark.Summary) error {
	return nil
}
