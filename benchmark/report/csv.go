package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/nvr-ai/go-filterbench/benchmark"
)

var csvHeader = []string{
	"case", "params", "device", "status", "samples",
	"mean_ns", "median_ns", "min_ns", "max_ns", "stddev_ns", "p90_ns", "p99_ns",
	"allocs_per_op", "bytes_per_op", "under_sampled", "phase", "reason",
}

// CSV writes a header and one row per instance. Durations are integer
// nanoseconds; numeric cells are empty for instances without samples.
type CSV struct {
	w *csv.Writer
}

// NewCSV creates a CSV reporter.
func NewCSV(w io.Writer) *CSV {
	return &CSV{w: csv.NewWriter(w)}
}

func (c *CSV) Begin(benchmark.RunInfo) error {
	return c.w.Write(csvHeader)
}

func (c *CSV) Record(res benchmark.Result) error {
	row := []string{res.Case, res.Params, res.Device, string(res.Status)}

	m := res.Measurement
	row = append(row, strconv.Itoa(m.Count()))
	if m.Count() > 0 {
		s := m.Statistics
		for _, d := range []time.Duration{s.Mean, s.Median, s.Min, s.Max, s.StdDev, s.P90, s.P99} {
			row = append(row, strconv.FormatInt(int64(d), 10))
		}
		row = append(row,
			strconv.FormatUint(m.Memory.AllocsPerOp, 10),
			strconv.FormatUint(m.Memory.BytesPerOp, 10),
			strconv.FormatBool(m.UnderSampled),
		)
	} else {
		row = append(row, "", "", "", "", "", "", "", "", "", "")
	}

	row = append(row, string(res.Phase), res.Reason)
	if err := c.w.Write(row); err != nil {
		return err
	}
	c.w.Flush()
	return c.w.Error()
}

func (c *CSV) End(benchmark.Summary) error {
	c.w.Flush()
	return c.w.Error()
}
