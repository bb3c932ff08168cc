// Package benchmark - Functionality for declaring, timing and reporting
// parameterized benchmarks.
package benchmark

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Status is the outcome of one instance.
type Status string

const (
	StatusMeasured Status = "measured"
	StatusSkipped  Status = "skipped"
	StatusFailed   Status = "failed"
)

// Statistics summarises the timed samples of one instance.
type Statistics struct {
	Mean   time.Duration `json:"mean_ns"   yaml:"mean_ns"`
	Median time.Duration `json:"median_ns" yaml:"median_ns"`
	Min    time.Duration `json:"min_ns"    yaml:"min_ns"`
	Max    time.Duration `json:"max_ns"    yaml:"max_ns"`
	StdDev time.Duration `json:"stddev_ns" yaml:"stddev_ns"`
	P90    time.Duration `json:"p90_ns"    yaml:"p90_ns"`
	P99    time.Duration `json:"p99_ns"    yaml:"p99_ns"`
}

// MemoryMetrics captures heap allocation during the timed loop.
type MemoryMetrics struct {
	AllocsPerOp     uint64 `json:"allocs_per_op"     yaml:"allocs_per_op"`
	BytesPerOp      uint64 `json:"bytes_per_op"      yaml:"bytes_per_op"`
	TotalAllocBytes uint64 `json:"total_alloc_bytes" yaml:"total_alloc_bytes"`
	NumGC           uint32 `json:"num_gc"            yaml:"num_gc"`
}

// Measurement is the timing record of one instance.
type Measurement struct {
	// Samples are the per-cycle durations in execution order.
	Samples      []time.Duration `json:"samples_ns"    yaml:"samples_ns"`
	Statistics   Statistics      `json:"statistics"    yaml:"statistics"`
	Elapsed      time.Duration   `json:"elapsed_ns"    yaml:"elapsed_ns"`
	UnderSampled bool            `json:"under_sampled" yaml:"under_sampled"`
	Memory       MemoryMetrics   `json:"memory"        yaml:"memory"`
}

// Count returns the number of timed samples.
func (m *Measurement) Count() int {
	if m == nil {
		return 0
	}
	return len(m.Samples)
}

// Result is the single report record of one instance.
type Result struct {
	Case   string   `json:"case"   yaml:"case"`
	Params string   `json:"params" yaml:"params"`
	Labels []string `json:"labels" yaml:"labels"`
	Device string   `json:"device" yaml:"device"`
	Status Status   `json:"status" yaml:"status"`
	// Measurement is set for measured instances and for failures that
	// happened after at least one timed sample.
	Measurement *Measurement `json:"measurement,omitempty" yaml:"measurement,omitempty"`
	// Reason explains a skip or failure.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
	// Phase is set for failures.
	Phase Phase `json:"phase,omitempty" yaml:"phase,omitempty"`
	// Err is the underlying error of a skip or failure.
	Err error `json:"-" yaml:"-"`
}

// Name returns "Case/axis=value/...".
func (r Result) Name() string {
	if r.Params == "" {
		return r.Case
	}
	return r.Case + "/" + r.Params
}

// RunInfo describes a run, passed to Reporter.Begin.
type RunInfo struct {
	ID        string    `json:"id"         yaml:"id"`
	Started   time.Time `json:"started"    yaml:"started"`
	GoVersion string    `json:"go_version" yaml:"go_version"`
	GOOS      string    `json:"goos"       yaml:"goos"`
	GOARCH    string    `json:"goarch"     yaml:"goarch"`
	NumCPU    int       `json:"num_cpu"    yaml:"num_cpu"`
	Devices   []string  `json:"devices"    yaml:"devices"`
	Cases     []string  `json:"cases"      yaml:"cases"`
	// Instances is the number of Record calls the run will make if it is
	// not cancelled.
	Instances int       `json:"instances"  yaml:"instances"`
	Filter    string    `json:"filter,omitempty" yaml:"filter,omitempty"`
	Config    Config    `json:"config"     yaml:"config"`
}

// Summary counts the outcomes of a run, passed to Reporter.End.
type Summary struct {
	Measured     int           `json:"measured"      yaml:"measured"`
	Skipped      int           `json:"skipped"       yaml:"skipped"`
	Failed       int           `json:"failed"        yaml:"failed"`
	UnderSampled int           `json:"under_sampled" yaml:"under_sampled"`
	Elapsed      time.Duration `json:"elapsed_ns"    yaml:"elapsed_ns"`
}

// Total returns the number of recorded instances.
func (s Summary) Total() int {
	return s.Measured + s.Skipped + s.Failed
}

// String returns a one-line summary.
func (s Summary) String() string {
	out := fmt.Sprintf("%d measured, %d skipped, %d failed in %s",
		s.Measured, s.Skipped, s.Failed, s.Elapsed.Round(time.Millisecond))
	if s.UnderSampled > 0 {
		out += fmt.Sprintf(" (%d under-sampled)", s.UnderSampled)
	}
	return out
}

func (s *Summary) add(res Result) {
	switch res.Status {
	case StatusMeasured:
		s.Measured++
		if res.Measurement != nil && res.Measurement.UnderSampled {
			s.UnderSampled++
		}
	case StatusSkipped:
		s.Skipped++
	case StatusFailed:
		s.Failed++
	}
}

// maxTrackable bounds the percentile histogram; slower samples are clamped.
const maxTrackable = int64(time.Hour)

// calculateStatistics computes summary statistics for a set of samples.
//
// Arguments:
// - samples: Per-cycle durations. The slice is not modified.
//
// Returns:
// - Statistics: Mean, median, extremes, population standard deviation and
// p90/p99 percentiles. The zero value for no samples.
func calculateStatistics(samples []time.Duration) Statistics {
	if len(samples) == 0 {
		return Statistics{}
	}

	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	stats := Statistics{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
	}

	sum := 0.0
	for _, v := range sorted {
		sum += float64(v)
	}
	mean := sum / float64(len(sorted))
	stats.Mean = time.Duration(math.Round(mean))

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		stats.Median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		stats.Median = sorted[mid]
	}

	variance := 0.0
	for _, v := range sorted {
		d := float64(v) - mean
		variance += d * d
	}
	stats.StdDev = time.Duration(math.Round(math.Sqrt(variance / float64(len(sorted)))))

	h := hdrhistogram.New(1, maxTrackable, 3)
	for _, v := range sorted {
		ns := min(max(int64(v), 1), maxTrackable)
		// Cannot fail: ns is clamped into the trackable range.
		_ = h.RecordValue(ns)
	}
	stats.P90 = clampQuantile(time.Duration(h.ValueAtQuantile(90)), stats)
	stats.P99 = clampQuantile(time.Duration(h.ValueAtQuantile(99)), stats)

	return stats
}

// clampQuantile keeps histogram quantiles, which are rounded to the bucket's
// upper bound, inside the observed range.
func clampQuantile(v time.Duration, s Statistics) time.Duration {
	return min(max(v, s.Min), s.Max)
}
