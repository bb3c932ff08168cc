// Package profiler - Run progress and runtime statistics for long benchmark
// runs.
package profiler

import (
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/nvr-ai/go-filterbench/benchmark"
)

// TimeTracker tracks how long the instances of one case took to measure.
type TimeTracker struct {
	Name      string
	Count     int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// Average returns the mean measurement time.
func (t TimeTracker) Average() time.Duration {
	if t.Count == 0 {
		return 0
	}
	return t.TotalTime / time.Duration(t.Count)
}

// ProgressOptions configures the progress reporter.
type ProgressOptions struct {
	// ReportInterval specifies how often to emit status reports (default: 2s)
	ReportInterval time.Duration
	// Logger receives the status reports. Nil discards them.
	Logger *slog.Logger
	// Clock replaces time.Now.
	Clock func() time.Time
}

// Progress is a benchmark.Reporter that logs a status report at most once per
// interval. It never runs in the background: reports are emitted from Record,
// between instances, so reading memory statistics cannot disturb a sample.
type Progress struct {
	reportInterval time.Duration
	logger         *slog.Logger
	now            func() time.Time

	mu         sync.Mutex
	startTime  time.Time
	lastReport time.Time
	total      int
	done       int
	counts     map[benchmark.Status]int

	memStats    runtime.MemStats
	lastGCCount uint32

	operationTimes map[string]*TimeTracker
}

// NewProgress creates a progress reporter with the specified options.
//
// Arguments:
// - opts: Configuration options for the reporter
//
// Returns:
// - A configured Progress instance
func NewProgress(opts ProgressOptions) *Progress {
	// Set defaults
	if opts.ReportInterval == 0 {
		opts.ReportInterval = 2 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	return &Progress{
		reportInterval: opts.ReportInterval,
		logger:         opts.Logger,
		now:            opts.Clock,
		counts:         make(map[benchmark.Status]int),
		operationTimes: make(map[string]*TimeTracker),
	}
}

// Begin implements benchmark.Reporter.
func (p *Progress) Begin(info benchmark.RunInfo) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = p.now()
	p.lastReport = p.startTime
	p.total = info.Instances
	p.done = 0
	clear(p.counts)
	clear(p.operationTimes)

	runtime.ReadMemStats(&p.memStats)
	p.lastGCCount = p.memStats.NumGC
	return nil
}

// Record implements benchmark.Reporter.
func (p *Progress) Record(res benchmark.Result) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	p.counts[res.Status]++
	if res.Measurement != nil {
		p.recordOperationTime(res.Case, res.Measurement.Elapsed)
	}

	if now := p.now(); now.Sub(p.lastReport) >= p.reportInterval {
		p.lastReport = now
		p.emitStatusReport(now)
	}
	return nil
}

// End implements benchmark.Reporter. It logs the per-case timings.
func (p *Progress) End(sum benchmark.Summary) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, t := range p.sortedTimes() {
		p.logger.Debug("case timing",
			"case", t.Name,
			"instances", t.Count,
			"avg", t.Average().Truncate(time.Microsecond),
			"min", t.MinTime.Truncate(time.Microsecond),
			"max", t.MaxTime.Truncate(time.Microsecond),
		)
	}
	p.logger.Info("benchmark progress", "done", p.done, "total", p.total, "summary", sum.String())
	return nil
}

// recordOperationTime adds one measured instance to the case's tracker.
func (p *Progress) recordOperationTime(name string, duration time.Duration) {
	tracker, exists := p.operationTimes[name]
	if !exists {
		tracker = &TimeTracker{
			Name:    name,
			MinTime: duration,
			MaxTime: duration,
		}
		p.operationTimes[name] = tracker
	}

	tracker.TotalTime += duration
	tracker.Count++

	if duration < tracker.MinTime {
		tracker.MinTime = duration
	}
	if duration > tracker.MaxTime {
		tracker.MaxTime = duration
	}
}

// emitStatusReport logs how far the run has got, an estimate of the time
// left and the heap size.
func (p *Progress) emitStatusReport(now time.Time) {
	elapsed := now.Sub(p.startTime)

	attrs := []any{
		"done", p.done,
		"total", p.total,
		"measured", p.counts[benchmark.StatusMeasured],
		"skipped", p.counts[benchmark.StatusSkipped],
		"failed", p.counts[benchmark.StatusFailed],
		"elapsed", elapsed.Truncate(time.Millisecond),
	}
	if eta, ok := estimateRemaining(elapsed, p.done, p.total); ok {
		attrs = append(attrs, "eta", eta.Truncate(time.Second))
	}

	runtime.ReadMemStats(&p.memStats)
	attrs = append(attrs,
		"heap", formatBytes(p.memStats.HeapAlloc),
		"gc_cycles", p.memStats.NumGC-p.lastGCCount,
	)
	p.lastGCCount = p.memStats.NumGC

	p.logger.Info("benchmark progress", attrs...)
}

// estimateRemaining extrapolates the time per recorded instance.
func estimateRemaining(elapsed time.Duration, done, total int) (time.Duration, bool) {
	if done == 0 || total <= done {
		return 0, false
	}
	return elapsed / time.Duration(done) * time.Duration(total-done), true
}

// formatBytes formats byte counts in human-readable format.
func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func (p *Progress) sortedTimes() []TimeTracker {
	out := make([]TimeTracker, 0, len(p.operationTimes))
	for _, t := range p.operationTimes {
		out = append(out, *t)
	}
	slices.SortFunc(out, func(a, b TimeTracker) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return out
}

// Snapshot returns the instances recorded so far and the per-case timings
// sorted by case name.
func (p *Progress) Snapshot() (done, total int, times []TimeTracker) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done, p.total, p.sortedTimes()
}
