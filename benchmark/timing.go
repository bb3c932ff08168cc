package benchmark

import (
	"context"
	"runtime"
	"time"

	"github.com/pkg/errors"
)

// maxPreallocSamples bounds the sample slice allocated up front; longer
// runs grow it with append.
const maxPreallocSamples = 1024

// Timer measures a cycle under a time budget: one untimed warmup call, then
// timed calls until the accumulated sample time reaches Budget or MaxSamples
// samples were taken, whichever comes first.
type Timer struct {
	Budget     time.Duration
	MinSamples int
	MaxSamples int

	// now is the clock; nil means time.Now.
	now func() time.Time
}

// NewTimer creates a timer with the given bounds.
func NewTimer(budget time.Duration, minSamples, maxSamples int) (*Timer, error) {
	cfg := Config{TimeBudget: Duration(budget), MinSamples: minSamples, MaxSamples: maxSamples}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg.newTimer(), nil
}

// Sampling is the raw output of Measure.
type Sampling struct {
	Samples []time.Duration
	// Elapsed is the sum of the samples.
	Elapsed      time.Duration
	UnderSampled bool
	Memory       MemoryMetrics
}

// Measurement converts the sampling into a report Measurement.
func (s Sampling) Measurement() *Measurement {
	return &Measurement{
		Samples:      s.Samples,
		Statistics:   calculateStatistics(s.Samples),
		Elapsed:      s.Elapsed,
		UnderSampled: s.UnderSampled,
		Memory:       s.Memory,
	}
}

// Measure runs the measurement protocol on cycle.
//
// Arguments:
// - ctx: Checked between samples; cancellation stops the loop.
// - cycle: The operation to time.
//
// Returns:
// - Sampling: The samples taken so far, also on error.
// - error: An *ExecutionFailure naming the warmup or sample that failed or
// panicked, or the context error.
func (t *Timer) Measure(ctx context.Context, cycle Cycle) (Sampling, error) {
	now := t.now
	if now == nil {
		now = time.Now
	}

	var s Sampling
	if err := ctx.Err(); err != nil {
		return s, err
	}

	if err := invoke(cycle); err != nil {
		return s, &ExecutionFailure{Phase: PhaseWarmup, Sample: -1, Err: err}
	}

	s.Samples = make([]time.Duration, 0, min(t.MaxSamples, maxPreallocSamples))

	var startMem runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&startMem)

	var failure error
	for len(s.Samples) < t.MaxSamples {
		if err := ctx.Err(); err != nil {
			failure = err
			break
		}

		start := now()
		err := invoke(cycle)
		d := now().Sub(start)
		if err != nil {
			failure = &ExecutionFailure{Phase: PhaseSample, Sample: len(s.Samples), Err: err}
			break
		}

		s.Samples = append(s.Samples, d)
		s.Elapsed += d
		if s.Elapsed >= t.Budget {
			break
		}
	}

	var endMem runtime.MemStats
	runtime.ReadMemStats(&endMem)

	if n := uint64(len(s.Samples)); n > 0 {
		s.Memory = MemoryMetrics{
			AllocsPerOp:     (endMem.Mallocs - startMem.Mallocs) / n,
			BytesPerOp:      (endMem.TotalAlloc - startMem.TotalAlloc) / n,
			TotalAllocBytes: endMem.TotalAlloc - startMem.TotalAlloc,
			NumGC:           endMem.NumGC - startMem.NumGC,
		}
	}
	s.UnderSampled = len(s.Samples) < t.MinSamples

	return s, failure
}

// invoke calls cycle, turning a panic into an error.
func invoke(cycle Cycle) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.WithStack(&PanicError{Value: r})
		}
	}()
	return cycle()
}
