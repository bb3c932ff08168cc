package benchmark

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// RunOptions configures RunAll.
type RunOptions struct {
	// Config bounds sampling and seeds the warmup generator. The zero value
	// means DefaultConfig.
	Config *Config
	// Filter selects instances in go test -run syntax; empty runs everything.
	Filter string
	// Logger receives progress, skip and failure messages. Nil discards them.
	Logger *slog.Logger
	// Clock replaces time.Now for sample timing.
	Clock func() time.Time
}

// RunAll runs every matching instance of every registered case on every
// device, one at a time, and reports each to rep.
//
// Instances run in registration order, then tuple order, then device order.
// Skips and failures are recorded and do not stop the run.
//
// Arguments:
// - ctx: Checked between instances and between samples.
// - devices: The device contexts, enumerated by the caller.
// - rep: Receives Begin, one Record per instance and End.
// - opts: Run options.
//
// Returns:
// - Summary: Outcome counts of the recorded instances.
// - error: A *ConfigurationError before anything ran, a reporter error, or
// the context error after a cancelled run has been closed with End.
func (r *Registry) RunAll(ctx context.Context, devices []Device, rep Reporter, opts RunOptions) (Summary, error) {
	var sum Summary

	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return sum, err
	}
	if len(devices) == 0 {
		return sum, &ConfigurationError{Reason: "no devices to run on"}
	}
	m, err := newMatcher(opts.Filter)
	if err != nil {
		return sum, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	timer := cfg.newTimer()
	timer.now = opts.Clock

	defs := r.matching(m)
	info := RunInfo{
		ID:        uuid.NewString(),
		Started:   time.Now(),
		GoVersion: runtime.Version(),
		GOOS:      runtime.GOOS,
		GOARCH:    runtime.GOARCH,
		NumCPU:    runtime.NumCPU(),
		Filter:    opts.Filter,
		Config:    *cfg,
	}
	for _, d := range devices {
		info.Devices = append(info.Devices, d.Name())
	}
	for _, def := range defs {
		info.Cases = append(info.Cases, def.Name)
		for p := range def.plans() {
			if m.matchLabels(p.instance.Labels) {
				info.Instances += len(devices)
			}
		}
	}

	if err := rep.Begin(info); err != nil {
		return sum, errors.Wrap(err, "reporter begin")
	}
	logger.Info("benchmark run started", "id", info.ID, "cases", len(defs), "devices", info.Devices)

	started := time.Now()
	runErr := func() error {
		for _, def := range defs {
			for p := range def.plans() {
				if !m.matchLabels(p.instance.Labels) {
					continue
				}
				for _, dev := range devices {
					if err := ctx.Err(); err != nil {
						return err
					}
					res := runInstance(ctx, p, def, dev, timer, cfg.WarmupSeed, logger)
					sum.add(res)
					if err := rep.Record(res); err != nil {
						return errors.Wrapf(err, "reporter record %s", res.Name())
					}
					if err := ctx.Err(); err != nil {
						return err
					}
				}
			}
		}
		return nil
	}()
	sum.Elapsed = time.Since(started)

	if err := rep.End(sum); err != nil && runErr == nil {
		runErr = errors.Wrap(err, "reporter end")
	}
	logger.Info("benchmark run finished", "summary", sum.String())
	return sum, runErr
}

// runInstance checks support, sets up, measures and tears down one instance.
func runInstance(ctx context.Context, p plan, def *Definition, dev Device, timer *Timer, seed uint64, logger *slog.Logger) Result {
	inst := p.instance
	res := Result{
		Case:   inst.Case,
		Params: inst.ParamString(),
		Labels: inst.Labels,
		Device: dev.Name(),
	}
	log := logger.With("case", res.Case, "params", res.Params, "device", res.Device)

	if err := dev.Supports(inst); err != nil {
		var unsupported *UnsupportedCombinationError
		if !errors.As(err, &unsupported) {
			err = &UnsupportedCombinationError{Device: dev.Name(), Reason: err.Error()}
		}
		return skipped(res, err, log)
	}

	log.Debug("running instance")
	env := newEnv(dev, inst, seed, def.Fill, logger)
	defer env.close()

	cycle, err := setup(p, env)
	if err == nil && cycle == nil {
		err = errors.New("body returned a nil cycle")
	}
	if err != nil {
		if skip, _ := classify(err); skip {
			return skipped(res, err, log)
		}
		return failed(res, &ExecutionFailure{Phase: PhaseSetup, Sample: -1, Err: err}, nil, log)
	}

	sampling, err := timer.Measure(ctx, cycle)
	var measurement *Measurement
	if len(sampling.Samples) > 0 {
		measurement = sampling.Measurement()
	}
	if err != nil {
		return failed(res, err, measurement, log)
	}

	res.Status = StatusMeasured
	res.Measurement = measurement
	if measurement.UnderSampled {
		log.Warn("instance under-sampled", "samples", measurement.Count(), "elapsed", measurement.Elapsed)
	}
	return res
}

// setup runs the case body, turning a panic into an error.
func setup(p plan, env *Env) (cycle Cycle, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.WithStack(&PanicError{Value: r})
		}
	}()
	return p.setup(env)
}

func skipped(res Result, err error, log *slog.Logger) Result {
	_, reason := classify(err)
	res.Status = StatusSkipped
	res.Reason = reason
	res.Err = err
	log.Info("instance skipped", "reason", reason)
	return res
}

func failed(res Result, err error, m *Measurement, log *slog.Logger) Result {
	var failure *ExecutionFailure
	if errors.As(err, &failure) {
		failure.Case = res.Case
		failure.Params = res.Params
		failure.Device = res.Device
		res.Phase = failure.Phase
		res.Reason = failure.Err.Error()
	} else {
		res.Phase = PhaseSample
		res.Reason = err.Error()
	}
	res.Status = StatusFailed
	res.Measurement = m
	res.Err = err
	log.Error("instance failed", "phase", res.Phase, "error", res.Reason)
	return res
}
