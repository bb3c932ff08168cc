package cli

import (
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nvr-ai/go-filterbench/benchmark"
	"github.com/nvr-ai/go-filterbench/benchmark/report"
	"github.com/nvr-ai/go-filterbench/device"
	"github.com/nvr-ai/go-filterbench/filters"
	"github.com/nvr-ai/go-filterbench/images"
	"github.com/nvr-ai/go-filterbench/profiler"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the filter benchmarks",
		Long: `Run every matching benchmark instance on every selected device and write
a report. Settings come from the defaults, then --config, then flags.

Instances that a device declines are reported as skipped; instances whose
setup, warmup or samples fail are reported as failed and the run continues.
The command exits non-zero if any instance failed.`,
		Args: cobra.NoArgs,
		RunE: runBenchmarks,
	}

	addConfigFlags(cmd)
	cmd.Flags().String("run", "", "Run only instances matching this go test -run style pattern")
	cmd.Flags().StringSlice("devices", nil, "Devices to run on (opencv, native or all)")
	cmd.Flags().StringP("format", "f", "", "Report format (text, csv, json, yaml, benchfmt)")
	cmd.Flags().StringP("output", "o", "", "Report file (default: stdout)")
	cmd.Flags().Duration("budget", 0, "Time budget per instance (e.g. 20ms, 2s)")
	cmd.Flags().Int("min-samples", 0, "Samples below which a measurement is flagged under-sampled")
	cmd.Flags().Int("max-samples", 0, "Maximum samples per instance")
	cmd.Flags().Uint64("seed", 0, "Warmup data seed")
	cmd.Flags().Bool("no-color", false, "Disable coloured text output")
	cmd.Flags().Duration("progress", 2*time.Second, "Interval between progress log lines")
	return cmd
}

// addConfigFlags adds the flags shared by commands that build the catalogue.
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "", "Configuration file (YAML or JSON)")
	cmd.Flags().StringSlice("sizes", nil, "Image sizes (e.g. 1280x720,1080p)")
	cmd.Flags().StringSlice("types", nil, "Pixel types to keep (e.g. 8UC1,32FC4)")
}

// runBenchmarks runs the catalogue with the resolved configuration.
func runBenchmarks(cmd *cobra.Command, _ []string) (err error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cmd.ErrOrStderr())

	opts, err := catalogueOptions(cfg)
	if err != nil {
		return err
	}
	reg, err := catalogue(opts)
	if err != nil {
		return err
	}
	devices, err := device.Lookup(cfg.Devices...)
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	w, err := output(cmd, cfg.Output)
	if err != nil {
		return err
	}
	// A report file is only complete once it is closed.
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "failed to close report")
		}
	}()

	rep, err := report.New(format, w, report.Options{NoColor: cfg.NoColor})
	if err != nil {
		return err
	}
	interval, _ := cmd.Flags().GetDuration("progress")
	progress := profiler.NewProgress(profiler.ProgressOptions{ReportInterval: interval, Logger: logger})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum, err := reg.RunAll(ctx, devices, report.Multi{rep, progress}, benchmark.RunOptions{
		Config: cfg,
		Filter: cfg.Run,
		Logger: logger,
	})
	if err != nil {
		return errors.Wrap(err, "benchmark run failed")
	}
	if sum.Failed > 0 {
		return errors.Errorf("%d of %d benchmark instances failed", sum.Failed, sum.Total())
	}
	return nil
}

// resolveConfig layers the config file and the changed flags over the
// defaults and validates the result.
func resolveConfig(cmd *cobra.Command) (*benchmark.Config, error) {
	flags := cmd.Flags()

	cfg := benchmark.DefaultConfig()
	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := benchmark.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if flags.Changed("sizes") {
		cfg.Sizes, _ = flags.GetStringSlice("sizes")
	}
	if flags.Changed("types") {
		cfg.Types, _ = flags.GetStringSlice("types")
	}
	// Only run defines the run flags.
	if flags.Lookup("run") != nil {
		if flags.Changed("run") {
			cfg.Run, _ = flags.GetString("run")
		}
		if flags.Changed("devices") {
			cfg.Devices, _ = flags.GetStringSlice("devices")
		}
		if flags.Changed("format") {
			cfg.Format, _ = flags.GetString("format")
		}
		if flags.Changed("output") {
			cfg.Output, _ = flags.GetString("output")
		}
		if flags.Changed("budget") {
			budget, _ := flags.GetDuration("budget")
			cfg.TimeBudget = benchmark.Duration(budget)
		}
		if flags.Changed("min-samples") {
			cfg.MinSamples, _ = flags.GetInt("min-samples")
		}
		if flags.Changed("max-samples") {
			cfg.MaxSamples, _ = flags.GetInt("max-samples")
		}
		if flags.Changed("seed") {
			cfg.WarmupSeed, _ = flags.GetUint64("seed")
		}
		if flags.Changed("no-color") {
			cfg.NoColor, _ = flags.GetBool("no-color")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// catalogueOptions parses the sizes and types of cfg.
func catalogueOptions(cfg *benchmark.Config) (filters.Options, error) {
	var opts filters.Options
	for _, s := range cfg.Sizes {
		size, err := images.ParseSize(s)
		if err != nil {
			return opts, &benchmark.ConfigurationError{Reason: err.Error()}
		}
		opts.Sizes = append(opts.Sizes, size)
	}
	for _, s := range cfg.Types {
		format, err := images.ParsePixelFormat(s)
		if err != nil {
			return opts, &benchmark.ConfigurationError{Reason: err.Error()}
		}
		opts.Types = append(opts.Types, format)
	}
	if len(opts.Sizes) == 0 {
		opts.Sizes = images.TypicalSizes()
	}
	return opts, nil
}

// catalogue builds the registry of filter cases for opts.
func catalogue(opts filters.Options) (*benchmark.Registry, error) {
	reg := benchmark.NewRegistry()
	if err := filters.Register(reg, opts); err != nil {
		return nil, err
	}
	return reg, nil
}

// openReport opens report files.
var openReport = report.Open

// output returns the report destination; stdout goes through the command so
// tests can capture it.
func output(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return report.NopCloser(cmd.OutOrStdout()), nil
	}
	return openReport(path)
}
