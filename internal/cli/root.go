// Package cli - The filterbench command line.
package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

// NewRootCmd creates the filterbench command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "filterbench",
		Short:   "Parameterized performance benchmarks for image filters",
		Version: version,
		Long: `filterbench times image filters (blur, gradient, morphology, convolution
and resize) over every combination of image size, pixel format and filter
parameters, on OpenCV and on pure-Go implementations.

  filterbench run --run 'Blur/size=1280x720' --devices opencv,native
  filterbench list Sobel --instances`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// If no subcommand is provided, print help
			return cmd.Help()
		},
	}

	root.PersistentFlags().BoolP("verbose", "v", false, "Log every instance")

	root.AddCommand(newRunCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newDevicesCmd())
	root.AddCommand(newInitConfigCmd())
	return root
}

// Execute runs the root command. This is called by main.main().
func Execute() error {
	return NewRootCmd().Execute()
}

// newLogger returns a text logger on w; --verbose lowers the level to debug.
func newLogger(cmd *cobra.Command, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
