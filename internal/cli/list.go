package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nvr-ai/go-filterbench/benchmark"
	"github.com/nvr-ai/go-filterbench/device"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [pattern]",
		Short: "List the benchmark cases",
		Long: `List the registered cases whose names match pattern (go test -run syntax,
first element only). With --instances every parameter tuple is printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: listCases,
	}
	addConfigFlags(cmd)
	cmd.Flags().Bool("instances", false, "Print every instance instead of one line per case")
	return cmd
}

func listCases(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := catalogueOptions(cfg)
	if err != nil {
		return err
	}
	reg, err := catalogue(opts)
	if err != nil {
		return err
	}

	pattern := ""
	if len(args) == 1 {
		pattern = args[0]
	}
	defs, err := reg.ListMatching(pattern)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if instances, _ := cmd.Flags().GetBool("instances"); instances {
		for _, def := range defs {
			for inst := range def.Instances() {
				fmt.Fprintln(out, inst)
			}
		}
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CASE\tAXES\tINSTANCES")
	total := 0
	for _, def := range defs {
		axes := strings.Join(def.Axes, ", ")
		if axes == "" {
			axes = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\n", def.Name, axes, def.Len())
		total += def.Len()
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	sizes := make([]string, len(opts.Sizes))
	for i, s := range opts.Sizes {
		sizes[i] = fmt.Sprintf("%s (%.2f MP)", s, s.MegaPixels())
	}
	fmt.Fprintf(out, "sizes: %s\n", strings.Join(sizes, ", "))
	fmt.Fprintf(out, "%d cases, %d instances, budget %s per instance and device\n", len(defs), total, cfg.TimeBudget)
	return nil
}

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List the available devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			devices, err := device.Lookup("all")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, d := range devices {
				fmt.Fprintln(out, d)
				if ctx, ok := d.(*device.Context); ok && ctx.Operations() != nil {
					fmt.Fprintf(out, "  operations: %s\n", strings.Join(ctx.Operations(), ", "))
				}
			}
			return nil
		},
	}
}

func newInitConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config <file>",
		Short: "Write the default configuration to a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := benchmark.DefaultConfig().SaveConfig(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
			return nil
		},
	}
}
