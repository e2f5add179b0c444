package main

import (
	"os"

	"github.com/spf13/cobra"

	"arena/internal/report"
)

func newCompareCommand(cli *cliContext) *cobra.Command {
	flags := &evaluateFlags{}

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Evaluate every pattern and print a side-by-side comparison",
		RunE: func(cmd *cobra.Command, args []string) error {
			// All patterns, run sequentially for comparability.
			flags.patterns = nil
			run, err := executeRun(cmd.Context(), cli, flags)
			if err != nil {
				return err
			}
			report.PrintConsole(os.Stdout, run)
			return writeOutputs(cli, flags, run)
		},
	}

	cmd.Flags().BoolVar(&flags.robustness, "robustness", true, "Include perturbation and failure-injection trials")
	cmd.Flags().BoolVar(&flags.live, "live", false, "Delegate prompts to the configured LLM endpoint")
	cmd.Flags().IntVar(&flags.concurrency, "concurrency", 0, "Concurrent trials per pattern (default: from config)")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "Per-trial timeout (default: from config)")
	cmd.Flags().Int64Var(&flags.seed, "seed", 0, "Failure-injection RNG seed (0: time-based)")
	cmd.Flags().StringVarP(&flags.outDir, "out", "o", "", "Output directory (default: from config)")
	cmd.Flags().StringSliceVar(&flags.formats, "format", []string{"json", "markdown"}, "Report formats: json, markdown, csv")

	return cmd
}
