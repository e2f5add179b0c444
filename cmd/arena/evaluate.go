package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"arena/internal/config"
	"arena/internal/evaluator"
	"arena/internal/llm"
	"arena/internal/metrics"
	"arena/internal/pattern"
	"arena/internal/report"
	"arena/internal/tools"
)

type evaluateFlags struct {
	patterns    []string
	robustness  bool
	live        bool
	concurrency int
	timeout     time.Duration
	seed        int64
	outDir      string
	formats     []string
}

func newEvaluateCommand(cli *cliContext) *cobra.Command {
	flags := &evaluateFlags{}

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run the benchmark for one or more patterns",
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := executeRun(cmd.Context(), cli, flags)
			if err != nil {
				return err
			}
			report.PrintConsole(os.Stdout, run)
			return writeOutputs(cli, flags, run)
		},
	}

	cmd.Flags().StringSliceVarP(&flags.patterns, "pattern", "p", nil,
		fmt.Sprintf("Patterns to evaluate (default: all of %v)", pattern.Names()))
	cmd.Flags().BoolVar(&flags.robustness, "robustness", true, "Include perturbation and failure-injection trials")
	cmd.Flags().BoolVar(&flags.live, "live", false, "Delegate prompts to the configured LLM endpoint")
	cmd.Flags().IntVar(&flags.concurrency, "concurrency", 0, "Concurrent trials per pattern (default: from config)")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "Per-trial timeout (default: from config)")
	cmd.Flags().Int64Var(&flags.seed, "seed", 0, "Failure-injection RNG seed (0: time-based)")
	cmd.Flags().StringVarP(&flags.outDir, "out", "o", "", "Output directory (default: from config)")
	cmd.Flags().StringSliceVar(&flags.formats, "format", []string{"json"}, "Report formats: json, markdown, csv")

	return cmd
}

// executeRun evaluates the selected patterns sequentially and aggregates
// their scores into a run report.
func executeRun(ctx context.Context, cli *cliContext, flags *evaluateFlags) (*report.Run, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := cli.loadConfig()
	if err != nil {
		return nil, err
	}
	catalog, err := cli.loadCatalog()
	if err != nil {
		return nil, err
	}
	patterns, err := buildPatterns(cli, cfg, flags)
	if err != nil {
		return nil, err
	}

	logger := cli.logger()
	opts := evaluator.Options{
		IncludeRobustness: flags.robustness,
		Concurrency:       pickInt(flags.concurrency, cfg.Concurrency),
		Timeout:           pickDuration(flags.timeout, cfg.Timeout),
		Seed:              flags.seed,
		Logger:            logger,
	}

	run := report.NewRun(catalog.Name(), catalog.Len(), flags.robustness)
	eval := evaluator.New(logger)
	for _, p := range patterns {
		logger.Info("evaluating pattern %s on %d tasks", p.Name(), catalog.Len())
		outcomes, err := eval.Evaluate(ctx, p, catalog, opts)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", p.Name(), err)
		}
		run.Add(metrics.Aggregate(p.Name(), outcomes))
	}
	return run, nil
}

func buildPatterns(cli *cliContext, cfg *config.RunConfig, flags *evaluateFlags) ([]evaluator.Pattern, error) {
	deps := pattern.Deps{
		Tools:  tools.NewRegistry(),
		Logger: cli.logger(),
	}
	if flags.live {
		client, err := llm.NewOpenAIClient(llm.Config{
			Model:       cfg.Model,
			BaseURL:     cfg.BaseURL,
			APIKey:      cfg.APIKey(),
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("live mode: %w", err)
		}
		deps.LLM = client
	}

	names := flags.patterns
	if len(names) == 0 {
		return pattern.All(deps), nil
	}
	var patterns []evaluator.Pattern
	for _, name := range names {
		p, err := pattern.New(strings.TrimSpace(name), deps)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

func writeOutputs(cli *cliContext, flags *evaluateFlags, run *report.Run) error {
	cfg, err := cli.loadConfig()
	if err != nil {
		return err
	}
	outDir := flags.outDir
	if outDir == "" {
		outDir = cfg.OutputDir
	}
	stem := filepath.Join(outDir, "run-"+run.RunID)
	for _, format := range flags.formats {
		switch strings.ToLower(strings.TrimSpace(format)) {
		case "json":
			err = report.WriteJSON(stem+".json", run)
		case "markdown", "md":
			err = report.WriteMarkdown(stem+".md", run)
		case "csv":
			err = report.WriteCSV(stem+".csv", run)
		default:
			err = fmt.Errorf("unknown report format %q", format)
		}
		if err != nil {
			return err
		}
	}
	fmt.Printf("\nresults written to %s.*\n", stem)
	return nil
}

func pickInt(flag, fallback int) int {
	if flag > 0 {
		return flag
	}
	return fallback
}

func pickDuration(flag, fallback time.Duration) time.Duration {
	if flag > 0 {
		return flag
	}
	return fallback
}
