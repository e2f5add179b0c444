package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"arena/internal/config"
	"arena/internal/logging"
	"arena/internal/suite"
)

type cliContext struct {
	configPath string
	verbose    bool

	catalogPath string
	category    string
	complexity  string
	taskIDs     []string
}

func newRootCommand() *cobra.Command {
	cli := &cliContext{}

	rootCmd := &cobra.Command{
		Use:   "arena",
		Short: "Benchmark agent patterns on a reproducible task suite",
		Long: "arena evaluates agent patterns (reflex, react, pipeline, treesearch) against a\n" +
			"task catalog and scores them on success, efficiency, robustness and controllability.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cli.configPath, "config", "", "Config file (default: arena-config.yaml in . or $HOME)")
	rootCmd.PersistentFlags().BoolVarP(&cli.verbose, "verbose", "v", false, "Debug logging")
	rootCmd.PersistentFlags().StringVar(&cli.catalogPath, "catalog", "", "Task catalog YAML (default: builtin suite)")
	rootCmd.PersistentFlags().StringVar(&cli.category, "category", "", "Filter tasks by category")
	rootCmd.PersistentFlags().StringVar(&cli.complexity, "complexity", "", "Filter tasks by complexity")
	rootCmd.PersistentFlags().StringSliceVar(&cli.taskIDs, "task", nil, "Run only the given task IDs")

	rootCmd.AddCommand(newTasksCommand(cli))
	rootCmd.AddCommand(newEvaluateCommand(cli))
	rootCmd.AddCommand(newCompareCommand(cli))
	rootCmd.AddCommand(newReportCommand())

	return rootCmd
}

func (c *cliContext) logger() logging.Logger {
	level := logging.LevelInfo
	if c.verbose {
		level = logging.LevelDebug
	}
	return logging.New(os.Stderr, level)
}

func (c *cliContext) loadConfig() (*config.RunConfig, error) {
	return config.Load(c.configPath)
}

// loadCatalog resolves the catalog source and applies the shared filter
// flags.
func (c *cliContext) loadCatalog() (*suite.Catalog, error) {
	catalog := suite.Builtin()
	if c.catalogPath != "" {
		loaded, err := suite.LoadCatalog(c.catalogPath)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		catalog = loaded
	}
	if c.category == "" && c.complexity == "" && len(c.taskIDs) == 0 {
		return catalog, nil
	}
	filtered, err := catalog.Filter(suite.Filters{
		Category:   suite.Category(c.category),
		Complexity: suite.Complexity(c.complexity),
		IDs:        c.taskIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("filter catalog: %w", err)
	}
	return filtered, nil
}
