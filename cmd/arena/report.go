package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"arena/internal/report"
)

func newReportCommand() *cobra.Command {
	var (
		input   string
		formats []string
		outStem string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Re-render a saved run as markdown, csv or a console table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				return fmt.Errorf("--input is required")
			}
			run, err := report.LoadJSON(input)
			if err != nil {
				return err
			}
			stem := outStem
			if stem == "" {
				stem = strings.TrimSuffix(input, ".json")
			}
			for _, format := range formats {
				switch strings.ToLower(strings.TrimSpace(format)) {
				case "console":
					report.PrintConsole(os.Stdout, run)
				case "markdown", "md":
					if err := report.WriteMarkdown(stem+".md", run); err != nil {
						return err
					}
					fmt.Printf("wrote %s.md\n", stem)
				case "csv":
					if err := report.WriteCSV(stem+".csv", run); err != nil {
						return err
					}
					fmt.Printf("wrote %s.csv\n", stem)
				default:
					return fmt.Errorf("unknown report format %q", format)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Run JSON produced by evaluate/compare")
	cmd.Flags().StringSliceVar(&formats, "format", []string{"console"}, "Formats: console, markdown, csv")
	cmd.Flags().StringVar(&outStem, "out", "", "Output path stem (default: input path without .json)")

	return cmd
}
