package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newTasksCommand(cli *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List the tasks in the selected catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := cli.loadCatalog()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCATEGORY\tCOMPLEXITY\tMODE\tPERTURB\tTOOLS\tFAIL P")
			for _, task := range catalog.Tasks() {
				tools := "-"
				if len(task.DeclaredTools) > 0 {
					tools = fmt.Sprintf("%v", task.DeclaredTools)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%.2f\n",
					task.ID, task.Category, task.Complexity, task.Judge.Mode,
					len(task.Perturbations), tools, task.ToolFailureProbability)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			summary := catalog.Summarize()
			fmt.Printf("\n%d tasks in %q", summary.TotalTasks, catalog.Name())
			if len(summary.ByCategory) > 0 {
				fmt.Printf(" (")
				for i, cat := range catalog.Categories() {
					if i > 0 {
						fmt.Printf(", ")
					}
					fmt.Printf("%s: %d", cat, summary.ByCategory[cat])
				}
				fmt.Printf(")")
			}
			fmt.Println()
			return nil
		},
	}
}
