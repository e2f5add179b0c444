package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
	gray  = color.New(color.FgHiBlack).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
)

// PrintConsole renders the comparison table to w. The winner row is
// highlighted; null rates show as gray n/a.
func PrintConsole(w io.Writer, run *Run) {
	fmt.Fprintf(w, "%s  %s\n", bold("Evaluation run"), cyan(run.RunID))
	fmt.Fprintf(w, "%s %s (%d tasks), robustness=%v\n\n",
		gray("catalog:"), run.Catalog, run.TaskCount, run.Robustness)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, bold("PATTERN\tSTRICT\tLENIENT\tGAP\tLATENCY\tTOKENS\tROBUST\tRECOVERY\tSCHEMA\tPOLICY"))
	winner := run.Winner()
	for _, p := range run.Patterns {
		name := p.Pattern
		if p.Pattern == winner {
			name = green(name + " *")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			name,
			consoleRate(p.SuccessRateStrict),
			consoleRate(p.SuccessRateLenient),
			consoleRate(p.ControllabilityGap),
			consoleSeconds(p.AvgLatency),
			consoleCount(p.AvgTotalTokens),
			consoleRate(p.RobustnessScore),
			consoleRate(p.ToolFailureRecoveryScore),
			consoleRate(p.SchemaComplianceRate),
			consoleRate(p.ToolPolicyAdherenceRate))
	}
	tw.Flush()

	if winner != "" {
		fmt.Fprintf(w, "\n%s %s\n", gray("best strict success:"), green(winner))
	}
}

func consoleRate(v *float64) string {
	if v == nil {
		return gray("n/a")
	}
	s := fmt.Sprintf("%.1f%%", *v*100)
	if *v == 0 {
		return red(s)
	}
	return s
}

func consoleSeconds(v *float64) string {
	if v == nil {
		return gray("n/a")
	}
	return fmt.Sprintf("%.3fs", *v)
}

func consoleCount(v *float64) string {
	if v == nil {
		return gray("n/a")
	}
	return fmt.Sprintf("%.1f", *v)
}
