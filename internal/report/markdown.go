package report

import (
	"fmt"
	"sort"
	"strings"
)

// WriteMarkdown renders the run as a Markdown report with a comparison
// table and per-pattern breakdowns.
func WriteMarkdown(path string, run *Run) error {
	return writeFile(path, []byte(buildMarkdown(run)))
}

func buildMarkdown(run *Run) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Agent Pattern Evaluation Report\n\n")
	fmt.Fprintf(&b, "**Run ID:** %s  \n", run.RunID)
	fmt.Fprintf(&b, "**Generated:** %s  \n", run.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "**Catalog:** %s (%d tasks)  \n", run.Catalog, run.TaskCount)
	fmt.Fprintf(&b, "**Robustness trials:** %v\n\n---\n\n", run.Robustness)

	b.WriteString("## Comparison\n\n")
	b.WriteString("| Pattern | Strict | Lenient | Gap | Avg Latency | Tokens | Robustness | Recovery | Schema | Policy |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|---|---|\n")
	for _, p := range run.Patterns {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			p.Pattern,
			mdRate(p.SuccessRateStrict), mdRate(p.SuccessRateLenient), mdRate(p.ControllabilityGap),
			mdSeconds(p.AvgLatency), mdCount(p.AvgTotalTokens),
			mdRate(p.RobustnessScore), mdRate(p.ToolFailureRecoveryScore),
			mdRate(p.SchemaComplianceRate), mdRate(p.ToolPolicyAdherenceRate))
	}
	b.WriteString("\n")

	if winner := run.Winner(); winner != "" {
		fmt.Fprintf(&b, "**Best strict success rate:** %s\n\n", winner)
	}

	for _, p := range run.Patterns {
		fmt.Fprintf(&b, "## %s\n\n", p.Pattern)
		fmt.Fprintf(&b, "- Trials: %d total, %d base\n", p.TotalTrials, p.BaseTrials)
		fmt.Fprintf(&b, "- Success: strict %s, lenient %s (gap %s)\n",
			mdRate(p.SuccessRateStrict), mdRate(p.SuccessRateLenient), mdRate(p.ControllabilityGap))
		fmt.Fprintf(&b, "- Efficiency: avg latency %s, median %s, avg tokens %s, avg steps %s\n",
			mdSeconds(p.AvgLatency), mdSeconds(p.MedianLatency), mdCount(p.AvgTotalTokens), mdCount(p.AvgSteps))
		fmt.Fprintf(&b, "- Robustness: %s (recovery %s)\n", mdRate(p.RobustnessScore), mdRate(p.ToolFailureRecoveryScore))
		fmt.Fprintf(&b, "- Controllability: schema %s, policy %s\n",
			mdRate(p.SchemaComplianceRate), mdRate(p.ToolPolicyAdherenceRate))

		if len(p.SuccessByCategory) > 0 {
			b.WriteString("- By category: ")
			b.WriteString(formatBreakdown(p.SuccessByCategory))
			b.WriteString("\n")
		}
		if len(p.RobustnessByTask) > 0 {
			degraded := degradedTasks(p.RobustnessByTask)
			if len(degraded) > 0 {
				fmt.Fprintf(&b, "- Degraded under perturbation: %s\n", strings.Join(degraded, ", "))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Winner returns the pattern with the best strict success rate, ties
// broken by lower average latency. Empty when no pattern has a rate.
func (r *Run) Winner() string {
	winner := ""
	var bestRate, bestLatency float64
	for _, p := range r.Patterns {
		if p.SuccessRateStrict == nil {
			continue
		}
		rate := *p.SuccessRateStrict
		latency := 0.0
		if p.AvgLatency != nil {
			latency = *p.AvgLatency
		}
		if winner == "" || rate > bestRate || (rate == bestRate && latency < bestLatency) {
			winner, bestRate, bestLatency = p.Pattern, rate, latency
		}
	}
	return winner
}

func formatBreakdown(m map[string]float64) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s %.0f%%", k, m[k]*100)
	}
	return strings.Join(parts, ", ")
}

func degradedTasks(m map[string]float64) []string {
	var out []string
	for id, score := range m {
		if score < 1 {
			out = append(out, fmt.Sprintf("%s (%.0f%%)", id, score*100))
		}
	}
	sort.Strings(out)
	return out
}

func mdRate(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", *v*100)
}

func mdSeconds(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.3fs", *v)
}

func mdCount(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", *v)
}
