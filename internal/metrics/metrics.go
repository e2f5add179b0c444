// Package metrics turns raw per-trial outcome records into the four
// reported dimensions: success, efficiency, robustness and controllability.
// Aggregation is a pure function of the records; scores are recomputed on
// every call and hold no back-references.
package metrics

import (
	"sort"

	"arena/internal/evaluator"
	"arena/internal/suite"
)

// DimensionScores is the stable aggregate exposed to the reporting layer.
// Every rate whose denominator is zero is nil, never 0.0: "no data" must
// stay distinguishable from "always fails".
type DimensionScores struct {
	Pattern string `json:"pattern"`

	TotalTrials int `json:"totalTrials"`
	BaseTrials  int `json:"baseTrials"`

	// Success dimension.
	SuccessRateStrict   *float64           `json:"successRateStrict"`
	SuccessRateLenient  *float64           `json:"successRateLenient"`
	ControllabilityGap  *float64           `json:"controllabilityGap"`
	SuccessByCategory   map[string]float64 `json:"successByCategory,omitempty"`
	SuccessByComplexity map[string]float64 `json:"successByComplexity,omitempty"`

	// Efficiency dimension, base trials only so the baseline stays
	// comparable across patterns. Latencies are in seconds.
	AvgLatency      *float64 `json:"avgLatency"`
	MedianLatency   *float64 `json:"medianLatency"`
	AvgInputTokens  *float64 `json:"avgInputTokens"`
	AvgOutputTokens *float64 `json:"avgOutputTokens"`
	AvgTotalTokens  *float64 `json:"avgTotalTokens"`
	AvgSteps        *float64 `json:"avgSteps"`
	AvgToolCalls    *float64 `json:"avgToolCalls"`

	// Robustness dimension.
	RobustnessScore          *float64           `json:"robustnessScore"`
	RobustnessByTask         map[string]float64 `json:"robustnessByTask,omitempty"`
	ToolFailureRecoveryScore *float64           `json:"toolFailureRecoveryScore"`

	// Controllability dimension.
	SchemaComplianceRate    *float64 `json:"schemaComplianceRate"`
	ToolPolicyAdherenceRate *float64 `json:"toolPolicyAdherenceRate"`
}

// Aggregate computes dimension scores over a set of outcome records. It
// tolerates short or partial record sets: a cancelled run still aggregates.
func Aggregate(pattern string, records []evaluator.Outcome) DimensionScores {
	scores := DimensionScores{Pattern: pattern, TotalTrials: len(records)}

	var base, perturbed, failureInjected []evaluator.Outcome
	for _, r := range records {
		switch r.Kind {
		case evaluator.TrialBase:
			base = append(base, r)
		case evaluator.TrialPerturbed:
			perturbed = append(perturbed, r)
		case evaluator.TrialFailureInjected:
			failureInjected = append(failureInjected, r)
		}
	}
	scores.BaseTrials = len(base)

	aggregateSuccess(&scores, base)
	aggregateEfficiency(&scores, base)
	aggregateRobustness(&scores, perturbed, failureInjected)
	aggregateControllability(&scores, records, base)
	return scores
}

func aggregateSuccess(scores *DimensionScores, base []evaluator.Outcome) {
	strict, lenient := 0, 0
	for _, r := range base {
		if r.Strict.Passed {
			strict++
		}
		if r.Lenient.Passed {
			lenient++
		}
	}
	scores.SuccessRateStrict = ratio(strict, len(base))
	scores.SuccessRateLenient = ratio(lenient, len(base))
	if scores.SuccessRateStrict != nil && scores.SuccessRateLenient != nil {
		gap := *scores.SuccessRateLenient - *scores.SuccessRateStrict
		scores.ControllabilityGap = &gap
	}

	scores.SuccessByCategory = breakdown(base, func(r evaluator.Outcome) string {
		return string(r.Category)
	})
	scores.SuccessByComplexity = breakdown(base, func(r evaluator.Outcome) string {
		return string(r.Complexity)
	})
}

// breakdown computes strict pass rates over record subsets keyed by the
// given classifier.
func breakdown(records []evaluator.Outcome, key func(evaluator.Outcome) string) map[string]float64 {
	if len(records) == 0 {
		return nil
	}
	total := make(map[string]int)
	passed := make(map[string]int)
	for _, r := range records {
		k := key(r)
		total[k]++
		if r.Strict.Passed {
			passed[k]++
		}
	}
	out := make(map[string]float64, len(total))
	for k, n := range total {
		out[k] = float64(passed[k]) / float64(n)
	}
	return out
}

func aggregateEfficiency(scores *DimensionScores, base []evaluator.Outcome) {
	if len(base) == 0 {
		return
	}
	latencies := make([]float64, 0, len(base))
	var inTok, outTok, totalTok, steps, toolCalls float64
	for _, r := range base {
		latencies = append(latencies, r.Latency.Seconds())
		inTok += float64(r.InputTokens)
		outTok += float64(r.OutputTokens)
		totalTok += float64(r.InputTokens + r.OutputTokens)
		steps += float64(len(r.Trace))
		toolCalls += float64(r.ToolCallCount())
	}
	n := float64(len(base))
	scores.AvgLatency = ptr(mean(latencies))
	scores.MedianLatency = ptr(median(latencies))
	scores.AvgInputTokens = ptr(inTok / n)
	scores.AvgOutputTokens = ptr(outTok / n)
	scores.AvgTotalTokens = ptr(totalTok / n)
	scores.AvgSteps = ptr(steps / n)
	scores.AvgToolCalls = ptr(toolCalls / n)
}

func aggregateRobustness(scores *DimensionScores, perturbed, failureInjected []evaluator.Outcome) {
	if len(perturbed) > 0 {
		total := make(map[string]int)
		passed := make(map[string]int)
		for _, r := range perturbed {
			total[r.TaskID]++
			if r.Strict.Passed {
				passed[r.TaskID]++
			}
		}
		perTask := make(map[string]float64, len(total))
		sum := 0.0
		for id, n := range total {
			score := float64(passed[id]) / float64(n)
			perTask[id] = score
			sum += score
		}
		scores.RobustnessByTask = perTask
		scores.RobustnessScore = ptr(sum / float64(len(total)))
	}

	if len(failureInjected) > 0 {
		recovered := 0
		for _, r := range failureInjected {
			if r.Strict.Passed {
				recovered++
			}
		}
		scores.ToolFailureRecoveryScore = ratio(recovered, len(failureInjected))
	}
}

func aggregateControllability(scores *DimensionScores, records, base []evaluator.Outcome) {
	// Schema compliance counts schema validity on structured base trials,
	// independent of whether the value comparison also passed.
	structuredTotal, structuredValid := 0, 0
	for _, r := range base {
		if r.JudgeMode != suite.ModeStructured {
			continue
		}
		structuredTotal++
		if r.Strict.SchemaValid {
			structuredValid++
		}
	}
	scores.SchemaComplianceRate = ratio(structuredValid, structuredTotal)

	// Tool policy adherence looks at every trial of a whitelist-declaring
	// task that actually invoked tools.
	policyTotal, policyClean := 0, 0
	for _, r := range records {
		if len(r.ToolWhitelist) == 0 {
			continue
		}
		invoked := r.ToolsInvoked()
		if len(invoked) == 0 {
			continue
		}
		policyTotal++
		if onlyWhitelisted(invoked, r.ToolWhitelist) {
			policyClean++
		}
	}
	scores.ToolPolicyAdherenceRate = ratio(policyClean, policyTotal)
}

func onlyWhitelisted(invoked, whitelist []string) bool {
	allowed := make(map[string]struct{}, len(whitelist))
	for _, t := range whitelist {
		allowed[t] = struct{}{}
	}
	for _, t := range invoked {
		if _, ok := allowed[t]; !ok {
			return false
		}
	}
	return true
}

// ratio returns num/den, or nil when the denominator is zero.
func ratio(num, den int) *float64 {
	if den == 0 {
		return nil
	}
	v := float64(num) / float64(den)
	return &v
}

func ptr(v float64) *float64 { return &v }

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
