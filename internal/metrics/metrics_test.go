package metrics

import (
	"testing"
	"time"

	"arena/internal/evaluator"
	"arena/internal/judge"
	"arena/internal/suite"
)

func baseOutcome(taskID string, strict, lenient bool) evaluator.Outcome {
	return evaluator.Outcome{
		TaskID:     taskID,
		Pattern:    "react",
		Kind:       evaluator.TrialBase,
		Category:   suite.CategoryBaseline,
		Complexity: suite.ComplexitySimple,
		JudgeMode:  suite.ModeExact,
		Strict:     judge.Verdict{Passed: strict},
		Lenient:    judge.Verdict{Passed: lenient},
		Latency:    100 * time.Millisecond,
	}
}

func TestEmptyRecordsYieldNullRates(t *testing.T) {
	scores := Aggregate("react", nil)
	if scores.SuccessRateStrict != nil || scores.SuccessRateLenient != nil {
		t.Fatalf("zero-denominator rates must be nil: %+v", scores)
	}
	if scores.ControllabilityGap != nil {
		t.Fatalf("gap must be nil without base trials")
	}
	if scores.RobustnessScore != nil || scores.ToolFailureRecoveryScore != nil {
		t.Fatalf("robustness scores must be nil without robustness trials")
	}
	if scores.SchemaComplianceRate != nil || scores.ToolPolicyAdherenceRate != nil {
		t.Fatalf("controllability rates must be nil without applicable trials")
	}
	if scores.AvgLatency != nil {
		t.Fatalf("latency must be nil without base trials")
	}
}

func TestSuccessAndGap(t *testing.T) {
	records := []evaluator.Outcome{
		baseOutcome("A1", true, true),
		baseOutcome("A2", false, true),
		baseOutcome("A3", false, false),
		baseOutcome("A4", true, true),
	}
	scores := Aggregate("react", records)

	if got := *scores.SuccessRateStrict; got != 0.5 {
		t.Fatalf("strict = %v, want 0.5", got)
	}
	if got := *scores.SuccessRateLenient; got != 0.75 {
		t.Fatalf("lenient = %v, want 0.75", got)
	}
	if got := *scores.ControllabilityGap; got != 0.25 {
		t.Fatalf("gap = %v, want 0.25", got)
	}
	if *scores.ControllabilityGap < 0 {
		t.Fatalf("gap must never be negative")
	}
}

func TestEfficiencyOverBaseTrialsOnly(t *testing.T) {
	slow := baseOutcome("A1", true, true)
	slow.Kind = evaluator.TrialPerturbed
	slow.Latency = 10 * time.Second

	records := []evaluator.Outcome{
		baseOutcome("A1", true, true),
		baseOutcome("A2", true, true),
		slow,
	}
	scores := Aggregate("react", records)
	if got := *scores.AvgLatency; got != 0.1 {
		t.Fatalf("avg latency = %v, want 0.1 (perturbed trials excluded)", got)
	}
	if scores.BaseTrials != 2 {
		t.Fatalf("base trials = %d, want 2", scores.BaseTrials)
	}
}

func TestMedianLatency(t *testing.T) {
	records := []evaluator.Outcome{
		baseOutcome("A1", true, true),
		baseOutcome("A2", true, true),
		baseOutcome("A3", true, true),
	}
	records[0].Latency = 100 * time.Millisecond
	records[1].Latency = 200 * time.Millisecond
	records[2].Latency = 900 * time.Millisecond

	scores := Aggregate("react", records)
	if got := *scores.MedianLatency; got != 0.2 {
		t.Fatalf("median = %v, want 0.2", got)
	}
}

func TestRobustnessPerTask(t *testing.T) {
	perturbed := func(taskID string, passed bool) evaluator.Outcome {
		o := baseOutcome(taskID, passed, passed)
		o.Kind = evaluator.TrialPerturbed
		return o
	}
	records := []evaluator.Outcome{
		perturbed("A1", true),
		perturbed("A1", false),
		perturbed("A2", true),
		perturbed("A2", true),
	}
	scores := Aggregate("react", records)

	if got := scores.RobustnessByTask["A1"]; got != 0.5 {
		t.Fatalf("A1 robustness = %v, want 0.5", got)
	}
	if got := scores.RobustnessByTask["A2"]; got != 1.0 {
		t.Fatalf("A2 robustness = %v, want 1.0", got)
	}
	if got := *scores.RobustnessScore; got != 0.75 {
		t.Fatalf("robustness = %v, want 0.75", got)
	}
}

func TestToolFailureRecovery(t *testing.T) {
	injected := func(passed bool) evaluator.Outcome {
		o := baseOutcome("C1", passed, passed)
		o.Kind = evaluator.TrialFailureInjected
		return o
	}
	scores := Aggregate("react", []evaluator.Outcome{injected(true), injected(false)})
	if got := *scores.ToolFailureRecoveryScore; got != 0.5 {
		t.Fatalf("recovery = %v, want 0.5", got)
	}
}

func TestSchemaComplianceCountsValidityBit(t *testing.T) {
	structured := func(taskID string, schemaValid, passed bool) evaluator.Outcome {
		o := baseOutcome(taskID, passed, passed)
		o.JudgeMode = suite.ModeStructured
		o.Strict.SchemaValid = schemaValid
		return o
	}
	records := []evaluator.Outcome{
		structured("C1", true, false), // value mismatch but valid JSON shape
		structured("C2", false, false),
		baseOutcome("A1", true, true), // exact-mode trials are excluded
	}
	scores := Aggregate("react", records)
	if got := *scores.SchemaComplianceRate; got != 0.5 {
		t.Fatalf("schema compliance = %v, want 0.5", got)
	}
}

func TestToolPolicyAdherence(t *testing.T) {
	withTools := func(taskID string, whitelist []string, invoked ...string) evaluator.Outcome {
		o := baseOutcome(taskID, true, true)
		o.ToolWhitelist = whitelist
		for _, tool := range invoked {
			o.Trace = append(o.Trace, evaluator.Step{Name: "tool:" + tool, Tool: tool})
		}
		return o
	}
	records := []evaluator.Outcome{
		withTools("C1", []string{"weather_api"}, "weather_api"),
		withTools("C2", []string{"fx_api"}, "fx_api", "calculator"),
		withTools("C3", []string{"wiki_search"}), // no invocation: excluded
		withTools("A1", nil, "calculator"),       // no whitelist: excluded
	}
	scores := Aggregate("react", records)
	if got := *scores.ToolPolicyAdherenceRate; got != 0.5 {
		t.Fatalf("policy adherence = %v, want 0.5", got)
	}
}

func TestBreakdownsByCategoryAndComplexity(t *testing.T) {
	reasoning := baseOutcome("B1", false, false)
	reasoning.Category = suite.CategoryReasoning
	reasoning.Complexity = suite.ComplexityMedium

	scores := Aggregate("react", []evaluator.Outcome{
		baseOutcome("A1", true, true),
		reasoning,
	})
	if got := scores.SuccessByCategory["baseline"]; got != 1.0 {
		t.Fatalf("baseline = %v, want 1.0", got)
	}
	if got := scores.SuccessByCategory["reasoning"]; got != 0.0 {
		t.Fatalf("reasoning = %v, want 0.0", got)
	}
	if got := scores.SuccessByComplexity["medium"]; got != 0.0 {
		t.Fatalf("medium = %v, want 0.0", got)
	}
}
