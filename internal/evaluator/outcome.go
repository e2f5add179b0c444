package evaluator

import (
	"time"

	"arena/internal/judge"
	"arena/internal/suite"
)

// TrialKind distinguishes the three trial variants a task may produce.
type TrialKind string

const (
	TrialBase            TrialKind = "base"
	TrialPerturbed       TrialKind = "perturbed"
	TrialFailureInjected TrialKind = "failure_injected"
)

// Invocation-level failure reasons. Judge-level reasons live in the verdicts.
const (
	ReasonTimeout         = "timeout"
	ReasonInvocationError = "invocation_error"
)

// Outcome is the record of one executed trial. Exactly one outcome exists
// per attempted trial regardless of how it failed, so aggregate denominators
// stay correct. Outcomes are immutable once recorded and owned by the
// in-memory result set of the run; persistence is a reporting concern.
type Outcome struct {
	TaskID     string           `json:"task_id"`
	Pattern    string           `json:"pattern"`
	Kind       TrialKind        `json:"kind"`
	Category   suite.Category   `json:"category"`
	Complexity suite.Complexity `json:"complexity"`
	JudgeMode  suite.JudgeMode  `json:"judge_mode"`

	// Prompt is the exact text sent for this trial (base or perturbation).
	Prompt string `json:"prompt"`

	Output string `json:"output,omitempty"`
	Trace  []Step `json:"trace,omitempty"`

	Strict  judge.Verdict `json:"strict"`
	Lenient judge.Verdict `json:"lenient"`

	Latency time.Duration `json:"latency"`

	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`

	// Err holds the invocation-level failure reason (timeout or
	// invocation_error); empty when the pattern returned normally.
	Err string `json:"error,omitempty"`

	// ToolWhitelist is copied from the task so policy adherence can be
	// computed without a back-reference into the catalog.
	ToolWhitelist []string `json:"tool_whitelist,omitempty"`
}

// ToolsInvoked returns the distinct tool names present in the trace, in
// first-use order.
func (o Outcome) ToolsInvoked() []string {
	var out []string
	seen := make(map[string]struct{})
	for _, s := range o.Trace {
		if s.Tool == "" {
			continue
		}
		if _, dup := seen[s.Tool]; dup {
			continue
		}
		seen[s.Tool] = struct{}{}
		out = append(out, s.Tool)
	}
	return out
}

// ToolCallCount returns the number of trace steps that invoked a tool.
func (o Outcome) ToolCallCount() int {
	n := 0
	for _, s := range o.Trace {
		if s.Tool != "" {
			n++
		}
	}
	return n
}
