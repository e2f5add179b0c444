package suite

import (
	"fmt"
	"strings"
)

// Category stratifies benchmark tasks by the capability they probe.
type Category string

const (
	CategoryBaseline  Category = "baseline"
	CategoryReasoning Category = "reasoning"
	CategoryTool      Category = "tool"
	CategoryPlanning  Category = "planning"
)

// Complexity is an ordinal tag used only for reporting breakdowns.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityMedium  Complexity = "medium"
	ComplexityComplex Complexity = "complex"
)

// JudgeMode selects how a produced answer is verified.
type JudgeMode string

const (
	ModeExact      JudgeMode = "exact"
	ModeStructured JudgeMode = "structured"
	ModePattern    JudgeMode = "pattern"
)

// JudgeSpec carries the verification mode and its mode-specific parameters.
type JudgeSpec struct {
	Mode JudgeMode `json:"mode" yaml:"mode"`

	// Pattern is the regular expression for ModePattern. Matching is
	// case-insensitive unless the pattern sets its own inline flags.
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"`

	// Schema is a JSON Schema document applied before value comparison in
	// ModeStructured.
	Schema map[string]any `json:"schema,omitempty" yaml:"schema,omitempty"`

	// IgnoreFields lists object fields excluded from structured comparison,
	// e.g. a route list whose length is checked but whose contents are not.
	IgnoreFields []string `json:"ignore_fields,omitempty" yaml:"ignore_fields,omitempty"`
}

// Task is a single benchmark task definition. Tasks are immutable once the
// catalog is built; all evaluation state lives in outcome records.
type Task struct {
	ID         string     `json:"id" yaml:"id"`
	Category   Category   `json:"category" yaml:"category"`
	Complexity Complexity `json:"complexity" yaml:"complexity"`
	Prompt     string     `json:"prompt" yaml:"prompt"`

	// Expected is the ground truth: a scalar, a structured object, or nil
	// when verification is pattern-based.
	Expected any `json:"expected,omitempty" yaml:"expected,omitempty"`

	Judge JudgeSpec `json:"judge" yaml:"judge"`

	// DeclaredTools are the tools the task expects the pattern to use.
	DeclaredTools []string `json:"declared_tools,omitempty" yaml:"declared_tools,omitempty"`

	// ToolWhitelist is the policy of tools the pattern is permitted to use.
	ToolWhitelist []string `json:"tool_whitelist,omitempty" yaml:"tool_whitelist,omitempty"`

	// Perturbations are semantically equivalent rephrasings of Prompt used
	// for robustness probing. Each one is run exactly once per pattern.
	Perturbations []string `json:"perturbations,omitempty" yaml:"perturbations,omitempty"`

	// ToolFailureProbability is the chance in [0,1] that a declared tool
	// call is simulated as failing during a robustness trial.
	ToolFailureProbability float64 `json:"tool_failure_probability,omitempty" yaml:"tool_failure_probability,omitempty"`
}

// Validate reports the first structural problem with the task definition.
func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("task id is required")
	}
	if strings.TrimSpace(t.Prompt) == "" {
		return fmt.Errorf("task %s: prompt is required", t.ID)
	}
	switch t.Category {
	case CategoryBaseline, CategoryReasoning, CategoryTool, CategoryPlanning:
	case "":
		return fmt.Errorf("task %s: category is required", t.ID)
	default:
		// The category enumeration is open to extension; anything non-empty
		// is accepted so external catalogs can add their own strata.
	}
	switch t.Judge.Mode {
	case ModeExact, ModeStructured:
		// Only pattern verification can run against a nil ground truth;
		// comparison modes need a value to compare to.
		if t.Expected == nil {
			return fmt.Errorf("task %s: %s mode requires an expected value", t.ID, t.Judge.Mode)
		}
	case ModePattern:
		if strings.TrimSpace(t.Judge.Pattern) == "" {
			return fmt.Errorf("task %s: pattern mode requires a pattern", t.ID)
		}
	case "":
		return fmt.Errorf("task %s: judge mode is required", t.ID)
	default:
		return fmt.Errorf("task %s: unknown judge mode %q", t.ID, t.Judge.Mode)
	}
	if t.ToolFailureProbability < 0 || t.ToolFailureProbability > 1 {
		return fmt.Errorf("task %s: tool failure probability must be in [0,1]", t.ID)
	}
	if t.ToolFailureProbability > 0 && len(t.DeclaredTools) == 0 {
		return fmt.Errorf("task %s: tool failure probability set without declared tools", t.ID)
	}
	return nil
}

// FailureEligible reports whether a failure-injected trial applies to the task.
func (t Task) FailureEligible() bool {
	return t.ToolFailureProbability > 0 && len(t.DeclaredTools) > 0
}

// HasWhitelist reports whether the task declares a tool policy.
func (t Task) HasWhitelist() bool { return len(t.ToolWhitelist) > 0 }
