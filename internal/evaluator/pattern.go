package evaluator

import (
	"context"
	"time"

	"arena/internal/robustness"
)

// Request is one invocation of a pattern under test.
type Request struct {
	// Prompt is the instruction text: the task prompt or one of its
	// perturbations.
	Prompt string

	// EvaluationMode tells the pattern to suppress decorative wrapping of
	// its final answer. Always true for benchmark trials.
	EvaluationMode bool

	// Failure, when non-nil, directs the pattern's tool layer to observe
	// synthetic failures for the listed tools.
	Failure *robustness.ToolFailure
}

// Step describes one entry of a pattern's execution trace.
type Step struct {
	Name         string        `json:"name"`
	Tool         string        `json:"tool,omitempty"`
	Latency      time.Duration `json:"latency"`
	InputTokens  int           `json:"input_tokens"`
	OutputTokens int           `json:"output_tokens"`
}

// Response is what a pattern returns from one invocation.
type Response struct {
	Output string `json:"output"`
	Trace  []Step `json:"trace,omitempty"`
}

// Pattern is the opaque capability the engine evaluates: a strategy for
// decomposing and executing a task. The engine never inspects how the
// answer is produced. Implementations must return a typed error, not empty
// output, when they cannot complete.
type Pattern interface {
	Name() string
	Run(ctx context.Context, req Request) (*Response, error)
}
