// Package robustness produces the adverse conditions used for robustness
// trials: prompt perturbations and simulated tool failures.
package robustness

import (
	"math/rand"
	"sync"
	"time"

	"arena/internal/suite"
)

// ToolFailure directs the pattern under test to treat calls to the listed
// tools as failing. The evaluation core never executes tools itself; the
// collaborator is expected to surface the failure and recover or degrade
// gracefully.
type ToolFailure struct {
	Tools       []string `json:"tools"`
	Probability float64  `json:"probability"`
}

// Covers reports whether the directive applies to the named tool.
func (f *ToolFailure) Covers(name string) bool {
	if f == nil {
		return false
	}
	for _, t := range f.Tools {
		if t == name {
			return true
		}
	}
	return false
}

// Injector owns the run-local randomness for failure injection. No global
// state: reproducible suites pass a deterministic seed, everything else gets
// a time-based one.
type Injector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewInjector builds an injector. Seed 0 means non-deterministic.
func NewInjector(seed int64) *Injector {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Injector{rng: rand.New(rand.NewSource(seed))}
}

// Draw performs one Bernoulli trial at probability p. Draws are independent
// per invocation.
func (i *Injector) Draw(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.rng.Float64() < p
}

// Directive decides whether the failure-injected trial for a task runs with
// an armed failure directive. Tasks without declared tools or with zero
// probability never produce a directive.
func (i *Injector) Directive(task suite.Task) *ToolFailure {
	if !task.FailureEligible() {
		return nil
	}
	if !i.Draw(task.ToolFailureProbability) {
		return nil
	}
	tools := make([]string, len(task.DeclaredTools))
	copy(tools, task.DeclaredTools)
	return &ToolFailure{Tools: tools, Probability: task.ToolFailureProbability}
}

// Perturbations returns the task's alternate phrasings. Enumeration is
// exhaustive: every declared perturbation runs exactly once per pattern.
func Perturbations(task suite.Task) []string {
	out := make([]string, len(task.Perturbations))
	copy(out, task.Perturbations)
	return out
}
