// Package pattern implements the agent patterns under evaluation. Each
// pattern wraps the same deterministic task solver in a different
// orchestration shape: reflex answers in a single rule-matching pass,
// react runs a thought/action loop with retries, pipeline stages
// plan/execute/format, treesearch explores scored candidate branches.
// The differences show up in the trace, the token spend and the
// tool-failure recovery behavior, which is what the benchmark measures.
package pattern

import (
	"context"
	"fmt"
	"sort"

	"arena/internal/evaluator"
	"arena/internal/llm"
	"arena/internal/logging"
	"arena/internal/token"
	"arena/internal/tools"
)

// Deps carries the shared collaborators a pattern needs. LLM may be nil;
// patterns then answer with the builtin solver regardless of mode.
type Deps struct {
	Tools  *tools.Registry
	LLM    llm.Client
	Logger logging.Logger
}

func (d Deps) logger() logging.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return logging.Nop()
}

func (d Deps) registry() *tools.Registry {
	if d.Tools != nil {
		return d.Tools
	}
	return tools.NewRegistry()
}

// constructors maps pattern names to factories. Names are part of the CLI
// surface.
var constructors = map[string]func(Deps) evaluator.Pattern{
	"reflex":     func(d Deps) evaluator.Pattern { return NewReflex(d) },
	"react":      func(d Deps) evaluator.Pattern { return NewReact(d) },
	"pipeline":   func(d Deps) evaluator.Pattern { return NewPipeline(d) },
	"treesearch": func(d Deps) evaluator.Pattern { return NewTreeSearch(d) },
}

// Names returns the registered pattern names, sorted.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the named pattern.
func New(name string, deps Deps) (evaluator.Pattern, error) {
	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown pattern %q (have %v)", name, Names())
	}
	return ctor(deps), nil
}

// All builds every registered pattern in name order.
func All(deps Deps) []evaluator.Pattern {
	patterns := make([]evaluator.Pattern, 0, len(constructors))
	for _, name := range Names() {
		patterns = append(patterns, constructors[name](deps))
	}
	return patterns
}

// completeWithLLM delegates a prompt to the live model when one is
// configured and the caller is not in evaluation mode.
func completeWithLLM(ctx context.Context, client llm.Client, system, prompt string) (*evaluator.Response, error) {
	completion, err := client.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: prompt},
	})
	if err != nil {
		return nil, err
	}
	in, out := completion.InputTokens, completion.OutputTokens
	if in == 0 {
		in = token.EstimateFast(prompt)
	}
	if out == 0 {
		out = token.EstimateFast(completion.Content)
	}
	return &evaluator.Response{
		Output: completion.Content,
		Trace: []evaluator.Step{
			{Name: "llm", InputTokens: in, OutputTokens: out},
		},
	}, nil
}
