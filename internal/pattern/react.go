package pattern

import (
	"context"

	"arena/internal/evaluator"
	"arena/internal/llm"
	"arena/internal/logging"
	"arena/internal/token"
	"arena/internal/tools"
)

// React runs a thought → action → observation loop. Tool calls get one
// retry, so a single injected failure is recovered on the second attempt.
type React struct {
	tools  *tools.Registry
	llm    llm.Client
	logger logging.Logger
}

func NewReact(deps Deps) *React {
	return &React{tools: deps.registry(), llm: deps.LLM, logger: deps.logger()}
}

func (p *React) Name() string { return "react" }

func (p *React) Run(ctx context.Context, req evaluator.Request) (*evaluator.Response, error) {
	if p.llm != nil && !req.EvaluationMode {
		return completeWithLLM(ctx, p.llm,
			"Reason step by step, using tools when needed, then answer concisely.", req.Prompt)
	}

	s := newSolver(p.tools.Session(req.Failure), 1)
	s.steps = append(s.steps, evaluator.Step{
		Name:        "thought",
		InputTokens: token.EstimateFast(req.Prompt),
	})
	kind := classify(req.Prompt)
	out, err := s.solve(ctx, kind, req.Prompt)
	if err != nil {
		p.logger.Debug("react: action failed after retry: %v", err)
		out = "unable to complete the task: " + err.Error()
	}
	s.note("observe", out)
	s.note("answer", out)
	return &evaluator.Response{Output: out, Trace: s.steps}, nil
}
