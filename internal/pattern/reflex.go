package pattern

import (
	"context"

	"arena/internal/evaluator"
	"arena/internal/llm"
	"arena/internal/logging"
	"arena/internal/token"
	"arena/internal/tools"
)

// Reflex answers in a single rule-matching pass: classify the prompt, run
// the matched rule, emit the result. No reflection and no retries, so an
// injected tool failure is fatal for the trial.
type Reflex struct {
	tools  *tools.Registry
	llm    llm.Client
	logger logging.Logger
}

func NewReflex(deps Deps) *Reflex {
	return &Reflex{tools: deps.registry(), llm: deps.LLM, logger: deps.logger()}
}

func (p *Reflex) Name() string { return "reflex" }

func (p *Reflex) Run(ctx context.Context, req evaluator.Request) (*evaluator.Response, error) {
	if p.llm != nil && !req.EvaluationMode {
		return completeWithLLM(ctx, p.llm, "Answer directly and concisely.", req.Prompt)
	}

	s := newSolver(p.tools.Session(req.Failure), 0)
	kind := classify(req.Prompt)
	s.steps = append(s.steps, evaluator.Step{
		Name:        "rule_match",
		InputTokens: token.EstimateFast(req.Prompt),
	})
	out, err := s.solve(ctx, kind, req.Prompt)
	if err != nil {
		p.logger.Debug("reflex: rule failed: %v", err)
		out = "unable to complete the task: " + err.Error()
	}
	s.note("respond", out)
	return &evaluator.Response{Output: out, Trace: s.steps}, nil
}
