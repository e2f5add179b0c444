package pattern

import (
	"context"

	"arena/internal/evaluator"
	"arena/internal/llm"
	"arena/internal/logging"
	"arena/internal/token"
	"arena/internal/tools"
)

// Pipeline stages the work as plan → execute → format. The plan stage
// decides the rule up front; execute runs it with one retry; format emits
// the final answer unchanged in evaluation runs.
type Pipeline struct {
	tools  *tools.Registry
	llm    llm.Client
	logger logging.Logger
}

func NewPipeline(deps Deps) *Pipeline {
	return &Pipeline{tools: deps.registry(), llm: deps.LLM, logger: deps.logger()}
}

func (p *Pipeline) Name() string { return "pipeline" }

func (p *Pipeline) Run(ctx context.Context, req evaluator.Request) (*evaluator.Response, error) {
	if p.llm != nil && !req.EvaluationMode {
		return completeWithLLM(ctx, p.llm,
			"Plan the steps first, execute them in order, then present only the final result.", req.Prompt)
	}

	s := newSolver(p.tools.Session(req.Failure), 1)
	kind := classify(req.Prompt)
	s.steps = append(s.steps, evaluator.Step{
		Name:        "plan",
		InputTokens: token.EstimateFast(req.Prompt),
	})
	out, err := s.solve(ctx, kind, req.Prompt)
	if err != nil {
		p.logger.Debug("pipeline: execution failed: %v", err)
		out = "unable to complete the task: " + err.Error()
	}
	s.note("execute", out)
	s.note("format", out)
	return &evaluator.Response{Output: out, Trace: s.steps}, nil
}
