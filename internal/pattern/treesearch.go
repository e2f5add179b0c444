package pattern

import (
	"context"
	"fmt"
	"strings"

	"arena/internal/evaluator"
	"arena/internal/llm"
	"arena/internal/logging"
	"arena/internal/token"
	"arena/internal/tools"
)

// TreeSearch explores several candidate readings of the prompt, scores
// each branch's result and keeps the best one. The extra branches cost
// steps and tokens; the payoff is resilience to ambiguous phrasings.
type TreeSearch struct {
	tools  *tools.Registry
	llm    llm.Client
	logger logging.Logger
}

func NewTreeSearch(deps Deps) *TreeSearch {
	return &TreeSearch{tools: deps.registry(), llm: deps.LLM, logger: deps.logger()}
}

func (p *TreeSearch) Name() string { return "treesearch" }

func (p *TreeSearch) Run(ctx context.Context, req evaluator.Request) (*evaluator.Response, error) {
	if p.llm != nil && !req.EvaluationMode {
		return completeWithLLM(ctx, p.llm,
			"Consider multiple solution approaches, evaluate them, and answer with the best one.", req.Prompt)
	}

	s := newSolver(p.tools.Session(req.Failure), 1)
	s.steps = append(s.steps, evaluator.Step{
		Name:        "generate_thoughts",
		InputTokens: token.EstimateFast(req.Prompt),
	})

	best := ""
	bestScore := -1
	for i, kind := range candidateProblems(req.Prompt) {
		out, err := s.solve(ctx, kind, req.Prompt)
		if err != nil {
			s.note(fmt.Sprintf("branch_%d", i+1), err.Error())
			continue
		}
		s.note(fmt.Sprintf("branch_%d", i+1), out)
		if score := scoreCandidate(req.Prompt, out); score > bestScore {
			best, bestScore = out, score
		}
	}
	if bestScore < 0 {
		p.logger.Debug("treesearch: all branches failed")
		best = "unable to complete the task: no viable solution branch"
	}
	s.note("synthesize", best)
	return &evaluator.Response{Output: best, Trace: s.steps}, nil
}

// candidateProblems returns the primary classification plus secondary
// readings worth a branch.
func candidateProblems(prompt string) []problem {
	primary := classify(prompt)
	candidates := []problem{primary}
	if primary != problemArithmetic && multiplyRe.MatchString(prompt) {
		candidates = append(candidates, problemArithmetic)
	}
	if primary != problemDate && yearRe.MatchString(prompt) && primary != problemScheduling && primary != problemComprehension {
		candidates = append(candidates, problemDate)
	}
	return candidates
}

// scoreCandidate prefers results whose shape matches what the prompt
// asked for.
func scoreCandidate(prompt, out string) int {
	score := 0
	if strings.TrimSpace(out) != "" {
		score++
	}
	wantsJSON := strings.Contains(strings.ToLower(prompt), "json")
	isJSON := strings.HasPrefix(strings.TrimSpace(out), "{") || strings.HasPrefix(strings.TrimSpace(out), "[")
	if wantsJSON == isJSON {
		score += 2
	}
	return score
}
