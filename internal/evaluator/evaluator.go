// Package evaluator orchestrates running a pattern over a task catalog,
// producing one outcome record per trial: the base run, every perturbation,
// and a failure-injected repeat for tool-declaring tasks.
package evaluator

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"arena/internal/judge"
	"arena/internal/logging"
	"arena/internal/robustness"
	"arena/internal/suite"
	"arena/internal/token"
)

const defaultTimeout = 120 * time.Second

// Options is the explicit run configuration. Nothing is read from ambient
// state so runs stay reproducible and testable in isolation.
type Options struct {
	// IncludeRobustness enables perturbation and failure-injection trials.
	IncludeRobustness bool

	// Concurrency bounds parallel trials for one pattern. Values below 2
	// run sequentially. Trials are independent units of work, so no
	// locking is needed beyond result slot assignment.
	Concurrency int

	// Timeout is the per-invocation ceiling. A trial that exceeds it is
	// recorded as a timeout outcome, never left hanging.
	Timeout time.Duration

	// Seed makes failure injection deterministic; zero draws a fresh seed.
	Seed int64

	Logger logging.Logger
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return defaultTimeout
	}
	return o.Timeout
}

func (o Options) concurrency() int {
	if o.Concurrency < 1 {
		return 1
	}
	return o.Concurrency
}

// Evaluator runs patterns over catalogs. One evaluator may serve multiple
// runs; per-run state (injector seed, result set) is local to Evaluate.
type Evaluator struct {
	judge  *judge.Judge
	logger logging.Logger
	tracer trace.Tracer
}

// New builds an evaluator.
func New(logger logging.Logger) *Evaluator {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Evaluator{
		judge:  judge.New(),
		logger: logger,
		tracer: otel.Tracer("arena/evaluator"),
	}
}

// trial is one planned invocation.
type trial struct {
	task    suite.Task
	kind    TrialKind
	prompt  string
	failure *robustness.ToolFailure
}

// Evaluate runs the pattern over the catalog in order and returns one
// outcome per attempted trial. Trial-local failures never abort the batch;
// only an invalid catalog (checked at construction) or a cancelled context
// ends the run early. A cancelled run returns the outcomes completed so
// far, which remain valid aggregator input.
func (e *Evaluator) Evaluate(ctx context.Context, pattern Pattern, catalog *suite.Catalog, opts Options) ([]Outcome, error) {
	if pattern == nil {
		return nil, fmt.Errorf("pattern is required")
	}
	if catalog == nil || catalog.Len() == 0 {
		return nil, fmt.Errorf("catalog is required")
	}

	injector := robustness.NewInjector(opts.Seed)
	trials := planTrials(catalog, opts, injector)

	e.logger.Info("evaluating pattern %s: %d tasks, %d trials, concurrency %d",
		pattern.Name(), catalog.Len(), len(trials), opts.concurrency())

	results := make([]Outcome, len(trials))
	done := make([]bool, len(trials))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.concurrency())

	for i, t := range trials {
		// Stop scheduling as soon as the run context is cancelled;
		// in-flight trials finish or hit the invocation timeout.
		if gctx.Err() != nil {
			break
		}
		i, t := i, t
		g.Go(func() error {
			results[i] = e.runTrial(gctx, pattern, t, opts)
			done[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Outcome, 0, len(results))
	for i := range results {
		if done[i] {
			out = append(out, results[i])
		}
	}
	return out, ctx.Err()
}

// planTrials expands the catalog into the full trial list: base always,
// every perturbation when robustness is on, and one failure-injected trial
// per failure-eligible task. The Bernoulli draw only decides whether that
// trial's directive is armed; the trial itself always runs so denominators
// stay fixed.
func planTrials(catalog *suite.Catalog, opts Options, injector *robustness.Injector) []trial {
	var trials []trial
	for _, task := range catalog.Tasks() {
		trials = append(trials, trial{task: task, kind: TrialBase, prompt: task.Prompt})
		if !opts.IncludeRobustness {
			continue
		}
		for _, prompt := range robustness.Perturbations(task) {
			trials = append(trials, trial{task: task, kind: TrialPerturbed, prompt: prompt})
		}
		if task.FailureEligible() {
			trials = append(trials, trial{
				task:    task,
				kind:    TrialFailureInjected,
				prompt:  task.Prompt,
				failure: injector.Directive(task),
			})
		}
	}
	return trials
}

// runTrial executes a single trial and always produces an outcome record.
func (e *Evaluator) runTrial(ctx context.Context, pattern Pattern, t trial, opts Options) Outcome {
	ctx, span := e.tracer.Start(ctx, "trial",
		trace.WithAttributes(
			attribute.String("task.id", t.task.ID),
			attribute.String("trial.kind", string(t.kind)),
			attribute.String("pattern", pattern.Name()),
		))
	defer span.End()

	outcome := Outcome{
		TaskID:        t.task.ID,
		Pattern:       pattern.Name(),
		Kind:          t.kind,
		Category:      t.task.Category,
		Complexity:    t.task.Complexity,
		JudgeMode:     t.task.Judge.Mode,
		Prompt:        t.prompt,
		ToolWhitelist: t.task.ToolWhitelist,
	}

	start := time.Now()
	resp, reason := e.invoke(ctx, pattern, Request{
		Prompt:         t.prompt,
		EvaluationMode: true,
		Failure:        t.failure,
	}, opts.timeout())
	outcome.Latency = time.Since(start)

	if reason != "" {
		outcome.Err = reason
		outcome.Strict = judge.Verdict{Reason: reason}
		outcome.Lenient = judge.Verdict{Reason: reason}
		e.logger.Warn("task %s (%s): %s after %s", t.task.ID, t.kind, reason, outcome.Latency)
		return outcome
	}

	outcome.Output = resp.Output
	outcome.Trace = resp.Trace
	outcome.InputTokens, outcome.OutputTokens = traceTokens(resp, t.prompt)

	outcome.Strict = e.judge.Strict(t.task.Judge, resp.Output, t.task.Expected)
	outcome.Lenient = e.judge.Lenient(t.task.Judge, resp.Output, t.task.Expected, outcome.Strict)

	e.logger.Debug("task %s (%s): strict=%t lenient=%t in %s",
		t.task.ID, t.kind, outcome.Strict.Passed, outcome.Lenient.Passed, outcome.Latency)
	return outcome
}

// invoke calls the pattern with the per-invocation timeout, isolating
// collaborator errors and panics into reason codes.
func (e *Evaluator) invoke(ctx context.Context, pattern Pattern, req Request, timeout time.Duration) (*Response, string) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		resp *Response
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{err: fmt.Errorf("pattern panic: %v", r)}
			}
		}()
		resp, err := pattern.Run(ctx, req)
		ch <- result{resp: resp, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ReasonTimeout
	case r := <-ch:
		if r.err != nil {
			e.logger.Warn("pattern %s: %v", pattern.Name(), r.err)
			return nil, ReasonInvocationError
		}
		if r.resp == nil {
			return nil, ReasonInvocationError
		}
		return r.resp, ""
	}
}

// traceTokens sums the trace's token accounting, estimating from text when
// the collaborator reports nothing.
func traceTokens(resp *Response, prompt string) (in, out int) {
	for _, s := range resp.Trace {
		in += s.InputTokens
		out += s.OutputTokens
	}
	if in == 0 {
		in = token.Count(prompt)
	}
	if out == 0 {
		out = token.Count(resp.Output)
	}
	return in, out
}

// EvaluateAll runs each pattern in sequence over the same catalog. Patterns
// are never run concurrently with each other so latency and rate-limit
// behavior stays comparable across them.
func (e *Evaluator) EvaluateAll(ctx context.Context, patterns []Pattern, catalog *suite.Catalog, opts Options) (map[string][]Outcome, error) {
	results := make(map[string][]Outcome, len(patterns))
	for _, p := range patterns {
		outcomes, err := e.Evaluate(ctx, p, catalog, opts)
		if len(outcomes) > 0 {
			results[p.Name()] = outcomes
		}
		if err != nil {
			return results, err
		}
	}
	return results, nil
}
