package evaluator_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"arena/internal/evaluator"
	"arena/internal/suite"
)

type stubPattern struct {
	name string
	run  func(ctx context.Context, req evaluator.Request) (*evaluator.Response, error)
}

func (s *stubPattern) Name() string { return s.name }

func (s *stubPattern) Run(ctx context.Context, req evaluator.Request) (*evaluator.Response, error) {
	return s.run(ctx, req)
}

func echoPattern() *stubPattern {
	return &stubPattern{
		name: "echo",
		run: func(ctx context.Context, req evaluator.Request) (*evaluator.Response, error) {
			return &evaluator.Response{Output: "408"}, nil
		},
	}
}

func singleTaskCatalog(t *testing.T, task suite.Task) *suite.Catalog {
	t.Helper()
	catalog, err := suite.NewCatalog("test", []suite.Task{task})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return catalog
}

func arithmeticTask() suite.Task {
	return suite.Task{
		ID:         "A1",
		Category:   suite.CategoryBaseline,
		Complexity: suite.ComplexitySimple,
		Prompt:     "Compute 17 * 24. Output the number only.",
		Expected:   "408",
		Judge:      suite.JudgeSpec{Mode: suite.ModeExact},
		Perturbations: []string{
			"Compute 17×24.",
			"17 * 24 = ?",
		},
	}
}

func TestRecordCountWithoutRobustness(t *testing.T) {
	eval := evaluator.New(nil)
	catalog := singleTaskCatalog(t, arithmeticTask())

	outcomes, err := eval.Evaluate(context.Background(), echoPattern(), catalog, evaluator.Options{})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(outcomes) != 1 {
		t.Fatalf("outcomes = %d, want 1 (base only)", len(outcomes))
	}
	if outcomes[0].Kind != evaluator.TrialBase {
		t.Fatalf("kind = %q, want base", outcomes[0].Kind)
	}
}

func TestRecordCountWithRobustness(t *testing.T) {
	eval := evaluator.New(nil)
	task := arithmeticTask()
	task.DeclaredTools = []string{"calculator"}
	task.ToolFailureProbability = 0.5
	catalog := singleTaskCatalog(t, task)

	outcomes, err := eval.Evaluate(context.Background(), echoPattern(), catalog,
		evaluator.Options{IncludeRobustness: true, Seed: 11})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	// 1 base + 2 perturbations + 1 failure-injected.
	if len(outcomes) != 4 {
		t.Fatalf("outcomes = %d, want 4", len(outcomes))
	}
	counts := map[evaluator.TrialKind]int{}
	for _, o := range outcomes {
		counts[o.Kind]++
	}
	if counts[evaluator.TrialBase] != 1 || counts[evaluator.TrialPerturbed] != 2 || counts[evaluator.TrialFailureInjected] != 1 {
		t.Fatalf("kind partition = %v", counts)
	}
}

func TestNoFailureTrialWithZeroProbability(t *testing.T) {
	eval := evaluator.New(nil)
	catalog := singleTaskCatalog(t, arithmeticTask())

	outcomes, err := eval.Evaluate(context.Background(), echoPattern(), catalog,
		evaluator.Options{IncludeRobustness: true})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	for _, o := range outcomes {
		if o.Kind == evaluator.TrialFailureInjected {
			t.Fatalf("p=0 task must not get a failure-injected trial")
		}
	}
	if len(outcomes) != 3 {
		t.Fatalf("outcomes = %d, want 3 (base + 2 perturbations)", len(outcomes))
	}
}

func TestLenientImpliesStrictNeverExceeds(t *testing.T) {
	eval := evaluator.New(nil)
	catalog := singleTaskCatalog(t, arithmeticTask())
	wrapped := &stubPattern{
		name: "wrapped",
		run: func(ctx context.Context, req evaluator.Request) (*evaluator.Response, error) {
			return &evaluator.Response{Output: "The answer is 408."}, nil
		},
	}

	outcomes, err := eval.Evaluate(context.Background(), wrapped, catalog, evaluator.Options{})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	o := outcomes[0]
	if o.Strict.Passed {
		t.Fatalf("wrapped answer must fail strict")
	}
	if !o.Lenient.Passed {
		t.Fatalf("wrapped answer must pass lenient")
	}
}

func TestTimeoutProducesOutcome(t *testing.T) {
	eval := evaluator.New(nil)
	catalog := singleTaskCatalog(t, arithmeticTask())
	slow := &stubPattern{
		name: "slow",
		run: func(ctx context.Context, req evaluator.Request) (*evaluator.Response, error) {
			select {
			case <-time.After(5 * time.Second):
				return &evaluator.Response{Output: "408"}, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	}

	outcomes, err := eval.Evaluate(context.Background(), slow, catalog,
		evaluator.Options{Timeout: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	o := outcomes[0]
	if o.Err != evaluator.ReasonTimeout {
		t.Fatalf("err = %q, want timeout", o.Err)
	}
	if o.Strict.Passed || o.Lenient.Passed {
		t.Fatalf("timed-out trial must fail both verdicts")
	}
	if o.Strict.Reason != evaluator.ReasonTimeout {
		t.Fatalf("verdict reason = %q, want timeout", o.Strict.Reason)
	}
}

func TestPanicIsInvocationError(t *testing.T) {
	eval := evaluator.New(nil)
	catalog := singleTaskCatalog(t, arithmeticTask())
	panicky := &stubPattern{
		name: "panicky",
		run: func(ctx context.Context, req evaluator.Request) (*evaluator.Response, error) {
			panic("boom")
		},
	}

	outcomes, err := eval.Evaluate(context.Background(), panicky, catalog, evaluator.Options{})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if outcomes[0].Err != evaluator.ReasonInvocationError {
		t.Fatalf("err = %q, want invocation_error", outcomes[0].Err)
	}
}

func TestNilResponseIsInvocationError(t *testing.T) {
	eval := evaluator.New(nil)
	catalog := singleTaskCatalog(t, arithmeticTask())
	broken := &stubPattern{
		name: "broken",
		run: func(ctx context.Context, req evaluator.Request) (*evaluator.Response, error) {
			return nil, nil
		},
	}

	outcomes, err := eval.Evaluate(context.Background(), broken, catalog, evaluator.Options{})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if outcomes[0].Err != evaluator.ReasonInvocationError {
		t.Fatalf("err = %q, want invocation_error", outcomes[0].Err)
	}
}

func TestEvaluationModeAlwaysSet(t *testing.T) {
	eval := evaluator.New(nil)
	catalog := singleTaskCatalog(t, arithmeticTask())
	var seen bool
	witness := &stubPattern{
		name: "witness",
		run: func(ctx context.Context, req evaluator.Request) (*evaluator.Response, error) {
			seen = req.EvaluationMode
			return &evaluator.Response{Output: "408"}, nil
		},
	}
	if _, err := eval.Evaluate(context.Background(), witness, catalog, evaluator.Options{}); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !seen {
		t.Fatalf("trials must run in evaluation mode")
	}
}

func TestToolsInvokedOrder(t *testing.T) {
	o := evaluator.Outcome{
		Trace: []evaluator.Step{
			{Name: "plan"},
			{Name: "tool:fx_api", Tool: "fx_api"},
			{Name: "tool:calculator", Tool: "calculator"},
			{Name: "tool:fx_api", Tool: "fx_api"},
		},
	}
	invoked := o.ToolsInvoked()
	if strings.Join(invoked, ",") != "fx_api,calculator" {
		t.Fatalf("invoked = %v, want distinct first-use order", invoked)
	}
	if o.ToolCallCount() != 3 {
		t.Fatalf("tool calls = %d, want 3", o.ToolCallCount())
	}
}

func TestConcurrentEvaluationKeepsPlanOrder(t *testing.T) {
	eval := evaluator.New(nil)
	var tasks []suite.Task
	for _, id := range []string{"T1", "T2", "T3", "T4", "T5", "T6"} {
		task := arithmeticTask()
		task.ID = id
		task.DeclaredTools = []string{"calculator"}
		task.ToolFailureProbability = 0.5
		tasks = append(tasks, task)
	}
	catalog, err := suite.NewCatalog("test", tasks)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	// Vary per-trial latency so completion order diverges from plan order.
	var calls int64
	jittery := &stubPattern{
		name: "jittery",
		run: func(ctx context.Context, req evaluator.Request) (*evaluator.Response, error) {
			n := atomic.AddInt64(&calls, 1)
			time.Sleep(time.Duration(n%4) * time.Millisecond)
			return &evaluator.Response{Output: "408"}, nil
		},
	}

	outcomes, err := eval.Evaluate(context.Background(), jittery, catalog,
		evaluator.Options{IncludeRobustness: true, Concurrency: 4, Seed: 7})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	// Per task: base + 2 perturbations + 1 failure-injected.
	if len(outcomes) != 24 {
		t.Fatalf("outcomes = %d, want 24", len(outcomes))
	}
	wantKinds := []evaluator.TrialKind{
		evaluator.TrialBase, evaluator.TrialPerturbed, evaluator.TrialPerturbed, evaluator.TrialFailureInjected,
	}
	for i, o := range outcomes {
		wantTask := tasks[i/4].ID
		if o.TaskID != wantTask {
			t.Fatalf("outcome %d: task = %s, want %s", i, o.TaskID, wantTask)
		}
		if o.Kind != wantKinds[i%4] {
			t.Fatalf("outcome %d: kind = %q, want %q", i, o.Kind, wantKinds[i%4])
		}
	}
}

func TestCancellationReturnsPartialResults(t *testing.T) {
	eval := evaluator.New(nil)
	var tasks []suite.Task
	for _, id := range []string{"T1", "T2", "T3", "T4"} {
		task := arithmeticTask()
		task.ID = id
		tasks = append(tasks, task)
	}
	catalog, err := suite.NewCatalog("test", tasks)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The third trial blocks until the run is cancelled from outside.
	reached := make(chan struct{})
	var calls int64
	blocking := &stubPattern{
		name: "blocking",
		run: func(ctx context.Context, req evaluator.Request) (*evaluator.Response, error) {
			if atomic.AddInt64(&calls, 1) == 3 {
				close(reached)
				<-ctx.Done()
				return nil, ctx.Err()
			}
			return &evaluator.Response{Output: "408"}, nil
		},
	}
	go func() {
		<-reached
		cancel()
	}()

	outcomes, err := eval.Evaluate(ctx, blocking, catalog, evaluator.Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(outcomes) < 2 || len(outcomes) > len(tasks) {
		t.Fatalf("outcomes = %d, want partial set between 2 and %d", len(outcomes), len(tasks))
	}
	// Trials finished before the cancel stay valid aggregator input.
	for i := 0; i < 2; i++ {
		if outcomes[i].Err != "" || !outcomes[i].Strict.Passed {
			t.Fatalf("outcome %d: err=%q passed=%t, want clean pass", i, outcomes[i].Err, outcomes[i].Strict.Passed)
		}
	}
	for _, o := range outcomes[2:] {
		if o.Err == "" {
			t.Fatalf("post-cancel trial for %s must carry an error reason", o.TaskID)
		}
	}
}

func TestEvaluateAllKeepsPatternsSeparate(t *testing.T) {
	eval := evaluator.New(nil)
	catalog := singleTaskCatalog(t, arithmeticTask())

	results, err := eval.EvaluateAll(context.Background(),
		[]evaluator.Pattern{echoPattern(), &stubPattern{
			name: "other",
			run: func(ctx context.Context, req evaluator.Request) (*evaluator.Response, error) {
				return &evaluator.Response{Output: "wrong"}, nil
			},
		}}, catalog, evaluator.Options{})
	if err != nil {
		t.Fatalf("evaluate all: %v", err)
	}
	if len(results) != 2 || len(results["echo"]) != 1 || len(results["other"]) != 1 {
		t.Fatalf("unexpected result map: %v", results)
	}
}
