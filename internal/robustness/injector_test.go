package robustness

import (
	"testing"

	"arena/internal/suite"
)

func TestDrawBoundaries(t *testing.T) {
	inj := NewInjector(42)
	for i := 0; i < 100; i++ {
		if inj.Draw(0) {
			t.Fatalf("p=0 must never fire")
		}
		if !inj.Draw(1) {
			t.Fatalf("p=1 must always fire")
		}
	}
}

func TestDrawDeterministicWithSeed(t *testing.T) {
	a := NewInjector(7)
	b := NewInjector(7)
	for i := 0; i < 50; i++ {
		if a.Draw(0.5) != b.Draw(0.5) {
			t.Fatalf("same seed must produce the same draw sequence (i=%d)", i)
		}
	}
}

func TestDirectiveRequiresEligibility(t *testing.T) {
	inj := NewInjector(1)
	task := suite.Task{
		ID:       "T",
		Category: suite.CategoryBaseline,
		Prompt:   "p",
		Judge:    suite.JudgeSpec{Mode: suite.ModeExact},
	}
	for i := 0; i < 20; i++ {
		if d := inj.Directive(task); d != nil {
			t.Fatalf("ineligible task must never get a directive")
		}
	}
}

func TestDirectiveCoversDeclaredTools(t *testing.T) {
	inj := NewInjector(1)
	task := suite.Task{
		ID:                     "C1",
		Category:               suite.CategoryTool,
		Prompt:                 "p",
		Judge:                  suite.JudgeSpec{Mode: suite.ModeExact},
		DeclaredTools:          []string{"weather_api"},
		ToolFailureProbability: 1.0,
	}
	d := inj.Directive(task)
	if d == nil {
		t.Fatalf("p=1 must arm a directive")
	}
	if !d.Covers("weather_api") {
		t.Fatalf("directive must cover declared tools")
	}
	if d.Covers("fx_api") {
		t.Fatalf("directive must not cover undeclared tools")
	}
}

func TestPerturbationsCopy(t *testing.T) {
	task := suite.Task{
		ID:            "T",
		Category:      suite.CategoryBaseline,
		Prompt:        "p",
		Judge:         suite.JudgeSpec{Mode: suite.ModeExact},
		Perturbations: []string{"a", "b"},
	}
	got := Perturbations(task)
	got[0] = "mutated"
	if task.Perturbations[0] != "a" {
		t.Fatalf("Perturbations must return a copy")
	}
}
