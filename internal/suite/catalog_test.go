package suite

import (
	"testing"
)

func validTask(id string) Task {
	return Task{
		ID:         id,
		Category:   CategoryBaseline,
		Complexity: ComplexitySimple,
		Prompt:     "prompt",
		Expected:   "x",
		Judge:      JudgeSpec{Mode: ModeExact},
	}
}

func TestTaskValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Task)
		wantErr bool
	}{
		{"valid", func(task *Task) {}, false},
		{"missing id", func(task *Task) { task.ID = "" }, true},
		{"missing prompt", func(task *Task) { task.Prompt = "" }, true},
		{"missing category", func(task *Task) { task.Category = "" }, true},
		{"pattern without pattern", func(task *Task) {
			task.Judge = JudgeSpec{Mode: ModePattern}
		}, true},
		{"exact without expected", func(task *Task) {
			task.Expected = nil
		}, true},
		{"structured without expected", func(task *Task) {
			task.Judge = JudgeSpec{Mode: ModeStructured}
			task.Expected = nil
		}, true},
		{"pattern without expected", func(task *Task) {
			task.Judge = JudgeSpec{Mode: ModePattern, Pattern: `\bParis\b`}
			task.Expected = nil
		}, false},
		{"probability out of range", func(task *Task) {
			task.ToolFailureProbability = 1.5
		}, true},
		{"probability without tools", func(task *Task) {
			task.ToolFailureProbability = 0.5
		}, true},
		{"probability with tools", func(task *Task) {
			task.ToolFailureProbability = 0.5
			task.DeclaredTools = []string{"weather_api"}
		}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			task := validTask("T1")
			tc.mutate(&task)
			err := task.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestNewCatalogRejectsDuplicateIDs(t *testing.T) {
	_, err := NewCatalog("dup", []Task{validTask("T1"), validTask("T1")})
	if err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestNewCatalogRejectsEmpty(t *testing.T) {
	if _, err := NewCatalog("empty", nil); err == nil {
		t.Fatalf("expected error for empty catalog")
	}
}

func TestFilterMatchingNoneIsError(t *testing.T) {
	catalog := Builtin()
	if _, err := catalog.Filter(Filters{Category: "nope"}); err == nil {
		t.Fatalf("expected error when filters match nothing")
	}
}

func TestFilterByCategory(t *testing.T) {
	catalog := Builtin()
	filtered, err := catalog.Filter(Filters{Category: CategoryTool})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if filtered.Len() != 4 {
		t.Fatalf("tool tasks = %d, want 4", filtered.Len())
	}
	for _, task := range filtered.Tasks() {
		if task.Category != CategoryTool {
			t.Fatalf("unexpected category %q", task.Category)
		}
	}
}

func TestBuiltinShape(t *testing.T) {
	catalog := Builtin()
	if catalog.Len() != 16 {
		t.Fatalf("builtin has %d tasks, want 16", catalog.Len())
	}

	summary := catalog.Summarize()
	for _, cat := range []Category{CategoryBaseline, CategoryReasoning, CategoryTool, CategoryPlanning} {
		if summary.ByCategory[cat] != 4 {
			t.Fatalf("category %s has %d tasks, want 4", cat, summary.ByCategory[cat])
		}
	}

	for _, task := range catalog.Tasks() {
		if len(task.Perturbations) != 2 {
			t.Fatalf("task %s has %d perturbations, want 2", task.ID, len(task.Perturbations))
		}
		if task.Category == CategoryTool {
			if !task.FailureEligible() {
				t.Fatalf("tool task %s must be failure eligible", task.ID)
			}
			if !task.HasWhitelist() {
				t.Fatalf("tool task %s must declare a whitelist", task.ID)
			}
		} else if task.FailureEligible() {
			t.Fatalf("non-tool task %s must not be failure eligible", task.ID)
		}
	}
}

func TestTaskByID(t *testing.T) {
	catalog := Builtin()
	task, ok := catalog.TaskByID("A1")
	if !ok || task.ID != "A1" {
		t.Fatalf("lookup A1 failed: %+v ok=%v", task, ok)
	}
	if _, ok := catalog.TaskByID("Z9"); ok {
		t.Fatalf("lookup of unknown id must fail")
	}
}

func TestTasksReturnsCopy(t *testing.T) {
	catalog := Builtin()
	tasks := catalog.Tasks()
	tasks[0].ID = "mutated"
	if fresh := catalog.Tasks(); fresh[0].ID == "mutated" {
		t.Fatalf("Tasks must return a defensive copy")
	}
}
