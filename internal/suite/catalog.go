package suite

import (
	"fmt"
	"sort"
)

// Catalog is an immutable, ordered collection of benchmark tasks. Filtered
// views share the underlying task values but never mutate them.
type Catalog struct {
	name  string
	tasks []Task
}

// NewCatalog validates the task list and builds a catalog. An empty list or
// any malformed task is a fatal catalog error: nothing may run against a
// partially valid benchmark.
func NewCatalog(name string, tasks []Task) (*Catalog, error) {
	if len(tasks) == 0 {
		return nil, fmt.Errorf("catalog %q: no tasks defined", name)
	}
	seen := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("catalog %q: %w", name, err)
		}
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("catalog %q: duplicate task id %s", name, t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	copied := make([]Task, len(tasks))
	copy(copied, tasks)
	return &Catalog{name: name, tasks: copied}, nil
}

// Name returns the catalog name.
func (c *Catalog) Name() string { return c.name }

// Len returns the number of tasks.
func (c *Catalog) Len() int { return len(c.tasks) }

// Tasks returns the tasks in catalog order.
func (c *Catalog) Tasks() []Task {
	out := make([]Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// TaskByID returns the task with the given id, if present.
func (c *Catalog) TaskByID(id string) (Task, bool) {
	for _, t := range c.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// Filter returns a catalog view limited by the given selectors. Zero-valued
// selectors mean "any" for that dimension. Filtering an entire catalog away
// is an error for the same reason an empty catalog is.
func (c *Catalog) Filter(f Filters) (*Catalog, error) {
	var kept []Task
	for _, t := range c.tasks {
		if f.matches(t) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("catalog %q: filters matched no tasks", c.name)
	}
	return &Catalog{name: c.name, tasks: kept}, nil
}

// Filters selects a subset of a catalog.
type Filters struct {
	Category   Category
	Complexity Complexity
	IDs        []string
}

func (f Filters) matches(t Task) bool {
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Complexity != "" && t.Complexity != f.Complexity {
		return false
	}
	if len(f.IDs) > 0 {
		found := false
		for _, id := range f.IDs {
			if t.ID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ByCategory groups the catalog's tasks by category.
func (c *Catalog) ByCategory() map[Category][]Task {
	result := make(map[Category][]Task)
	for _, t := range c.tasks {
		result[t.Category] = append(result[t.Category], t)
	}
	return result
}

// ByComplexity groups the catalog's tasks by complexity tier.
func (c *Catalog) ByComplexity() map[Complexity][]Task {
	result := make(map[Complexity][]Task)
	for _, t := range c.tasks {
		result[t.Complexity] = append(result[t.Complexity], t)
	}
	return result
}

// Summary computes aggregate statistics for the catalog.
type Summary struct {
	Name          string             `json:"name"`
	TotalTasks    int                `json:"total_tasks"`
	ByCategory    map[Category]int   `json:"by_category"`
	ByComplexity  map[Complexity]int `json:"by_complexity"`
	Perturbations int                `json:"perturbations"`
	FailureTasks  int                `json:"failure_tasks"`
}

// Summarize returns counts per category and complexity plus robustness
// coverage figures.
func (c *Catalog) Summarize() Summary {
	s := Summary{
		Name:         c.name,
		TotalTasks:   len(c.tasks),
		ByCategory:   make(map[Category]int),
		ByComplexity: make(map[Complexity]int),
	}
	for _, t := range c.tasks {
		s.ByCategory[t.Category]++
		s.ByComplexity[t.Complexity]++
		s.Perturbations += len(t.Perturbations)
		if t.FailureEligible() {
			s.FailureTasks++
		}
	}
	return s
}

// Categories returns the distinct categories present, sorted.
func (c *Catalog) Categories() []Category {
	set := make(map[Category]struct{})
	for _, t := range c.tasks {
		set[t.Category] = struct{}{}
	}
	out := make([]Category, 0, len(set))
	for cat := range set {
		out = append(out, cat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
