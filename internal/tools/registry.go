// Package tools provides the deterministic mock tool registry the
// benchmark tasks run against. Payloads are canned so verdicts depend on
// the agent pattern, not on live services. Failure injection is surfaced
// here: a session opened with a failure directive fails the first call to
// each covered tool, so patterns can demonstrate recovery by retrying.
package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"arena/internal/robustness"
)

// Tool is a single invocable mock tool.
type Tool struct {
	Name        string
	Description string
	Run         func(ctx context.Context, args map[string]any) (any, error)
}

// FailureError is returned when an injected failure directive trips a tool
// call. Patterns should treat it as transient.
type FailureError struct {
	Tool string
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("tool %s: injected failure: service unavailable", e.Tool)
}

// IsFailure reports whether err is (or wraps) an injected tool failure.
func IsFailure(err error) bool {
	var fe *FailureError
	return errors.As(err, &fe)
}

// Registry holds the tool set. The zero value is unusable; NewRegistry
// installs the builtin tools.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	now   func() time.Time
}

func NewRegistry() *Registry {
	r := &Registry{
		tools: make(map[string]Tool),
		now:   time.Now,
	}
	r.registerBuiltins()
	return r
}

// SetClock overrides the clock used by time-dependent tools. Tests use a
// fixed clock to keep outputs stable.
func (r *Registry) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

func (r *Registry) Register(tool Tool) error {
	if tool.Name == "" || tool.Run == nil {
		return fmt.Errorf("tool requires a name and a run function")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("tool already exists: %s", tool.Name)
	}
	r.tools[tool.Name] = tool
	return nil
}

func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	if !ok {
		return Tool{}, fmt.Errorf("tool not found: %s", name)
	}
	return tool, nil
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Session scopes tool invocation to a single trial. A non-nil directive
// arms one injected failure per covered tool; the first call trips, a
// retry goes through.
func (r *Registry) Session(directive *robustness.ToolFailure) *Session {
	return &Session{
		reg:       r,
		directive: directive,
		tripped:   make(map[string]bool),
	}
}

// Session is a per-trial view of the registry.
type Session struct {
	reg       *Registry
	directive *robustness.ToolFailure

	mu      sync.Mutex
	tripped map[string]bool
}

// Invoke runs the named tool, applying the session's failure directive.
func (s *Session) Invoke(ctx context.Context, name string, args map[string]any) (any, error) {
	tool, err := s.reg.Get(name)
	if err != nil {
		return nil, err
	}
	if s.directive != nil && s.directive.Covers(name) {
		s.mu.Lock()
		first := !s.tripped[name]
		s.tripped[name] = true
		s.mu.Unlock()
		if first {
			return nil, &FailureError{Tool: name}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return tool.Run(ctx, args)
}
