package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// ScriptedClient returns canned completions keyed by a substring of the
// last user message. Tests use it in place of a live endpoint.
type ScriptedClient struct {
	mu       sync.Mutex
	script   map[string]string
	fallback string
	calls    int
}

func NewScriptedClient(script map[string]string, fallback string) *ScriptedClient {
	return &ScriptedClient{script: script, fallback: fallback}
}

func (c *ScriptedClient) Complete(ctx context.Context, messages []Message) (*Completion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()

	var prompt string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			prompt = messages[i].Content
			break
		}
	}
	for key, reply := range c.script {
		if strings.Contains(prompt, key) {
			return &Completion{Content: reply, OutputTokens: len(reply) / 4}, nil
		}
	}
	if c.fallback == "" {
		return nil, fmt.Errorf("scripted client: no reply for prompt %q", prompt)
	}
	return &Completion{Content: c.fallback, OutputTokens: len(c.fallback) / 4}, nil
}

func (c *ScriptedClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
