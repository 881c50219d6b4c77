package llm

import (
	"context"
	"sync"
)

// MockCoreLLM is a scripted CoreLLM implementation for tests and local
// development. Each call pops the next scripted result; when the script
// is exhausted the last entry repeats.
type MockCoreLLM struct {
	mu sync.Mutex

	model   string
	script  []MockResult
	cursor  int
	prompts []string
}

// MockResult is a single scripted DoRequest outcome.
type MockResult struct {
	Response  string
	TokensIn  int
	TokensOut int
	Err       error
}

// NewMockCoreLLM creates a scripted mock with the given model name.
func NewMockCoreLLM(model string, script ...MockResult) *MockCoreLLM {
	return &MockCoreLLM{model: model, script: script}
}

// DoRequest returns the next scripted result and records the prompt.
func (m *MockCoreLLM) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.prompts = append(m.prompts, prompt)
	if len(m.script) == 0 {
		return "", 0, 0, nil
	}

	result := m.script[m.cursor]
	if m.cursor < len(m.script)-1 {
		m.cursor++
	}
	return result.Response, result.TokensIn, result.TokensOut, result.Err
}

// Prompts returns a copy of every prompt seen so far.
func (m *MockCoreLLM) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// CallCount returns the number of DoRequest invocations.
func (m *MockCoreLLM) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// GetModel returns the mock model name.
func (m *MockCoreLLM) GetModel() string { return m.model }

// SetModel updates the mock model name.
func (m *MockCoreLLM) SetModel(model string) { m.model = model }
