// Package testutils provides deterministic mock LLM clients for testing
// the ranking pipeline without a live oracle.
package testutils

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"github.com/ahrav/go-prp/internal/ports"
)

// promptOperands extracts the two operand texts from a rendered default
// judging prompt.
var promptOperands = regexp.MustCompile(`(?s)Line A:\n(.*?)\n\nLine B:\n(.*?)\n`)

// LexicographicJudgeClient implements ports.LLMClient with a judge that
// always prefers the lexicographically smaller line. It parses the
// rendered prompt to recover the operands, so swapped calls produce
// consistent answers and the full pipeline behaves like a plain string
// sort. This mirrors the oracle substitute used to pin down the expected
// output of each ranking method.
type LexicographicJudgeClient struct {
	mu    sync.Mutex
	calls int
}

var _ ports.LLMClient = (*LexicographicJudgeClient)(nil)

// NewLexicographicJudgeClient creates a lexicographic judge client.
func NewLexicographicJudgeClient() *LexicographicJudgeClient {
	return &LexicographicJudgeClient{}
}

// Complete answers "Line A" when the first operand sorts no later than
// the second, "Line B" otherwise.
func (c *LexicographicJudgeClient) Complete(ctx context.Context, prompt string, options map[string]any) (string, error) {
	response, _, _, err := c.CompleteWithUsage(ctx, prompt, options)
	return response, err
}

// CompleteWithUsage implements ports.LLMClient.
func (c *LexicographicJudgeClient) CompleteWithUsage(ctx context.Context, prompt string, options map[string]any) (string, int, int, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, 0, err
	}

	c.mu.Lock()
	c.calls++
	c.mu.Unlock()

	m := promptOperands.FindStringSubmatch(prompt)
	if m == nil {
		return "", 0, 0, fmt.Errorf("prompt does not match the default template: %q", prompt)
	}

	if m[1] <= m[2] {
		return "Line A", len(prompt) / 4, 2, nil
	}
	return "Line B", len(prompt) / 4, 2, nil
}

// Calls returns the number of oracle invocations so far.
func (c *LexicographicJudgeClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// EstimateTokens implements ports.LLMClient.
func (c *LexicographicJudgeClient) EstimateTokens(text string) (int, error) {
	return (len(text) + 3) / 4, nil
}

// GetModel implements ports.LLMClient.
func (c *LexicographicJudgeClient) GetModel() string { return "mock-lexicographic" }

// ScriptedLLMClient implements ports.LLMClient with a fixed response
// script. Each call pops the next entry; when the script is exhausted
// the last entry repeats. Errors in the script surface as oracle
// failures.
type ScriptedLLMClient struct {
	mu      sync.Mutex
	script  []ScriptedResponse
	cursor  int
	prompts []string
}

// ScriptedResponse is a single scripted oracle answer.
type ScriptedResponse struct {
	Response string
	Err      error
}

var _ ports.LLMClient = (*ScriptedLLMClient)(nil)

// NewScriptedLLMClient creates a client that replays the given script.
func NewScriptedLLMClient(script ...ScriptedResponse) *ScriptedLLMClient {
	return &ScriptedLLMClient{script: script}
}

// Complete implements ports.LLMClient.
func (c *ScriptedLLMClient) Complete(ctx context.Context, prompt string, options map[string]any) (string, error) {
	response, _, _, err := c.CompleteWithUsage(ctx, prompt, options)
	return response, err
}

// CompleteWithUsage implements ports.LLMClient.
func (c *ScriptedLLMClient) CompleteWithUsage(ctx context.Context, prompt string, options map[string]any) (string, int, int, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.prompts = append(c.prompts, prompt)
	if len(c.script) == 0 {
		return "", 0, 0, fmt.Errorf("scripted client: no responses configured")
	}

	entry := c.script[c.cursor]
	if c.cursor < len(c.script)-1 {
		c.cursor++
	}
	if entry.Err != nil {
		return "", 0, 0, entry.Err
	}
	return entry.Response, len(prompt) / 4, len(entry.Response) / 4, nil
}

// Prompts returns a copy of every prompt seen so far.
func (c *ScriptedLLMClient) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.prompts))
	copy(out, c.prompts)
	return out
}

// Calls returns the number of oracle invocations so far.
func (c *ScriptedLLMClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.prompts)
}

// EstimateTokens implements ports.LLMClient.
func (c *ScriptedLLMClient) EstimateTokens(text string) (int, error) {
	return (len(text) + 3) / 4, nil
}

// GetModel implements ports.LLMClient.
func (c *ScriptedLLMClient) GetModel() string { return "mock-scripted" }

// PositionBiasedClient implements ports.LLMClient with a judge that
// always prefers whichever operand is shown first, regardless of
// content. The swapped double-call protocol must classify every
// comparison against this judge as inconclusive.
type PositionBiasedClient struct {
	mu    sync.Mutex
	calls int
}

var _ ports.LLMClient = (*PositionBiasedClient)(nil)

// NewPositionBiasedClient creates a positionally biased judge client.
func NewPositionBiasedClient() *PositionBiasedClient {
	return &PositionBiasedClient{}
}

// Complete always answers "Line A".
func (c *PositionBiasedClient) Complete(ctx context.Context, prompt string, options map[string]any) (string, error) {
	response, _, _, err := c.CompleteWithUsage(ctx, prompt, options)
	return response, err
}

// CompleteWithUsage implements ports.LLMClient.
func (c *PositionBiasedClient) CompleteWithUsage(ctx context.Context, prompt string, options map[string]any) (string, int, int, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, 0, err
	}

	c.mu.Lock()
	c.calls++
	c.mu.Unlock()

	return "Line A", len(prompt) / 4, 2, nil
}

// Calls returns the number of oracle invocations so far.
func (c *PositionBiasedClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// EstimateTokens implements ports.LLMClient.
func (c *PositionBiasedClient) EstimateTokens(text string) (int, error) {
	return (len(text) + 3) / 4, nil
}

// GetModel implements ports.LLMClient.
func (c *PositionBiasedClient) GetModel() string { return "mock-biased" }
