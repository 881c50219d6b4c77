// Package llm provides a unified interface for interacting with various LLM
// providers with built-in support for rate limiting, retries, timeouts, and
// metrics.
//
// The package abstracts multiple providers (OpenAI, Anthropic, Google) behind
// a common interface while adding operational concerns through a middleware
// pattern. The ranking core never sees credentials, model names, or
// transport details; it consumes the assembled client through
// ports.LLMClient.
//
// Basic usage:
//
//	client, err := llm.NewClient("openai", llm.ClientConfig{
//	    APIKey: os.Getenv("OPENAI_API_KEY"),
//	    Model:  "gpt-4o-mini",
//	})
//	answer, err := client.Complete(ctx, prompt, nil)
//
// Usage with middleware:
//
//	client, err := llm.NewClient("anthropic", llm.ClientConfig{
//	    APIKey: os.Getenv("ANTHROPIC_API_KEY"),
//	    Model:  "claude-3-5-sonnet-20241022",
//	    Middleware: []llm.Middleware{
//	        llm.RateLimitMiddleware(2, 4),
//	        llm.RetryMiddleware(3, 500*time.Millisecond, 8*time.Second),
//	    },
//	})
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahrav/go-prp/internal/ports"
)

// CoreLLM defines the minimal interface that LLM providers must implement.
// The middleware system can wrap any conforming implementation.
type CoreLLM interface {
	// DoRequest sends a prompt to the provider and returns the response
	// text along with input and output token counts.
	DoRequest(ctx context.Context, prompt string, opts map[string]any) (response string, tokensIn, tokensOut int, err error)

	// GetModel returns the currently configured model name.
	GetModel() string

	// SetModel updates the model used for subsequent requests.
	SetModel(model string)
}

// Middleware wraps a CoreLLM implementation to add cross-cutting
// functionality such as rate limiting, retries, or metrics collection.
type Middleware func(CoreLLM) CoreLLM

// ClientConfig holds all configuration options for creating an LLM client.
type ClientConfig struct {
	// APIKey authenticates requests to the provider.
	APIKey string

	// Model specifies which model to use for requests.
	// Leave empty to use the provider's default.
	Model string

	// BaseURL overrides the default API endpoint for the provider.
	BaseURL string

	// Timeout sets the maximum duration for individual requests.
	// Zero means no per-request timeout.
	Timeout time.Duration

	// Middleware is applied in the order specified; the first entry
	// becomes the outermost wrapper.
	Middleware []Middleware
}

// Client implements ports.LLMClient by wrapping a provider-specific
// CoreLLM with the configured middleware chain.
type Client struct {
	core CoreLLM
}

var _ ports.LLMClient = (*Client)(nil)

// ProviderFactory creates a CoreLLM implementation from configuration.
type ProviderFactory func(ClientConfig) (CoreLLM, error)

var providerFactories = map[string]ProviderFactory{}

// RegisterProviderFactory registers a custom LLM provider factory.
// Providers in this package register themselves at init time.
func RegisterProviderFactory(providerType string, factory ProviderFactory) {
	providerFactories[providerType] = factory
}

// NewClient creates a new LLM client for the given provider type.
// It assembles the middleware chain and validates configuration before
// returning a ready-to-use client.
func NewClient(providerType string, config ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	factory, ok := providerFactories[providerType]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", providerType)
	}

	core, err := factory(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}

	// Apply middleware in reverse order so the first middleware is the
	// outermost.
	for i := len(config.Middleware) - 1; i >= 0; i-- {
		core = config.Middleware[i](core)
	}

	return &Client{core: core}, nil
}

// Complete sends a prompt to the LLM and returns the response text,
// discarding token usage information.
func (c *Client) Complete(ctx context.Context, prompt string, options map[string]any) (string, error) {
	response, _, _, err := c.CompleteWithUsage(ctx, prompt, options)
	return response, err
}

// CompleteWithUsage sends a prompt to the LLM and returns the response
// text plus input and output token counts.
func (c *Client) CompleteWithUsage(ctx context.Context, prompt string, options map[string]any) (string, int, int, error) {
	response, tokensIn, tokensOut, err := c.core.DoRequest(ctx, prompt, options)
	if err != nil {
		return "", 0, 0, c.wrapPortError("complete", err)
	}
	return response, tokensIn, tokensOut, nil
}

// wrapPortError converts an infrastructure failure into the port-level
// ports.LLMError contract. Classified provider errors additionally chain
// the matching port sentinel so callers outside this package can test
// retryability with errors.Is alone.
func (c *Client) wrapPortError(operation string, err error) error {
	wrapped := err
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		switch providerErr.Type {
		case ErrorTypeRateLimit:
			wrapped = fmt.Errorf("%w: %w", ports.ErrRateLimited, err)
		case ErrorTypeServerError:
			wrapped = fmt.Errorf("%w: %w", ports.ErrServiceUnavailable, err)
		case ErrorTypeTimeout:
			wrapped = fmt.Errorf("%w: %w", ports.ErrTimeout, err)
		case ErrorTypeAuthentication:
			wrapped = fmt.Errorf("%w: %w", ports.ErrAuthenticationFailed, err)
		}
	}
	return ports.NewLLMError(c.GetModel(), operation, wrapped)
}

// EstimateTokens returns an approximate token count for the given text
// using a character-based heuristic of roughly 4 characters per token.
func (c *Client) EstimateTokens(text string) (int, error) {
	return EstimateTokens(text), nil
}

// GetModel returns the currently configured model name.
func (c *Client) GetModel() string { return c.core.GetModel() }

// EstimateTokens is the shared character-based token estimate used when a
// provider response carries no usage metadata.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}
