package application

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-prp/infrastructure/judge"
	"github.com/ahrav/go-prp/infrastructure/llm"
	"github.com/ahrav/go-prp/internal/ports"
)

// Duration wraps time.Duration with YAML support for strings like "30s".
type Duration time.Duration

// UnmarshalYAML decodes a duration from its string form.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// RateLimitConfig configures the token bucket applied to oracle calls.
type RateLimitConfig struct {
	// RPS is the sustained request rate; zero disables rate limiting.
	RPS float64 `yaml:"rps" validate:"min=0"`

	// Burst allows temporary spikes above the sustained rate.
	Burst int `yaml:"burst" validate:"min=0"`
}

// RetryConfig configures collaborator-level retries for transient
// provider failures.
type RetryConfig struct {
	// MaxAttempts is the retry count on top of the initial attempt;
	// zero disables retries.
	MaxAttempts int `yaml:"max_attempts" validate:"min=0,max=10"`

	// BaseDelay is the first backoff delay.
	BaseDelay Duration `yaml:"base_delay" validate:"min=0"`

	// MaxDelay caps the exponential backoff.
	MaxDelay Duration `yaml:"max_delay" validate:"min=0"`
}

// Config is the YAML run configuration for the CLI.
// API keys are never read from this file; they come from the provider's
// environment variable.
type Config struct {
	// Provider selects the oracle backend.
	Provider string `yaml:"provider" validate:"required,oneof=openai anthropic google"`

	// Model overrides the provider's default model.
	Model string `yaml:"model"`

	// Timeout bounds each oracle call; zero disables the bound.
	Timeout Duration `yaml:"timeout"`

	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Retry     RetryConfig     `yaml:"retry"`

	// Judge configures the pairwise prompt and marker pair.
	Judge judge.JudgeConfig `yaml:"judge"`

	// MaxOracleCalls caps oracle invocations per run; zero is uncapped.
	MaxOracleCalls int `yaml:"max_oracle_calls" validate:"min=0"`
}

// DefaultConfig returns the configuration used when no config file is
// given.
func DefaultConfig() Config {
	return Config{
		Provider: "openai",
		Timeout:  Duration(30 * time.Second),
		RateLimit: RateLimitConfig{
			RPS:   2,
			Burst: 4,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   Duration(500 * time.Millisecond),
			MaxDelay:    Duration(8 * time.Second),
		},
		Judge: judge.DefaultJudgeConfig(),
	}
}

// LoadConfig reads a YAML configuration file over the defaults.
// Unknown fields are rejected so typos fail loudly.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil {
		return Config{}, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	if err := validate.Struct(config); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// apiKeyEnvVars maps providers to the environment variable holding their
// API key.
var apiKeyEnvVars = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"google":    "GOOGLE_API_KEY",
}

// NewClientFromConfig assembles the LLM client described by config,
// including its middleware chain. The meter and collector may be nil.
func NewClientFromConfig(config Config, meter *llm.UsageMeter, collector ports.MetricsCollector) (*llm.Client, error) {
	envVar, ok := apiKeyEnvVars[config.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", config.Provider)
	}
	apiKey := os.Getenv(envVar)
	if apiKey == "" {
		return nil, fmt.Errorf("provider %s: %s is not set", config.Provider, envVar)
	}

	// Outermost first: retries re-enter the rate limiter so every
	// attempt waits for a token.
	var middleware []llm.Middleware
	if config.Retry.MaxAttempts > 0 {
		middleware = append(middleware, llm.RetryMiddleware(
			config.Retry.MaxAttempts,
			time.Duration(config.Retry.BaseDelay),
			time.Duration(config.Retry.MaxDelay),
		))
	}
	if config.RateLimit.RPS > 0 {
		middleware = append(middleware, llm.RateLimitMiddleware(rate.Limit(config.RateLimit.RPS), config.RateLimit.Burst))
	}
	if config.Timeout > 0 {
		middleware = append(middleware, llm.TimeoutMiddleware(time.Duration(config.Timeout)))
	}
	if collector != nil {
		middleware = append(middleware, llm.MetricsMiddleware(collector))
	}
	if meter != nil {
		middleware = append(middleware, llm.UsageMiddleware(meter))
	}

	return llm.NewClient(config.Provider, llm.ClientConfig{
		APIKey:     apiKey,
		Model:      config.Model,
		Middleware: middleware,
	})
}
