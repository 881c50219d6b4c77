// Package ports defines the core interfaces that form the contract between
// the ranking core and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import (
	"context"
	"time"

	"github.com/ahrav/go-prp/internal/domain"
)

// LLMClient defines the interface for interacting with Large Language
// Model providers.
// Implementations handle provider-specific details like authentication,
// request formatting, and response parsing.
type LLMClient interface {
	// Complete sends a completion request to the LLM provider and returns
	// the generated text.
	//
	// The options map allows provider flexibility without changing the
	// interface. Common options include:
	//   - "temperature": float64
	//   - "max_tokens": int
	//   - "system": string (system-role instruction)
	Complete(ctx context.Context, prompt string, options map[string]any) (string, error)

	// CompleteWithUsage is Complete plus input/output token counts,
	// for budget accounting.
	CompleteWithUsage(ctx context.Context, prompt string, options map[string]any) (string, int, int, error)

	// EstimateTokens calculates the approximate token count for a text.
	EstimateTokens(text string) (int, error)

	// GetModel returns the model identifier used by this client.
	GetModel() string
}

// PairwiseComparator judges the relative relevance of two documents for a
// query. It is the sole ranking signal available to strategies.
//
// The outcome may be non-transitive across pairs; strategies must tolerate
// intransitivity, not eliminate it. A returned error is an oracle or
// transport failure and is always fatal for the run; ambiguous answers are
// reported as domain.Inconclusive, never as an error.
type PairwiseComparator interface {
	Compare(ctx context.Context, query, first, second string) (domain.Outcome, error)
}

// RankStrategy turns a pairwise comparator into a total order over the
// input documents. Implementations are stateless across calls to Rank and
// must return a permutation of the input without mutating it.
type RankStrategy interface {
	// Name returns a unique identifier for this strategy.
	Name() string

	// Rank orders docs by relevance to query, most relevant first.
	// Comparator calls happen sequentially in the strategy's documented
	// iteration order, so results are deterministic for a deterministic
	// comparator.
	Rank(ctx context.Context, query string, docs []domain.Document) ([]domain.Document, error)

	// Validate checks whether the strategy is properly configured.
	Validate() error
}

// MetricsCollector defines the interface for collecting operational
// metrics. Implementations should integrate with observability platforms
// like Prometheus or OpenTelemetry.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram.
	RecordHistogram(metric string, value float64, labels map[string]string)
}
