// Package application wires the comparator, strategies, and run
// configuration into the ranking pipeline driver.
package application

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ahrav/go-prp/infrastructure/strategies"
	"github.com/ahrav/go-prp/internal/domain"
	"github.com/ahrav/go-prp/internal/ports"
)

// Method selects the ranking strategy for a run.
type Method string

// Supported ranking methods.
const (
	// MethodAllPairs compares every pair and aggregates win scores.
	MethodAllPairs Method = "allpairs"

	// MethodSorting drives a stable comparison sort with the judge.
	MethodSorting Method = "sorting"

	// MethodSliding performs repeated right-to-left bubble passes.
	MethodSliding Method = "sliding"
)

// RunConfig defines a single ranking run.
type RunConfig struct {
	// Query is the relevance question every comparison is judged against.
	Query string `validate:"required"`

	// Method selects the ranking strategy.
	Method Method `validate:"required"`

	// TopK truncates the output to its first K documents after the full
	// order is computed. Zero returns the full order.
	TopK int `validate:"min=0"`

	// Passes overrides the sliding-window pass count. Zero derives the
	// count: TopK when TopK > 0, otherwise one pass per document.
	// Ignored by the other methods.
	Passes int `validate:"min=0"`
}

// validate is the package-level validator for run configuration.
var validate = validator.New()

// Engine is the pipeline driver: it selects a strategy, feeds it the
// document list and query, and applies top-K truncation. Strategies are
// built fresh per run from the injected comparator, so no state crosses
// runs.
type Engine struct {
	cmp     ports.PairwiseComparator
	metrics ports.MetricsCollector
}

// NewEngine creates a ranking engine around the given comparator.
// The collector may be nil to disable metrics.
func NewEngine(cmp ports.PairwiseComparator, collector ports.MetricsCollector) (*Engine, error) {
	if cmp == nil {
		return nil, strategies.ErrNilComparator
	}
	return &Engine{cmp: cmp, metrics: collector}, nil
}

// Run ranks docs against cfg.Query with the configured method and
// returns the ordered documents, truncated to cfg.TopK when requested.
//
// An empty document list returns domain.ErrNoDocuments; an unrecognized
// method returns domain.ErrUnknownMethod. Both surface before any oracle
// call is made. Truncation happens only after the full order is
// computed, so the kept prefix matches the untruncated run.
func (e *Engine) Run(ctx context.Context, docs []domain.Document, cfg RunConfig) ([]domain.Document, error) {
	if len(docs) == 0 {
		return nil, domain.ErrNoDocuments
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid run configuration: %w", err)
	}

	strategy, err := e.buildStrategy(cfg)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ranked, err := strategy.Rank(ctx, cfg.Query, docs)
	if e.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		e.metrics.RecordLatency("rank", time.Since(start), map[string]string{"method": string(cfg.Method)})
		e.metrics.RecordCounter("ranking_runs_total", 1, map[string]string{
			"method": string(cfg.Method),
			"status": status,
		})
	}
	if err != nil {
		return nil, err
	}

	if cfg.TopK > 0 && cfg.TopK < len(ranked) {
		ranked = ranked[:cfg.TopK]
	}
	return ranked, nil
}

// buildStrategy constructs the strategy for this run.
//
// The sliding-window pass count couples to TopK: when only a prefix is
// wanted, K bubble passes bring the top K documents to the front, so the
// driver defaults passes to K instead of the document count. This is
// part of the sliding-window contract, not an accident.
func (e *Engine) buildStrategy(cfg RunConfig) (ports.RankStrategy, error) {
	switch cfg.Method {
	case MethodAllPairs:
		return strategies.NewAllPairsStrategy(string(cfg.Method), e.cmp)
	case MethodSorting:
		return strategies.NewSortingStrategy(string(cfg.Method), e.cmp)
	case MethodSliding:
		passes := cfg.Passes
		if passes == 0 && cfg.TopK > 0 {
			passes = cfg.TopK
		}
		return strategies.NewSlidingWindowStrategy(string(cfg.Method), e.cmp, strategies.SlidingWindowConfig{Passes: passes})
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownMethod, cfg.Method)
	}
}
