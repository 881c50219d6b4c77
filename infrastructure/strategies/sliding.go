package strategies

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-prp/internal/domain"
	"github.com/ahrav/go-prp/internal/ports"
)

var _ ports.RankStrategy = (*SlidingWindowStrategy)(nil)

// SlidingWindowConfig defines the configuration parameters for the
// sliding-window strategy.
type SlidingWindowConfig struct {
	// Passes is the number of bubble passes over the document list.
	// Zero means one pass per document. When the caller only needs the
	// top K documents, K passes suffice to bring them to the front, so
	// the driver couples the top-K request into this value.
	Passes int `yaml:"passes" json:"passes" validate:"min=0"`
}

// SlidingWindowStrategy ranks documents with repeated right-to-left
// bubble passes. Each pass walks adjacent pairs from the end of the list
// toward the front and swaps a pair only when the judge prefers the
// right document. Inconclusive leaves the pair unchanged.
//
// The right-to-left direction bubbles the most-preferred document toward
// the front fastest and must not be replaced with a left-to-right
// variant: the two walks diverge on non-transitive judgments. Cost is
// exactly passes * (n-1) comparator calls.
type SlidingWindowStrategy struct {
	name   string
	cmp    ports.PairwiseComparator
	config SlidingWindowConfig
	tracer trace.Tracer
}

// NewSlidingWindowStrategy creates a sliding-window ranking strategy.
func NewSlidingWindowStrategy(name string, cmp ports.PairwiseComparator, config SlidingWindowConfig) (*SlidingWindowStrategy, error) {
	if name == "" {
		return nil, ErrEmptyStrategyName
	}
	if cmp == nil {
		return nil, ErrNilComparator
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &SlidingWindowStrategy{
		name:   name,
		cmp:    cmp,
		config: config,
		tracer: otel.Tracer("sliding-window-strategy"),
	}, nil
}

// Name returns the unique identifier for this strategy instance.
func (s *SlidingWindowStrategy) Name() string { return s.name }

// Rank orders docs with repeated right-to-left adjacent-swap passes
// starting from input order.
func (s *SlidingWindowStrategy) Rank(ctx context.Context, query string, docs []domain.Document) ([]domain.Document, error) {
	ctx, span := s.tracer.Start(ctx, "SlidingWindowStrategy.Rank",
		trace.WithAttributes(
			attribute.String("strategy.name", s.name),
			attribute.Int("document_count", len(docs)),
			attribute.Int("passes", s.config.Passes),
		))
	defer span.End()

	out := cloneDocuments(docs)
	n := len(out)
	if n < 2 {
		return out, nil
	}

	passes := s.config.Passes
	if passes <= 0 {
		passes = n
	}

	for p := 0; p < passes; p++ {
		for i := n - 2; i >= 0; i-- {
			outcome, err := s.cmp.Compare(ctx, query, out[i].Content, out[i+1].Content)
			if err != nil {
				return nil, compareError(s.name, out[i], out[i+1], err)
			}
			if outcome == domain.PreferSecond {
				out[i], out[i+1] = out[i+1], out[i]
			}
		}
	}

	return out, nil
}

// Validate checks if the strategy is properly configured.
func (s *SlidingWindowStrategy) Validate() error {
	if s.name == "" {
		return ErrEmptyStrategyName
	}
	if s.cmp == nil {
		return ErrNilComparator
	}
	if err := validate.Struct(s.config); err != nil {
		return fmt.Errorf("strategy %s: %w", s.name, err)
	}
	return nil
}
