package strategies

import (
	"context"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-prp/internal/domain"
	"github.com/ahrav/go-prp/internal/ports"
)

var _ ports.RankStrategy = (*AllPairsStrategy)(nil)

// AllPairsStrategy ranks documents by comparing every unordered pair and
// aggregating win scores. A preferred document earns 1.0; an
// inconclusive comparison splits 0.5 to each side. The final order is a
// stable sort by score descending, so ties keep input order.
//
// Cost is exactly n(n-1)/2 comparator calls. Score accumulators are
// scoped to a single Rank invocation; nothing persists across runs.
type AllPairsStrategy struct {
	name   string
	cmp    ports.PairwiseComparator
	tracer trace.Tracer
}

// NewAllPairsStrategy creates an all-pairs aggregation strategy.
func NewAllPairsStrategy(name string, cmp ports.PairwiseComparator) (*AllPairsStrategy, error) {
	if name == "" {
		return nil, ErrEmptyStrategyName
	}
	if cmp == nil {
		return nil, ErrNilComparator
	}
	return &AllPairsStrategy{
		name:   name,
		cmp:    cmp,
		tracer: otel.Tracer("allpairs-strategy"),
	}, nil
}

// Name returns the unique identifier for this strategy instance.
func (s *AllPairsStrategy) Name() string { return s.name }

// Rank orders docs by aggregate pairwise score, highest first.
func (s *AllPairsStrategy) Rank(ctx context.Context, query string, docs []domain.Document) ([]domain.Document, error) {
	ranked, err := s.RankScored(ctx, query, docs)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Document, len(ranked))
	for i, rd := range ranked {
		out[i] = rd.Document
	}
	return out, nil
}

// RankScored is Rank with the aggregate scores attached, for callers that
// want to inspect win counts.
func (s *AllPairsStrategy) RankScored(ctx context.Context, query string, docs []domain.Document) ([]domain.RankedDocument, error) {
	ctx, span := s.tracer.Start(ctx, "AllPairsStrategy.Rank",
		trace.WithAttributes(
			attribute.String("strategy.name", s.name),
			attribute.Int("document_count", len(docs)),
		))
	defer span.End()

	n := len(docs)
	ranked := make([]domain.RankedDocument, n)
	for i, doc := range docs {
		ranked[i] = domain.RankedDocument{Document: doc}
	}

	// Pair iteration follows input order (i < j) so the comparator call
	// sequence is deterministic.
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			outcome, err := s.cmp.Compare(ctx, query, docs[i].Content, docs[j].Content)
			if err != nil {
				return nil, compareError(s.name, docs[i], docs[j], err)
			}

			switch outcome {
			case domain.PreferFirst:
				ranked[i].Score += 1.0
			case domain.PreferSecond:
				ranked[j].Score += 1.0
			case domain.Inconclusive:
				ranked[i].Score += 0.5
				ranked[j].Score += 0.5
			}
		}
	}

	// Stable: equal scores keep original input order.
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Score > ranked[b].Score
	})

	return ranked, nil
}

// Validate checks if the strategy is properly configured.
func (s *AllPairsStrategy) Validate() error {
	if s.name == "" {
		return ErrEmptyStrategyName
	}
	if s.cmp == nil {
		return ErrNilComparator
	}
	return nil
}
