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

var _ ports.RankStrategy = (*SortingStrategy)(nil)

// SortingStrategy ranks documents with a stable comparison sort whose
// three-way comparator is derived from the pairwise judge: PreferFirst
// sorts the first document earlier, PreferSecond the second, and
// Inconclusive compares as equal so input order decides.
//
// The judge need not be transitive. With a non-transitive comparator the
// result is whatever the stable sort produces; this is a documented
// approximation, not repaired by re-querying or cycle resolution. Cost is
// O(n log n) comparator calls, deterministic for a deterministic
// comparator sequence.
type SortingStrategy struct {
	name   string
	cmp    ports.PairwiseComparator
	tracer trace.Tracer
}

// NewSortingStrategy creates a comparison-sort ranking strategy.
func NewSortingStrategy(name string, cmp ports.PairwiseComparator) (*SortingStrategy, error) {
	if name == "" {
		return nil, ErrEmptyStrategyName
	}
	if cmp == nil {
		return nil, ErrNilComparator
	}
	return &SortingStrategy{
		name:   name,
		cmp:    cmp,
		tracer: otel.Tracer("sorting-strategy"),
	}, nil
}

// Name returns the unique identifier for this strategy instance.
func (s *SortingStrategy) Name() string { return s.name }

// Rank sorts docs by relevance to query using the pairwise comparator.
//
// sort.SliceStable cannot surface an error mid-sort, so the first oracle
// failure latches: remaining comparisons report equal and the sorted
// slice is discarded. No partial order escapes on error.
func (s *SortingStrategy) Rank(ctx context.Context, query string, docs []domain.Document) ([]domain.Document, error) {
	ctx, span := s.tracer.Start(ctx, "SortingStrategy.Rank",
		trace.WithAttributes(
			attribute.String("strategy.name", s.name),
			attribute.Int("document_count", len(docs)),
		))
	defer span.End()

	out := cloneDocuments(docs)

	var cmpErr error
	sort.SliceStable(out, func(i, j int) bool {
		if cmpErr != nil {
			return false
		}

		outcome, err := s.cmp.Compare(ctx, query, out[i].Content, out[j].Content)
		if err != nil {
			cmpErr = compareError(s.name, out[i], out[j], err)
			return false
		}
		return outcome == domain.PreferFirst
	})

	if cmpErr != nil {
		return nil, cmpErr
	}
	return out, nil
}

// Validate checks if the strategy is properly configured.
func (s *SortingStrategy) Validate() error {
	if s.name == "" {
		return ErrEmptyStrategyName
	}
	if s.cmp == nil {
		return ErrNilComparator
	}
	return nil
}
