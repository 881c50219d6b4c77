// Package strategies provides the pairwise ranking prompting strategies
// that turn a three-valued comparator into a total order.
//
// All strategies share the same contract: the input slice is never
// mutated, the output is a permutation of the input, comparator calls are
// issued strictly sequentially in the strategy's documented iteration
// order, and no state survives across calls to Rank. The comparator may
// be non-transitive; strategies tolerate intransitivity rather than
// repairing it.
package strategies

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ahrav/go-prp/internal/domain"
)

// Common errors returned by ranking strategies.
var (
	// ErrEmptyStrategyName is returned when a strategy is created with an
	// empty name.
	ErrEmptyStrategyName = errors.New("strategy name cannot be empty")

	// ErrNilComparator is returned when a strategy is created without a
	// comparator.
	ErrNilComparator = errors.New("comparator cannot be nil")
)

// Package-level validator instance for configuration validation.
var validate = validator.New()

// cloneDocuments copies the input so strategies can reorder freely
// without mutating the caller's slice.
func cloneDocuments(docs []domain.Document) []domain.Document {
	out := make([]domain.Document, len(docs))
	copy(out, docs)
	return out
}

// compareError wraps a comparator failure with the pair that triggered
// it. Comparator errors are oracle failures and always abort the run.
func compareError(strategy string, a, b domain.Document, err error) error {
	return fmt.Errorf("%s: comparing document %s with %s: %w", strategy, a.ID, b.ID, err)
}
