package strategies

import (
	"context"
	"sync"

	"github.com/ahrav/go-prp/internal/domain"
)

// comparatorFunc adapts a plain function to ports.PairwiseComparator.
type comparatorFunc func(query, first, second string) (domain.Outcome, error)

func (f comparatorFunc) Compare(_ context.Context, query, first, second string) (domain.Outcome, error) {
	return f(query, first, second)
}

// lexComparator prefers the lexicographically smaller document and is
// inconclusive on equal content. It is consistent and transitive, which
// makes the expected order of every strategy the plain sorted order.
func lexComparator() comparatorFunc {
	return func(_, first, second string) (domain.Outcome, error) {
		switch {
		case first < second:
			return domain.PreferFirst, nil
		case first > second:
			return domain.PreferSecond, nil
		default:
			return domain.Inconclusive, nil
		}
	}
}

// countingComparator wraps a comparator and records every call.
type countingComparator struct {
	next comparatorFunc

	mu    sync.Mutex
	calls int
	pairs [][2]string
}

func (c *countingComparator) Compare(ctx context.Context, query, first, second string) (domain.Outcome, error) {
	c.mu.Lock()
	c.calls++
	c.pairs = append(c.pairs, [2]string{first, second})
	c.mu.Unlock()
	return c.next.Compare(ctx, query, first, second)
}

func (c *countingComparator) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func makeDocs(contents ...string) []domain.Document {
	return domain.NewDocuments(contents)
}

func contentsOf(docs []domain.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Content
	}
	return out
}
