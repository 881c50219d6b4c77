package strategies

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-prp/internal/domain"
)

func TestNewSlidingWindowStrategy(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		s, err := NewSlidingWindowStrategy("sliding", lexComparator(), SlidingWindowConfig{Passes: 2})
		require.NoError(t, err)
		assert.Equal(t, "sliding", s.Name())
		assert.NoError(t, s.Validate())
	})

	t.Run("zero passes defaults later", func(t *testing.T) {
		_, err := NewSlidingWindowStrategy("sliding", lexComparator(), SlidingWindowConfig{})
		assert.NoError(t, err)
	})

	t.Run("negative passes rejected", func(t *testing.T) {
		_, err := NewSlidingWindowStrategy("sliding", lexComparator(), SlidingWindowConfig{Passes: -1})
		assert.Error(t, err)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := NewSlidingWindowStrategy("", lexComparator(), SlidingWindowConfig{})
		assert.ErrorIs(t, err, ErrEmptyStrategyName)
	})

	t.Run("nil comparator", func(t *testing.T) {
		_, err := NewSlidingWindowStrategy("sliding", nil, SlidingWindowConfig{})
		assert.ErrorIs(t, err, ErrNilComparator)
	})
}

func TestSlidingRankFullPasses(t *testing.T) {
	// With passes unset the strategy runs n passes, which fully sorts
	// under a consistent comparator.
	s, err := NewSlidingWindowStrategy("sliding", lexComparator(), SlidingWindowConfig{})
	require.NoError(t, err)

	docs := makeDocs("zeta", "beta", "gamma", "alpha")
	out, err := s.Rank(context.Background(), "q", docs)
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha", "beta", "gamma", "zeta"}, contentsOf(out))
}

func TestSlidingSinglePassBubblesBestToFront(t *testing.T) {
	s, err := NewSlidingWindowStrategy("sliding", lexComparator(), SlidingWindowConfig{Passes: 1})
	require.NoError(t, err)

	docs := makeDocs("zeta", "beta", "gamma", "alpha")
	out, err := s.Rank(context.Background(), "q", docs)
	require.NoError(t, err)

	// One right-to-left pass carries the most preferred document all the
	// way to position 0.
	assert.Equal(t, "alpha", out[0].Content)
	assert.Equal(t, []string{"alpha", "zeta", "beta", "gamma"}, contentsOf(out))
}

func TestSlidingKPassesFixTopK(t *testing.T) {
	s, err := NewSlidingWindowStrategy("sliding", lexComparator(), SlidingWindowConfig{Passes: 2})
	require.NoError(t, err)

	docs := makeDocs("echo", "delta", "charlie", "bravo", "alpha")
	out, err := s.Rank(context.Background(), "q", docs)
	require.NoError(t, err)

	// k passes guarantee the first k positions hold the k most preferred
	// documents in order.
	assert.Equal(t, "alpha", out[0].Content)
	assert.Equal(t, "bravo", out[1].Content)
	assert.Len(t, out, 5)
}

func TestSlidingCallCount(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		passes    int
		wantCalls int
	}{
		{name: "one pass", n: 5, passes: 1, wantCalls: 4},
		{name: "three passes", n: 5, passes: 3, wantCalls: 12},
		{name: "defaulted passes", n: 4, passes: 0, wantCalls: 12},
		{name: "single document", n: 1, passes: 3, wantCalls: 0},
		{name: "empty", n: 0, passes: 3, wantCalls: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contents := make([]string, tt.n)
			for i := range contents {
				contents[i] = string(rune('a' + i))
			}

			cmp := &countingComparator{next: lexComparator()}
			s, err := NewSlidingWindowStrategy("sliding", cmp, SlidingWindowConfig{Passes: tt.passes})
			require.NoError(t, err)

			_, err = s.Rank(context.Background(), "q", makeDocs(contents...))
			require.NoError(t, err)
			assert.Equal(t, tt.wantCalls, cmp.Calls())
		})
	}
}

func TestSlidingInconclusiveNeverSwaps(t *testing.T) {
	cmp := comparatorFunc(func(_, _, _ string) (domain.Outcome, error) {
		return domain.Inconclusive, nil
	})
	s, err := NewSlidingWindowStrategy("sliding", cmp, SlidingWindowConfig{})
	require.NoError(t, err)

	docs := makeDocs("gamma", "alpha", "beta")
	out, err := s.Rank(context.Background(), "q", docs)
	require.NoError(t, err)

	assert.Equal(t, []string{"gamma", "alpha", "beta"}, contentsOf(out))
}

func TestSlidingDoesNotMutateInput(t *testing.T) {
	s, err := NewSlidingWindowStrategy("sliding", lexComparator(), SlidingWindowConfig{})
	require.NoError(t, err)

	docs := makeDocs("zeta", "beta", "alpha")
	_, err = s.Rank(context.Background(), "q", docs)
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "beta", "alpha"}, contentsOf(docs))
}

func TestSlidingComparatorError(t *testing.T) {
	cmpErr := errors.New("oracle unavailable")
	cmp := comparatorFunc(func(_, _, _ string) (domain.Outcome, error) {
		return domain.Inconclusive, cmpErr
	})
	s, err := NewSlidingWindowStrategy("sliding", cmp, SlidingWindowConfig{Passes: 1})
	require.NoError(t, err)

	out, err := s.Rank(context.Background(), "q", makeDocs("b", "a"))
	require.Error(t, err)
	assert.ErrorIs(t, err, cmpErr)
	assert.Nil(t, out)
}

func TestSlidingAdjacentComparisonOrder(t *testing.T) {
	cmp := &countingComparator{next: lexComparator()}
	s, err := NewSlidingWindowStrategy("sliding", cmp, SlidingWindowConfig{Passes: 1})
	require.NoError(t, err)

	_, err = s.Rank(context.Background(), "q", makeDocs("c", "b", "a"))
	require.NoError(t, err)

	// Right to left: (b,a) swaps to bring a forward, then (c,a) swaps.
	want := [][2]string{{"b", "a"}, {"c", "a"}}
	assert.Equal(t, want, cmp.pairs)
}
