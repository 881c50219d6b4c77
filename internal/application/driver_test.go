package application

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-prp/infrastructure/judge"
	"github.com/ahrav/go-prp/infrastructure/strategies"
	"github.com/ahrav/go-prp/internal/domain"
	"github.com/ahrav/go-prp/internal/testutils"
)

type comparatorFunc func(query, first, second string) (domain.Outcome, error)

func (f comparatorFunc) Compare(_ context.Context, query, first, second string) (domain.Outcome, error) {
	return f(query, first, second)
}

// lexComparator prefers the lexicographically smaller document,
// inconclusive on equal content.
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

type countingComparator struct {
	next comparatorFunc

	mu    sync.Mutex
	calls int
}

func (c *countingComparator) Compare(ctx context.Context, query, first, second string) (domain.Outcome, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.next.Compare(ctx, query, first, second)
}

func (c *countingComparator) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func contentsOf(docs []domain.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Content
	}
	return out
}

func TestNewEngine(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		engine, err := NewEngine(lexComparator(), nil)
		require.NoError(t, err)
		assert.NotNil(t, engine)
	})

	t.Run("nil comparator", func(t *testing.T) {
		engine, err := NewEngine(nil, nil)
		assert.ErrorIs(t, err, strategies.ErrNilComparator)
		assert.Nil(t, engine)
	})
}

func TestEngineRunMethods(t *testing.T) {
	tests := []struct {
		name string
		cfg  RunConfig
		in   []string
		want []string
	}{
		{
			name: "allpairs",
			cfg:  RunConfig{Query: "q", Method: MethodAllPairs},
			in:   []string{"banana", "apple", "cherry"},
			want: []string{"apple", "banana", "cherry"},
		},
		{
			name: "sorting",
			cfg:  RunConfig{Query: "q", Method: MethodSorting},
			in:   []string{"delta", "alpha", "charlie", "bravo"},
			want: []string{"alpha", "bravo", "charlie", "delta"},
		},
		{
			name: "sliding",
			cfg:  RunConfig{Query: "q", Method: MethodSliding},
			in:   []string{"zeta", "beta", "gamma", "alpha"},
			want: []string{"alpha", "beta", "gamma", "zeta"},
		},
		{
			name: "sorting with top-k",
			cfg:  RunConfig{Query: "q", Method: MethodSorting, TopK: 2},
			in:   []string{"delta", "alpha", "charlie", "bravo"},
			want: []string{"alpha", "bravo"},
		},
		{
			name: "top-k larger than input returns everything",
			cfg:  RunConfig{Query: "q", Method: MethodSorting, TopK: 10},
			in:   []string{"beta", "alpha"},
			want: []string{"alpha", "beta"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := NewEngine(lexComparator(), nil)
			require.NoError(t, err)

			out, err := engine.Run(context.Background(), domain.NewDocuments(tt.in), tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, contentsOf(out))
		})
	}
}

func TestEngineRunEmptyInput(t *testing.T) {
	cmp := &countingComparator{next: lexComparator()}
	engine, err := NewEngine(cmp, nil)
	require.NoError(t, err)

	out, err := engine.Run(context.Background(), nil, RunConfig{Query: "q", Method: MethodSorting})
	assert.ErrorIs(t, err, domain.ErrNoDocuments)
	assert.Nil(t, out)
	assert.Equal(t, 0, cmp.Calls())
}

func TestEngineRunUnknownMethod(t *testing.T) {
	cmp := &countingComparator{next: lexComparator()}
	engine, err := NewEngine(cmp, nil)
	require.NoError(t, err)

	docs := domain.NewDocuments([]string{"a", "b"})
	out, err := engine.Run(context.Background(), docs, RunConfig{Query: "q", Method: Method("quicksort")})
	assert.ErrorIs(t, err, domain.ErrUnknownMethod)
	assert.Nil(t, out)
	assert.Equal(t, 0, cmp.Calls(), "no oracle calls before method validation")
}

func TestEngineRunInvalidConfig(t *testing.T) {
	engine, err := NewEngine(lexComparator(), nil)
	require.NoError(t, err)

	docs := domain.NewDocuments([]string{"a", "b"})

	t.Run("missing query", func(t *testing.T) {
		_, err := engine.Run(context.Background(), docs, RunConfig{Method: MethodSorting})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid run configuration")
	})

	t.Run("negative top-k", func(t *testing.T) {
		_, err := engine.Run(context.Background(), docs, RunConfig{Query: "q", Method: MethodSorting, TopK: -1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid run configuration")
	})
}

func TestEngineSlidingPassesFollowTopK(t *testing.T) {
	docs := domain.NewDocuments([]string{"echo", "delta", "charlie", "bravo", "alpha"})
	n := len(docs)

	t.Run("top-k derives pass count", func(t *testing.T) {
		cmp := &countingComparator{next: lexComparator()}
		engine, err := NewEngine(cmp, nil)
		require.NoError(t, err)

		out, err := engine.Run(context.Background(), docs, RunConfig{Query: "q", Method: MethodSliding, TopK: 2})
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "bravo"}, contentsOf(out))
		assert.Equal(t, 2*(n-1), cmp.Calls())
	})

	t.Run("explicit passes win over top-k", func(t *testing.T) {
		cmp := &countingComparator{next: lexComparator()}
		engine, err := NewEngine(cmp, nil)
		require.NoError(t, err)

		out, err := engine.Run(context.Background(), docs, RunConfig{Query: "q", Method: MethodSliding, TopK: 1, Passes: 3})
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha"}, contentsOf(out))
		assert.Equal(t, 3*(n-1), cmp.Calls())
	})

	t.Run("no top-k runs full passes", func(t *testing.T) {
		cmp := &countingComparator{next: lexComparator()}
		engine, err := NewEngine(cmp, nil)
		require.NoError(t, err)

		_, err = engine.Run(context.Background(), docs, RunConfig{Query: "q", Method: MethodSliding})
		require.NoError(t, err)
		assert.Equal(t, n*(n-1), cmp.Calls())
	})
}

func TestEngineTopKMatchesFullRunPrefix(t *testing.T) {
	in := []string{"kiwi", "apple", "mango", "fig", "pear", "date"}

	for _, method := range []Method{MethodAllPairs, MethodSorting, MethodSliding} {
		t.Run(string(method), func(t *testing.T) {
			engine, err := NewEngine(lexComparator(), nil)
			require.NoError(t, err)

			full, err := engine.Run(context.Background(), domain.NewDocuments(in), RunConfig{Query: "q", Method: method})
			require.NoError(t, err)

			for k := 1; k <= len(in); k++ {
				truncated, err := engine.Run(context.Background(), domain.NewDocuments(in), RunConfig{Query: "q", Method: method, TopK: k})
				require.NoError(t, err)
				assert.Equal(t, contentsOf(full)[:k], contentsOf(truncated), "k=%d", k)
			}
		})
	}
}

func TestEngineWithJudgePipeline(t *testing.T) {
	// Full stack: lexicographic oracle under the swapped double-call
	// judge, through the engine.
	client := testutils.NewLexicographicJudgeClient()
	j, err := judge.NewPairwiseJudge("lex", client, nil, judge.DefaultJudgeConfig())
	require.NoError(t, err)

	engine, err := NewEngine(j, nil)
	require.NoError(t, err)

	docs := domain.NewDocuments([]string{"delta", "alpha", "charlie", "bravo"})
	out, err := engine.Run(context.Background(), docs, RunConfig{Query: "most alphabetical", Method: MethodSorting})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "bravo", "charlie", "delta"}, contentsOf(out))
}

func TestEngineBiasedJudgePreservesInputOrder(t *testing.T) {
	// A position-biased oracle yields only inconclusive outcomes, so
	// every method degrades to the input order.
	client := testutils.NewPositionBiasedClient()
	j, err := judge.NewPairwiseJudge("biased", client, nil, judge.DefaultJudgeConfig())
	require.NoError(t, err)

	engine, err := NewEngine(j, nil)
	require.NoError(t, err)

	in := []string{"gamma", "alpha", "beta"}
	for _, method := range []Method{MethodAllPairs, MethodSorting, MethodSliding} {
		out, err := engine.Run(context.Background(), domain.NewDocuments(in), RunConfig{Query: "q", Method: method})
		require.NoError(t, err)
		assert.Equal(t, in, contentsOf(out), "method=%s", method)
	}
}
