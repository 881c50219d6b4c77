package judge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-prp/internal/domain"
	"github.com/ahrav/go-prp/internal/testutils"
)

func TestNewPairwiseJudge(t *testing.T) {
	client := testutils.NewLexicographicJudgeClient()

	tests := []struct {
		name      string
		judgeName string
		client    *testutils.LexicographicJudgeClient
		config    JudgeConfig
		wantError string
	}{
		{
			name:      "valid configuration",
			judgeName: "test-judge",
			client:    client,
			config:    DefaultJudgeConfig(),
		},
		{
			name:      "empty judge name",
			judgeName: "",
			client:    client,
			config:    DefaultJudgeConfig(),
			wantError: "judge name cannot be empty",
		},
		{
			name:      "missing prompt template",
			judgeName: "test-judge",
			client:    client,
			config: JudgeConfig{
				MarkerFirst:  "line a",
				MarkerSecond: "line b",
			},
			wantError: "validation failed",
		},
		{
			name:      "identical markers",
			judgeName: "test-judge",
			client:    client,
			config: JudgeConfig{
				PromptTemplate: DefaultPromptTemplate,
				MarkerFirst:    "line a",
				MarkerSecond:   "line a",
			},
			wantError: "validation failed",
		},
		{
			name:      "malformed template",
			judgeName: "test-judge",
			client:    client,
			config: JudgeConfig{
				PromptTemplate: "{{.Query",
				MarkerFirst:    "line a",
				MarkerSecond:   "line b",
			},
			wantError: "failed to parse prompt template",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j, err := NewPairwiseJudge(tt.judgeName, tt.client, nil, tt.config)
			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				assert.Nil(t, j)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.judgeName, j.Name())
			assert.NoError(t, j.Validate())
		})
	}
}

func TestNewPairwiseJudgeNilClient(t *testing.T) {
	j, err := NewPairwiseJudge("test-judge", nil, nil, DefaultJudgeConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLM client cannot be nil")
	assert.Nil(t, j)
}

func TestCompareReconciliation(t *testing.T) {
	tests := []struct {
		name    string
		answer1 string
		answer2 string
		want    domain.Outcome
	}{
		{
			name:    "both agree first is preferred",
			answer1: "Line A",
			answer2: "Line B",
			want:    domain.PreferFirst,
		},
		{
			name:    "both agree second is preferred",
			answer1: "Line B",
			answer2: "Line A",
			want:    domain.PreferSecond,
		},
		{
			name:    "both pick the first slot",
			answer1: "Line A",
			answer2: "Line A",
			want:    domain.Inconclusive,
		},
		{
			name:    "both pick the second slot",
			answer1: "Line B",
			answer2: "Line B",
			want:    domain.Inconclusive,
		},
		{
			name:    "first answer malformed",
			answer1: "I cannot decide between these lines.",
			answer2: "Line B",
			want:    domain.Inconclusive,
		},
		{
			name:    "second answer malformed",
			answer1: "Line A",
			answer2: "Neither seems relevant.",
			want:    domain.Inconclusive,
		},
		{
			name:    "both answers empty",
			answer1: "",
			answer2: "",
			want:    domain.Inconclusive,
		},
		{
			name:    "marker match is case insensitive",
			answer1: "LINE A",
			answer2: "line b",
			want:    domain.PreferFirst,
		},
		{
			name:    "marker match tolerates surrounding whitespace",
			answer1: "  Line A  ",
			answer2: "\nLine B\n",
			want:    domain.PreferFirst,
		},
		{
			name:    "marker match is prefix only",
			answer1: "Line A is clearly more relevant because it mentions the topic.",
			answer2: "Line B, without a doubt.",
			want:    domain.PreferFirst,
		},
		{
			name:    "marker buried mid-answer does not count",
			answer1: "I would say Line A",
			answer2: "Line B",
			want:    domain.Inconclusive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := testutils.NewScriptedLLMClient(
				testutils.ScriptedResponse{Response: tt.answer1},
				testutils.ScriptedResponse{Response: tt.answer2},
			)
			j, err := NewPairwiseJudge("test-judge", client, nil, DefaultJudgeConfig())
			require.NoError(t, err)

			outcome, err := j.Compare(context.Background(), "query", "first text", "second text")
			require.NoError(t, err)
			assert.Equal(t, tt.want, outcome)
			assert.Equal(t, 2, client.Calls(), "every comparison costs exactly two oracle calls")
		})
	}
}

func TestCompareSwapsOperands(t *testing.T) {
	client := testutils.NewScriptedLLMClient(
		testutils.ScriptedResponse{Response: "Line A"},
		testutils.ScriptedResponse{Response: "Line B"},
	)
	j, err := NewPairwiseJudge("test-judge", client, nil, DefaultJudgeConfig())
	require.NoError(t, err)

	_, err = j.Compare(context.Background(), "the query", "alpha text", "beta text")
	require.NoError(t, err)

	prompts := client.Prompts()
	require.Len(t, prompts, 2)

	assert.Contains(t, prompts[0], "the query")
	assert.Contains(t, prompts[0], "Line A:\nalpha text")
	assert.Contains(t, prompts[0], "Line B:\nbeta text")

	// The second request swaps the operand slots.
	assert.Contains(t, prompts[1], "Line A:\nbeta text")
	assert.Contains(t, prompts[1], "Line B:\nalpha text")
}

func TestComparePositionalBiasCancellation(t *testing.T) {
	// A judge that always prefers the first slot it is shown must be
	// classified inconclusive by the swapped double call.
	client := testutils.NewPositionBiasedClient()
	j, err := NewPairwiseJudge("test-judge", client, nil, DefaultJudgeConfig())
	require.NoError(t, err)

	for _, pair := range [][2]string{
		{"apple", "banana"},
		{"banana", "apple"},
		{"same", "same"},
	} {
		outcome, err := j.Compare(context.Background(), "query", pair[0], pair[1])
		require.NoError(t, err)
		assert.Equal(t, domain.Inconclusive, outcome)
	}
}

func TestCompareOracleErrorPropagates(t *testing.T) {
	oracleErr := errors.New("connection refused")

	t.Run("first call fails", func(t *testing.T) {
		client := testutils.NewScriptedLLMClient(
			testutils.ScriptedResponse{Err: oracleErr},
		)
		j, err := NewPairwiseJudge("test-judge", client, nil, DefaultJudgeConfig())
		require.NoError(t, err)

		_, err = j.Compare(context.Background(), "query", "a", "b")
		require.Error(t, err)
		assert.ErrorIs(t, err, oracleErr)
		assert.Contains(t, err.Error(), "first judging call failed")
		assert.Equal(t, 1, client.Calls(), "no second call after a transport failure")
	})

	t.Run("swapped call fails", func(t *testing.T) {
		client := testutils.NewScriptedLLMClient(
			testutils.ScriptedResponse{Response: "Line A"},
			testutils.ScriptedResponse{Err: oracleErr},
		)
		j, err := NewPairwiseJudge("test-judge", client, nil, DefaultJudgeConfig())
		require.NoError(t, err)

		_, err = j.Compare(context.Background(), "query", "a", "b")
		require.Error(t, err)
		assert.ErrorIs(t, err, oracleErr)
		assert.Contains(t, err.Error(), "swapped judging call failed")
	})
}

func TestCompareCustomMarkers(t *testing.T) {
	config := JudgeConfig{
		PromptTemplate: "Query: {{.Query}}\nPassage A:\n{{.DocA}}\n\nPassage B:\n{{.DocB}}\nAnswer with \"Passage A\" or \"Passage B\".",
		MarkerFirst:    "passage a",
		MarkerSecond:   "passage b",
		SystemPrompt:   DefaultSystemPrompt,
		MaxTokens:      DefaultMaxTokens,
	}

	client := testutils.NewScriptedLLMClient(
		testutils.ScriptedResponse{Response: "Passage B"},
		testutils.ScriptedResponse{Response: "Passage A"},
	)
	j, err := NewPairwiseJudge("test-judge", client, nil, config)
	require.NoError(t, err)

	outcome, err := j.Compare(context.Background(), "q", "a", "b")
	require.NoError(t, err)
	assert.Equal(t, domain.PreferSecond, outcome)
}

func TestCompareWithLexicographicJudge(t *testing.T) {
	// End to end through the default template: the lexicographically
	// smaller line wins regardless of operand order.
	client := testutils.NewLexicographicJudgeClient()
	j, err := NewPairwiseJudge("test-judge", client, nil, DefaultJudgeConfig())
	require.NoError(t, err)

	outcome, err := j.Compare(context.Background(), "q", "apple", "banana")
	require.NoError(t, err)
	assert.Equal(t, domain.PreferFirst, outcome)

	outcome, err = j.Compare(context.Background(), "q", "banana", "apple")
	require.NoError(t, err)
	assert.Equal(t, domain.PreferSecond, outcome)

	outcome, err = j.Compare(context.Background(), "q", "same", "same")
	require.NoError(t, err)
	assert.Equal(t, domain.Inconclusive, outcome)
}
