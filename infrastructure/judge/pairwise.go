// Package judge adapts an LLM client into the three-valued pairwise
// comparator the ranking strategies consume.
package judge

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"

	"github.com/ahrav/go-prp/internal/domain"
	"github.com/ahrav/go-prp/internal/ports"
)

var (
	_ ports.PairwiseComparator = (*PairwiseJudge)(nil)

	// foldCaser is a package-level Unicode case folder so answer
	// normalization does not allocate a caser per comparison.
	foldCaser = cases.Fold()

	// validate is the package-level validator for configuration structs.
	validate = validator.New()
)

// Default marker and prompt constants. The markers are matched as
// prefixes of the case-folded, trimmed judge answer.
const (
	DefaultMarkerFirst  = "line a"
	DefaultMarkerSecond = "line b"
	DefaultSystemPrompt = "You are a helpful assistant."
	DefaultMaxTokens    = 16
)

// DefaultPromptTemplate asks the judge to pick one of two lines by marker.
// The template receives .Query, .DocA, and .DocB.
const DefaultPromptTemplate = `Given the query:
{{.Query}}

Compare the following two lines:

Line A:
{{.DocA}}

Line B:
{{.DocB}}

Which line is more relevant to the query? Please answer with "Line A" or "Line B".`

// JudgeConfig defines the configuration parameters for a PairwiseJudge.
// All fields are validated during construction.
type JudgeConfig struct {
	// PromptTemplate is the Go template used to render the judging
	// request. It must reference {{.Query}}, {{.DocA}}, and {{.DocB}}.
	PromptTemplate string `yaml:"prompt_template" json:"prompt_template" validate:"required"`

	// MarkerFirst is the answer prefix that selects the first operand.
	MarkerFirst string `yaml:"marker_first" json:"marker_first" validate:"required"`

	// MarkerSecond is the answer prefix that selects the second operand.
	MarkerSecond string `yaml:"marker_second" json:"marker_second" validate:"required,nefield=MarkerFirst"`

	// SystemPrompt is the fixed system-role instruction sent with every
	// judging request.
	SystemPrompt string `yaml:"system_prompt" json:"system_prompt"`

	// Temperature controls randomness in judge answers. Zero keeps
	// judgments as reproducible as the provider allows.
	Temperature float64 `yaml:"temperature" json:"temperature" validate:"min=0.0,max=2.0"`

	// MaxTokens limits the judge answer length. Only the leading marker
	// is inspected, so a small budget suffices.
	MaxTokens int `yaml:"max_tokens" json:"max_tokens" validate:"min=0,max=2000"`
}

// DefaultJudgeConfig returns a JudgeConfig matching the reference
// prompt and marker pair.
func DefaultJudgeConfig() JudgeConfig {
	return JudgeConfig{
		PromptTemplate: DefaultPromptTemplate,
		MarkerFirst:    DefaultMarkerFirst,
		MarkerSecond:   DefaultMarkerSecond,
		SystemPrompt:   DefaultSystemPrompt,
		Temperature:    0.0,
		MaxTokens:      DefaultMaxTokens,
	}
}

// PairwiseJudge implements ports.PairwiseComparator by calling the LLM
// twice per comparison with operand order swapped, then reconciling the
// two answers into a single outcome.
//
// The double call cancels positional bias: a judge that always prefers
// whichever operand is shown first will produce disagreeing swapped
// answers and be classified Inconclusive rather than silently favoring
// one side. Malformed answers fold into Inconclusive without retry;
// transport failures propagate and abort the run.
//
// The judge retains no state between comparisons and never caches
// results, even for repeated pairs, matching the oracle's potential
// non-determinism.
type PairwiseJudge struct {
	name   string
	config JudgeConfig
	client ports.LLMClient
	tmpl   *template.Template

	// markers are pre-folded so each answer only needs one fold pass.
	markerFirst  string
	markerSecond string

	tracer  trace.Tracer
	metrics ports.MetricsCollector
}

// NewPairwiseJudge creates a PairwiseJudge with the given configuration.
// The collector may be nil to disable metrics.
func NewPairwiseJudge(name string, client ports.LLMClient, collector ports.MetricsCollector, config JudgeConfig) (*PairwiseJudge, error) {
	if name == "" {
		return nil, fmt.Errorf("judge name cannot be empty")
	}
	if client == nil {
		return nil, fmt.Errorf("LLM client cannot be nil")
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	tmpl, err := template.New("pairwisePrompt").Parse(config.PromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt template: %w", err)
	}

	return &PairwiseJudge{
		name:         name,
		config:       config,
		client:       client,
		tmpl:         tmpl,
		markerFirst:  foldCaser.String(config.MarkerFirst),
		markerSecond: foldCaser.String(config.MarkerSecond),
		tracer:       otel.Tracer("pairwise-judge"),
		metrics:      collector,
	}, nil
}

// Name returns the unique identifier for this judge instance.
func (j *PairwiseJudge) Name() string { return j.name }

// operandSlot identifies which prompt slot a single answer selected.
type operandSlot int

const (
	slotNone operandSlot = iota
	slotFirst
	slotSecond
)

// Compare judges the relative relevance of first and second for query.
//
// It issues two oracle calls, the second with operands swapped, and
// applies the fixed reconciliation rule: the first answer must select the
// first slot and the swapped answer the second slot (or vice versa) for a
// preference to stand; every other combination is Inconclusive.
func (j *PairwiseJudge) Compare(ctx context.Context, query, first, second string) (domain.Outcome, error) {
	ctx, span := j.tracer.Start(ctx, "PairwiseJudge.Compare",
		trace.WithAttributes(attribute.String("judge.name", j.name)))
	defer span.End()

	answer1, err := j.ask(ctx, query, first, second)
	if err != nil {
		return domain.Inconclusive, fmt.Errorf("judge %s: first judging call failed: %w", j.name, err)
	}

	answer2, err := j.ask(ctx, query, second, first)
	if err != nil {
		return domain.Inconclusive, fmt.Errorf("judge %s: swapped judging call failed: %w", j.name, err)
	}

	outcome := j.reconcile(answer1, answer2)

	span.SetAttributes(attribute.String("judge.outcome", outcome.String()))
	if j.metrics != nil {
		j.metrics.RecordCounter("comparator_decisions_total", 1, map[string]string{
			"judge":   j.name,
			"outcome": outcome.String(),
		})
	}

	return outcome, nil
}

// ask renders the judging prompt for one operand ordering and returns the
// oracle's free-text answer.
func (j *PairwiseJudge) ask(ctx context.Context, query, docA, docB string) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Query string
		DocA  string
		DocB  string
	}{Query: query, DocA: docA, DocB: docB}

	if err := j.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt template: %w", err)
	}

	options := map[string]any{"temperature": j.config.Temperature}
	if j.config.SystemPrompt != "" {
		options["system"] = j.config.SystemPrompt
	}
	if j.config.MaxTokens > 0 {
		options["max_tokens"] = j.config.MaxTokens
	}

	return j.client.Complete(ctx, buf.String(), options)
}

// reconcile collapses the two raw answers into one outcome.
// The swapped call shows the original first operand in the second slot,
// so agreement means the answers select opposite slots.
func (j *PairwiseJudge) reconcile(answer1, answer2 string) domain.Outcome {
	s1 := j.selectedSlot(answer1)
	s2 := j.selectedSlot(answer2)

	switch {
	case s1 == slotFirst && s2 == slotSecond:
		return domain.PreferFirst
	case s1 == slotSecond && s2 == slotFirst:
		return domain.PreferSecond
	default:
		return domain.Inconclusive
	}
}

// selectedSlot parses which operand slot a single answer picked.
// The answer is case-folded and trimmed, then prefix-matched against the
// marker pair. Anything else counts as no selection.
func (j *PairwiseJudge) selectedSlot(answer string) operandSlot {
	folded := strings.TrimSpace(foldCaser.String(answer))
	switch {
	case strings.HasPrefix(folded, j.markerFirst):
		return slotFirst
	case strings.HasPrefix(folded, j.markerSecond):
		return slotSecond
	default:
		return slotNone
	}
}

// Validate checks if the judge is properly configured and ready to
// compare documents.
func (j *PairwiseJudge) Validate() error {
	if j.client == nil {
		return fmt.Errorf("judge %s: LLM client is not configured", j.name)
	}
	if err := validate.Struct(j.config); err != nil {
		return fmt.Errorf("judge %s: %w", j.name, err)
	}
	if j.client.GetModel() == "" {
		return fmt.Errorf("judge %s: LLM client model is not configured", j.name)
	}
	return nil
}
