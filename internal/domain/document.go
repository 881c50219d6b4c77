// Package domain contains pure, dependency-free domain models and types
// for the pairwise ranking engine.
package domain

import "strconv"

// Document represents a single line of text being ranked.
// Documents are immutable once created; strategies reorder them but must
// never modify their content.
type Document struct {
	// ID uniquely identifies this document within a run.
	// IDs are assigned by input order and carry no meaning afterward.
	ID string `json:"id"`

	// Content contains the document text.
	Content string `json:"content"`
}

// NewDocuments builds a document list from raw lines, assigning IDs by
// input position. Empty lines are skipped so IDs stay dense.
func NewDocuments(lines []string) []Document {
	docs := make([]Document, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		docs = append(docs, Document{
			ID:      strconv.Itoa(len(docs)),
			Content: line,
		})
	}
	return docs
}

// Outcome is the three-valued result of a pairwise relevance judgment.
// It is deliberately not a numeric comparator: strategies apply
// outcome-specific rules (score splits, swap conditions) that a plain
// ordering relation would hide.
type Outcome int

const (
	// Inconclusive indicates the judge could not establish a preference:
	// the swapped judgments disagreed, agreed on the same operand slot,
	// or an answer was unparseable.
	Inconclusive Outcome = iota

	// PreferFirst indicates both swapped judgments agreed the first
	// operand is more relevant.
	PreferFirst

	// PreferSecond indicates both swapped judgments agreed the second
	// operand is more relevant.
	PreferSecond
)

// String returns a human-readable outcome label for logs and metrics.
func (o Outcome) String() string {
	switch o {
	case PreferFirst:
		return "prefer_first"
	case PreferSecond:
		return "prefer_second"
	case Inconclusive:
		return "inconclusive"
	default:
		return "unknown"
	}
}

// RankedDocument pairs a document with the aggregate score the all-pairs
// strategy assigned to it. Other strategies do not produce scores.
type RankedDocument struct {
	Document

	// Score is the accumulated win count for this document.
	Score float64 `json:"score"`
}

// BudgetReport tracks oracle resource consumption across a single run.
type BudgetReport struct {
	// CallsMade counts oracle invocations (two per comparator call).
	CallsMade int `json:"calls_made"`

	// TokensIn is the cumulative prompt token count.
	TokensIn int `json:"tokens_in"`

	// TokensOut is the cumulative completion token count.
	TokensOut int `json:"tokens_out"`
}
