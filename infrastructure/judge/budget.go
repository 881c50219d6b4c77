package judge

import (
	"context"
	"fmt"
	"sync"

	"github.com/ahrav/go-prp/internal/domain"
	"github.com/ahrav/go-prp/internal/ports"
)

var _ ports.PairwiseComparator = (*BudgetGuard)(nil)

// BudgetGuard wraps a PairwiseComparator and enforces an oracle call cap.
// All-pairs ranking is quadratic in oracle calls, so an explicit ceiling
// keeps a misconfigured run from burning an unbounded budget.
//
// The guard checks the cap before delegating, so the comparison that
// would exceed the budget is never issued.
type BudgetGuard struct {
	next ports.PairwiseComparator

	// maxCalls caps oracle invocations for the run; zero means uncapped.
	maxCalls int

	mu          sync.Mutex
	comparisons int
}

// oracleCallsPerComparison reflects the swapped double-call protocol.
const oracleCallsPerComparison = 2

// NewBudgetGuard wraps next with an oracle call cap. maxCalls counts
// oracle invocations, not comparisons; zero disables the cap.
func NewBudgetGuard(next ports.PairwiseComparator, maxCalls int) (*BudgetGuard, error) {
	if next == nil {
		return nil, fmt.Errorf("budget guard: comparator is required")
	}
	if maxCalls < 0 {
		return nil, fmt.Errorf("budget guard: max calls cannot be negative, got %d", maxCalls)
	}
	return &BudgetGuard{next: next, maxCalls: maxCalls}, nil
}

// Compare delegates to the wrapped comparator after charging the budget.
func (g *BudgetGuard) Compare(ctx context.Context, query, first, second string) (domain.Outcome, error) {
	g.mu.Lock()
	spent := (g.comparisons + 1) * oracleCallsPerComparison
	if g.maxCalls > 0 && spent > g.maxCalls {
		g.mu.Unlock()
		return domain.Inconclusive, fmt.Errorf("%w: %d oracle calls would exceed cap of %d",
			domain.ErrBudgetExceeded, spent, g.maxCalls)
	}
	g.comparisons++
	g.mu.Unlock()

	return g.next.Compare(ctx, query, first, second)
}

// Comparisons returns the number of comparator calls made so far.
func (g *BudgetGuard) Comparisons() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.comparisons
}

// Report returns the oracle call accounting for the run so far.
// Token counts are tracked at the client layer (llm.UsageMeter); this
// report covers call counts only.
func (g *BudgetGuard) Report() domain.BudgetReport {
	g.mu.Lock()
	defer g.mu.Unlock()
	return domain.BudgetReport{CallsMade: g.comparisons * oracleCallsPerComparison}
}
