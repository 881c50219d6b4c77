package llm

import (
	"context"
	"sync"

	"github.com/ahrav/go-prp/internal/domain"
)

// UsageMeter accumulates oracle calls and token usage across a run.
// It is safe for concurrent use and read out once at the end of a run.
type UsageMeter struct {
	mu        sync.Mutex
	calls     int
	tokensIn  int
	tokensOut int
}

// Snapshot returns the accumulated usage as a BudgetReport.
func (u *UsageMeter) Snapshot() domain.BudgetReport {
	u.mu.Lock()
	defer u.mu.Unlock()
	return domain.BudgetReport{
		CallsMade: u.calls,
		TokensIn:  u.tokensIn,
		TokensOut: u.tokensOut,
	}
}

func (u *UsageMeter) record(tokensIn, tokensOut int) {
	u.mu.Lock()
	u.calls++
	u.tokensIn += tokensIn
	u.tokensOut += tokensOut
	u.mu.Unlock()
}

// usageLLM records usage into a UsageMeter.
type usageLLM struct {
	next  CoreLLM
	meter *UsageMeter
}

// UsageMiddleware creates middleware that accumulates call and token
// counts into meter. Failed requests still count as calls; their token
// counts are whatever the provider reported before failing.
func UsageMiddleware(meter *UsageMeter) Middleware {
	return func(next CoreLLM) CoreLLM {
		return &usageLLM{next: next, meter: meter}
	}
}

// DoRequest forwards the request and records its usage.
func (u *usageLLM) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	response, tokensIn, tokensOut, err := u.next.DoRequest(ctx, prompt, opts)
	u.meter.record(tokensIn, tokensOut)
	return response, tokensIn, tokensOut, err
}

// GetModel returns the model name from the wrapped implementation.
func (u *usageLLM) GetModel() string { return u.next.GetModel() }

// SetModel updates the model name in the wrapped implementation.
func (u *usageLLM) SetModel(m string) { u.next.SetModel(m) }
