package domain

import "context"

type predictorUsageKey struct{}

// PredictorUsage collects token usage for a single HTTP request.
// The handler puts a mutable pointer into the context before calling the service;
// the provider writes after a completion; the handler reads it for response headers.
type PredictorUsage struct {
	TotalTokens int
	Used        bool // true if the predictor was consulted, even on a cache hit with 0 tokens
}

// NewContextWithUsage returns a context with a usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *PredictorUsage) {
	u := &PredictorUsage{}
	return context.WithValue(ctx, predictorUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *PredictorUsage {
	u, _ := ctx.Value(predictorUsageKey{}).(*PredictorUsage)
	return u
}

// AddTokens records consumed tokens.
func (u *PredictorUsage) AddTokens(n int) {
	if u != nil {
		u.TotalTokens += n
		u.Used = true
	}
}

// MarkUsed records a consultation that consumed no tokens.
func (u *PredictorUsage) MarkUsed() {
	if u != nil {
		u.Used = true
	}
}
