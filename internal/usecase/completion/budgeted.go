// Package completion guards the completion provider with a token budget.
package completion

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/datadesk/internal/domain"
)

// BudgetChecker is the local interface for budget enforcement.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	RemainingDaily() int64
	RemainingMonthly() int64
}

// BudgetedPredictor wraps a provider with budget enforcement.
// Transport metrics (requests, duration, tokens) are recorded by the provider itself;
// this layer owns the budget and its gauge only.
type BudgetedPredictor struct {
	inner     domain.Predictor
	model     string
	budget    BudgetChecker
	remaining *prometheus.GaugeVec
	logger    *zap.Logger
}

// NewBudgetedPredictor wraps inner. remaining is a gauge vec labeled (model, period) and may be nil.
func NewBudgetedPredictor(
	inner domain.Predictor, model string,
	budget BudgetChecker, remaining *prometheus.GaugeVec, logger *zap.Logger,
) *BudgetedPredictor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BudgetedPredictor{
		inner:     inner,
		model:     model,
		budget:    budget,
		remaining: remaining,
		logger:    logger,
	}
}

// Predict checks the budget, delegates, and records the tokens the call consumed.
func (p *BudgetedPredictor) Predict(ctx context.Context, partial string, n int) ([]string, error) {
	if p.budget != nil {
		if err := p.budget.Check(ctx); err != nil {
			p.logger.Warn("Predictor budget exceeded", zap.String("model", p.model), zap.Error(err))
			return nil, fmt.Errorf("budget check: %w", err)
		}
	}

	// The provider reports tokens through the context; a private collector isolates this call.
	callCtx, callUsage := domain.NewContextWithUsage(ctx)
	start := time.Now()

	out, err := p.inner.Predict(callCtx, partial, n)
	duration := time.Since(start)

	if outer := domain.UsageFromContext(ctx); outer != nil && callUsage.Used {
		outer.AddTokens(callUsage.TotalTokens)
	}

	if err != nil {
		p.logger.Error("Completion request failed",
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, fmt.Errorf("predict: %w", err)
	}

	if p.budget != nil && callUsage.TotalTokens > 0 {
		p.budget.Record(int64(callUsage.TotalTokens))
		if p.remaining != nil {
			p.remaining.WithLabelValues(p.model, "daily").Set(float64(p.budget.RemainingDaily()))
			p.remaining.WithLabelValues(p.model, "monthly").Set(float64(p.budget.RemainingMonthly()))
		}
	}

	p.logger.Debug("Completion request completed",
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Int("completions", len(out)),
		zap.Int("total_tokens", callUsage.TotalTokens),
	)
	return out, nil
}

// HealthCheck delegates to the inner provider when it supports health checks.
func (p *BudgetedPredictor) HealthCheck(ctx context.Context) error {
	hc, ok := p.inner.(domain.HealthChecker)
	if !ok {
		return nil
	}
	if err := hc.HealthCheck(ctx); err != nil {
		return fmt.Errorf("predictor health: %w", err)
	}
	return nil
}
