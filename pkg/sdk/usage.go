package datadesk

import (
	"context"
	"fmt"
	"time"

	domusage "github.com/kailas-cloud/datadesk/internal/domain/usage"
)

// UsagePeriod is the budget window of a usage report.
type UsagePeriod string

// UsagePeriod constants.
const (
	PeriodDay   UsagePeriod = "day"
	PeriodMonth UsagePeriod = "month"
)

// UsageReport contains completion token usage for one budget window.
type UsageReport struct {
	Period      UsagePeriod
	PeriodStart time.Time
	PeriodEnd   time.Time
	// Enabled is false when no predictor is configured.
	Enabled    bool
	TokensUsed int64
	Budget     BudgetStatus
}

// BudgetStatus tracks the token quota of a window. TokensLimit is 0 when unlimited.
type BudgetStatus struct {
	TokensLimit     int64
	TokensRemaining int64
	IsExhausted     bool
	ResetsAt        time.Time
}

// Usage returns a completion usage report. An unknown period fails with ErrInvalidRequest.
func (c *Client) Usage(ctx context.Context, period UsagePeriod) (_ UsageReport, err error) {
	start := time.Now()
	defer func() { c.obs.done(&call{name: "usage"}, start, err) }()

	p, err := domusage.ParsePeriod(string(period))
	if err != nil {
		return UsageReport{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if c.usageSvc == nil {
		s, e := p.Bounds(time.Now())
		return UsageReport{Period: UsagePeriod(p), PeriodStart: s, PeriodEnd: e, Budget: BudgetStatus{ResetsAt: e}}, nil
	}

	report := c.usageSvc.GetReport(ctx, p)
	b := report.Budget()
	return UsageReport{
		Period:      UsagePeriod(report.Period()),
		PeriodStart: report.Start(),
		PeriodEnd:   report.End(),
		Enabled:     report.Enabled(),
		TokensUsed:  report.TokensUsed(),
		Budget: BudgetStatus{
			TokensLimit:     b.TokensLimit(),
			TokensRemaining: b.TokensRemaining(),
			IsExhausted:     b.IsExhausted(),
			ResetsAt:        b.ResetsAt(),
		},
	}, nil
}

// usageUseCase is the internal interface for usage reports.
type usageUseCase interface {
	GetReport(ctx context.Context, period domusage.Period) domusage.Report
}
