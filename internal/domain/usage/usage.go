// Package usage describes completion token consumption against the configured budget.
package usage

import (
	"fmt"
	"time"
)

// Period is the budget window a report covers.
type Period string

// Budget windows.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// ParsePeriod validates a period name. Empty means PeriodMonth.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "":
		return PeriodMonth, nil
	case PeriodDay, PeriodMonth:
		return Period(s), nil
	default:
		return "", fmt.Errorf("invalid period %q: want day or month", s)
	}
}

// Bounds returns the UTC window [start, end) of the period containing now.
func (p Period) Bounds(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	if p == PeriodDay {
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 0, 1)
	}
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// Budget is a snapshot of one budget window. A zero limit means unlimited.
type Budget struct {
	tokensLimit     int64
	tokensRemaining int64
	resetsAt        time.Time
}

// NewBudget creates a Budget snapshot. Negative remaining values are clamped to zero.
func NewBudget(limit, remaining int64, resetsAt time.Time) Budget {
	return Budget{tokensLimit: limit, tokensRemaining: max(remaining, 0), resetsAt: resetsAt}
}

// TokensLimit returns the token cap.
func (b Budget) TokensLimit() int64 { return b.tokensLimit }

// TokensRemaining returns tokens left; meaningless when the budget is unlimited.
func (b Budget) TokensRemaining() int64 { return b.tokensRemaining }

// IsUnlimited reports whether no cap is configured.
func (b Budget) IsUnlimited() bool { return b.tokensLimit == 0 }

// IsExhausted reports whether a capped budget is spent.
func (b Budget) IsExhausted() bool { return b.tokensLimit > 0 && b.tokensRemaining == 0 }

// ResetsAt returns when the window rolls over.
func (b Budget) ResetsAt() time.Time { return b.resetsAt }

// Report is completion usage for one window.
type Report struct {
	period     Period
	start      time.Time
	end        time.Time
	model      string
	enabled    bool
	tokensUsed int64
	budget     Budget
}

// NewReport creates a usage report.
func NewReport(period Period, start, end time.Time, model string, enabled bool, used int64, b Budget) Report {
	return Report{
		period:     period,
		start:      start,
		end:        end,
		model:      model,
		enabled:    enabled,
		tokensUsed: used,
		budget:     b,
	}
}

// Period returns the window.
func (r *Report) Period() Period { return r.period }

// Start returns the window start.
func (r *Report) Start() time.Time { return r.start }

// End returns the window end.
func (r *Report) End() time.Time { return r.end }

// Model returns the completion model the budget applies to.
func (r *Report) Model() string { return r.model }

// Enabled reports whether predictive suggestions are configured at all.
func (r *Report) Enabled() bool { return r.enabled }

// TokensUsed returns tokens consumed in the window.
func (r *Report) TokensUsed() int64 { return r.tokensUsed }

// Budget returns the budget status.
func (r *Report) Budget() Budget { return r.budget }
