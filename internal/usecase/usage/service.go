// Package usage reports completion token consumption.
package usage

import (
	"context"

	"github.com/benbjohnson/clock"

	domusage "github.com/kailas-cloud/datadesk/internal/domain/usage"
)

// Service handles usage reporting.
type Service struct {
	br      BudgetReader
	model   string
	enabled bool
	clock   clock.Clock
}

// New creates a Service. br may be nil when no budget is configured;
// enabled tells whether a completion provider is configured at all.
func New(br BudgetReader, model string, enabled bool) *Service {
	return &Service{br: br, model: model, enabled: enabled, clock: clock.New()}
}

// WithClock replaces the wall clock.
func (s *Service) WithClock(c clock.Clock) *Service {
	s.clock = c
	return s
}

// GetReport builds a usage report for the window containing now.
func (s *Service) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	start, end := period.Bounds(s.clock.Now())

	var limit, used, remaining int64
	if s.br != nil {
		switch period {
		case domusage.PeriodDay:
			limit, used, remaining = s.br.DailyLimit(), s.br.DailyUsed(), s.br.RemainingDaily()
		default:
			limit, used, remaining = s.br.MonthlyLimit(), s.br.MonthlyUsed(), s.br.RemainingMonthly()
		}
	}

	b := domusage.NewBudget(limit, remaining, end)
	return domusage.NewReport(period, start, end, s.model, s.enabled, used, b)
}
