package chi

import (
	"net/http"

	domusage "github.com/kailas-cloud/datadesk/internal/domain/usage"
)

// GetUsage handles GET /api/v1/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	var params UsageParams
	if !newQueryBinder(r).form("period", &params.Period).ok(w) {
		return
	}
	period, err := domusage.ParsePeriod(deref(params.Period))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	report := s.usage.GetReport(r.Context(), period)
	writeJSON(w, http.StatusOK, usageToDTO(&report))
}

func usageToDTO(r *domusage.Report) UsageResponse {
	b := r.Budget()
	status := BudgetStatus{
		IsExhausted: b.IsExhausted(),
		ResetsAt:    b.ResetsAt(),
	}
	if !b.IsUnlimited() {
		limit, remaining := b.TokensLimit(), b.TokensRemaining()
		status.TokensLimit = &limit
		status.TokensRemaining = &remaining
	}
	return UsageResponse{
		Period:        string(r.Period()),
		PeriodStartAt: r.Start(),
		PeriodEndAt:   r.End(),
		Enabled:       r.Enabled(),
		Model:         r.Model(),
		TokensUsed:    r.TokensUsed(),
		Budget:        status,
	}
}
