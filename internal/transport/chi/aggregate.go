package chi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kailas-cloud/datadesk/internal/domain/scale"
	aggregateuc "github.com/kailas-cloud/datadesk/internal/usecase/aggregate"
)

// GetSummary handles GET /api/v1/applications/summary.
func (s *Server) GetSummary(w http.ResponseWriter, r *http.Request) {
	if s.aggregate == nil {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "application records are not served")
		return
	}
	var params SummaryParams
	if !newQueryBinder(r).form("type", &params.Type).csv("boundaries", &params.Boundaries).ok(w) {
		return
	}

	sum, err := s.aggregate.Summary(r.Context(), aggregateuc.Params{
		Type:       strings.TrimSpace(deref(params.Type)),
		Boundaries: deref(params.Boundaries),
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summaryToDTO(&sum))
}

// Classify handles GET /api/v1/scales/{scale}/classify.
// Values that are not numbers classify as scale.NoData.
func (s *Server) Classify(w http.ResponseWriter, r *http.Request) {
	sc, ok := scale.ByName(chi.URLParam(r, "scale"))
	if !ok {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "unknown scale")
		return
	}

	var params ClassifyParams
	if !newQueryBinder(r).form("value", &params.Value).ok(w) {
		return
	}

	values := deref(params.Value)
	items := make([]Classification, len(values))
	for i, raw := range values {
		var v *float64
		if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			v = &f
		}
		items[i] = Classification{Value: raw, Class: sc.Classify(v)}
	}

	writeJSON(w, http.StatusOK, ClassifyResponse{Scale: sc.Name(), Labels: sc.Labels(), Items: items})
}
