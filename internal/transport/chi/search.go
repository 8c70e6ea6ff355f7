package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kailas-cloud/datadesk/internal/domain"
	"github.com/kailas-cloud/datadesk/internal/domain/search/filter"
	"github.com/kailas-cloud/datadesk/internal/domain/search/request"
	"github.com/kailas-cloud/datadesk/internal/domain/search/tab"
)

// SearchRecords handles GET /api/v1/{kind}/search.
func (s *Server) SearchRecords(w http.ResponseWriter, r *http.Request) {
	svc := s.searchService(w, r)
	if svc == nil {
		return
	}

	var params SearchParams
	b := newQueryBinder(r).
		form("q", &params.Q).
		form("page", &params.Page).
		form("limit", &params.Limit).
		form("sort", &params.Sort).
		form("tab", &params.Tab).
		form("starred", &params.Starred).
		form("type", &params.Type).
		form("domain", &params.Domain).
		form("status", &params.Status).
		form("certification", &params.Certification).
		form("center", &params.Center).
		form("owner", &params.Owner)
	if !b.ok(w) {
		return
	}

	req, err := searchRequestFromParams(&params)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	out, err := svc.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, outcomeToDTO(&out))
}

// GetSuggestions handles GET /api/v1/{kind}/suggestions.
func (s *Server) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	svc := s.searchService(w, r)
	if svc == nil {
		return
	}

	var params SuggestParams
	if !newQueryBinder(r).form("q", &params.Q).form("predictive", &params.Predictive).ok(w) {
		return
	}
	q := deref(params.Q)
	if len(q) > request.MaxQueryLength {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "query too long")
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	list, err := svc.Suggest(ctx, q, deref(params.Predictive))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setPredictorHeaders(w, usage)
	writeJSON(w, http.StatusOK, SuggestResponse{Items: suggestionsToDTO(list)})
}

// GetHistory handles GET /api/v1/history.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	svc := s.anySearchService()
	if svc == nil {
		writeJSON(w, http.StatusOK, HistoryResponse{Terms: []string{}})
		return
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Terms: svc.History(r.Context())})
}

// ClearHistory handles DELETE /api/v1/history.
func (s *Server) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if svc := s.anySearchService(); svc != nil {
		if err := svc.ClearHistory(r.Context()); err != nil {
			s.handleDomainError(w, r, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateRecord handles PATCH /api/v1/{kind}/records/{id}.
func (s *Server) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	svc := s.searchService(w, r)
	if svc == nil {
		return
	}

	var patch UpdateRequest
	if !decodeBody(w, r, &patch) {
		return
	}

	rec, err := svc.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, recordToDTO(&rec))
}

func searchRequestFromParams(p *SearchParams) (request.Request, error) {
	sel, err := filter.NewSelection(p.selection())
	if err != nil {
		return request.Request{}, err
	}
	return request.New(
		deref(p.Q),
		sel,
		tab.Tab(deref(p.Tab)),
		deref(p.Starred),
		deref(p.Page),
		deref(p.Limit),
		deref(p.Sort),
	)
}
