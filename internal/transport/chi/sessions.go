package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kailas-cloud/datadesk/internal/domain/record"
	"github.com/kailas-cloud/datadesk/internal/domain/search/filter"
	"github.com/kailas-cloud/datadesk/internal/domain/search/tab"
	"github.com/kailas-cloud/datadesk/internal/usecase/view"
)

// OpenSession handles POST /api/v1/sessions.
func (s *Server) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req OpenSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	kind := record.Kind(req.Kind)
	if k, ok := kindPaths[req.Kind]; ok {
		kind = k
	}
	if !kind.IsValid() {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "unknown record kind")
		return
	}

	sess, err := s.sessions.Open(kind, req.Predictive)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	// Initial load, as a freshly mounted page does.
	st, err := sess.Fetch(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/v1/sessions/"+sess.ID())
	writeJSON(w, http.StatusCreated, stateToDTO(&st))
}

// GetSession handles GET /api/v1/sessions/{session}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	st := sess.State()
	writeJSON(w, http.StatusOK, stateToDTO(&st))
}

// CloseSession handles DELETE /api/v1/sessions/{session}.
func (s *Server) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Close(chi.URLParam(r, "session")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetSessionQuery handles PUT /api/v1/sessions/{session}/query.
// The query is debounced; the response reflects the state right after the edit.
func (s *Server) SetSessionQuery(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req QueryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	sess.SetQuery(req.Query)

	st := sess.State()
	writeJSON(w, http.StatusAccepted, stateToDTO(&st))
}

// SetSessionFilters handles PUT /api/v1/sessions/{session}/filters.
func (s *Server) SetSessionFilters(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req FiltersRequest
	if !decodeBody(w, r, &req) {
		return
	}

	values := make(map[filter.Dimension][]string, len(req.Filters))
	for d, vals := range req.Filters {
		values[filter.Dimension(d)] = vals
	}
	s.respondState(w, r, func() (view.State, error) { return sess.SetFilters(r.Context(), values) })
}

// SetSessionTab handles PUT /api/v1/sessions/{session}/tab.
func (s *Server) SetSessionTab(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req TabRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.respondState(w, r, func() (view.State, error) { return sess.SetTab(r.Context(), tab.Tab(req.Tab)) })
}

// SetSessionPage handles PUT /api/v1/sessions/{session}/page.
func (s *Server) SetSessionPage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req PageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.respondState(w, r, func() (view.State, error) { return sess.SetPage(r.Context(), req.Page) })
}

// ToggleSessionStar handles POST /api/v1/sessions/{session}/star.
func (s *Server) ToggleSessionStar(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req StarRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.respondState(w, r, func() (view.State, error) { return sess.ToggleStar(r.Context(), req.ID) })
}

// RetrySession handles POST /api/v1/sessions/{session}/retry.
func (s *Server) RetrySession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.respondState(w, r, func() (view.State, error) { return sess.Retry(r.Context()) })
}

// DismissSessionNotice handles DELETE /api/v1/sessions/{session}/notice.
func (s *Server) DismissSessionNotice(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.DismissNotice()
	st := sess.State()
	writeJSON(w, http.StatusOK, stateToDTO(&st))
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*view.Session, bool) {
	sess, err := s.sessions.Get(chi.URLParam(r, "session"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) respondState(w http.ResponseWriter, r *http.Request, fn func() (view.State, error)) {
	st, err := fn()
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stateToDTO(&st))
}
