package chi

import (
	"time"

	"github.com/kailas-cloud/datadesk/internal/domain/record"
	"github.com/kailas-cloud/datadesk/internal/domain/search/filter"
	"github.com/kailas-cloud/datadesk/internal/domain/search/result"
	"github.com/kailas-cloud/datadesk/internal/domain/search/suggestion"
	"github.com/kailas-cloud/datadesk/internal/domain/stats"
	aggregateuc "github.com/kailas-cloud/datadesk/internal/usecase/aggregate"
	"github.com/kailas-cloud/datadesk/internal/usecase/view"
)

// ErrorCode is the machine-readable error code of an API error response.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeNotFound         ErrorCode = "not_found"
	ErrorCodeSessionNotFound  ErrorCode = "session_not_found"
	ErrorCodeTooManySessions  ErrorCode = "too_many_sessions"
	ErrorCodeUpstreamError    ErrorCode = "upstream_error"
	ErrorCodePredictorError   ErrorCode = "predictor_error"
	ErrorCodePredictorQuota   ErrorCode = "predictor_quota_exceeded"
	ErrorCodeTimeout          ErrorCode = "timeout"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchParams are the query parameters of GET /{kind}/search.
type SearchParams struct {
	Q             *string   `json:"q,omitempty"`
	Page          *int      `json:"page,omitempty"`
	Limit         *int      `json:"limit,omitempty"`
	Sort          *string   `json:"sort,omitempty"`
	Tab           *string   `json:"tab,omitempty"`
	Starred       *[]string `json:"starred,omitempty"`
	Type          *[]string `json:"type,omitempty"`
	Domain        *[]string `json:"domain,omitempty"`
	Status        *[]string `json:"status,omitempty"`
	Certification *[]string `json:"certification,omitempty"`
	Center        *[]string `json:"center,omitempty"`
	Owner         *[]string `json:"owner,omitempty"`
}

// selection returns the filter values keyed by dimension.
func (p *SearchParams) selection() map[filter.Dimension][]string {
	out := make(map[filter.Dimension][]string)
	for dim, vals := range map[filter.Dimension]*[]string{
		filter.Type:          p.Type,
		filter.Domain:        p.Domain,
		filter.Status:        p.Status,
		filter.Certification: p.Certification,
		filter.Center:        p.Center,
		filter.Owner:         p.Owner,
	} {
		if vals != nil && len(*vals) > 0 {
			out[dim] = *vals
		}
	}
	return out
}

// SuggestParams are the query parameters of GET /{kind}/suggestions.
type SuggestParams struct {
	Q          *string `json:"q,omitempty"`
	Predictive *bool   `json:"predictive,omitempty"`
}

// SummaryParams are the query parameters of GET /applications/summary.
type SummaryParams struct {
	Type       *string `json:"type,omitempty"`
	Boundaries *[]int  `json:"boundaries,omitempty"`
}

// ClassifyParams are the query parameters of GET /scales/{scale}/classify.
type ClassifyParams struct {
	Value *[]string `json:"value,omitempty"`
}

// Record is the wire form of a record.
type Record struct {
	ID             string     `json:"id"`
	Kind           string     `json:"kind"`
	Name           string     `json:"name,omitempty"`
	Type           string     `json:"type,omitempty"`
	Domain         string     `json:"domain,omitempty"`
	Owner          string     `json:"owner"`
	Status         string     `json:"status,omitempty"`
	Certification  string     `json:"certification,omitempty"`
	Center         string     `json:"center,omitempty"`
	Tags           []string   `json:"tags"`
	LastModified   *time.Time `json:"last_modified,omitempty"`
	ReceivedDate   *time.Time `json:"received_date,omitempty"`
	ProcessingDays *float64   `json:"processing_days,omitempty"`
	RiskScore      *float64   `json:"risk_score,omitempty"`
	QualityScore   *float64   `json:"quality_score,omitempty"`
}

// Suggestion is the wire form of an autocomplete entry.
type Suggestion struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// SearchResponse is the body of GET /{kind}/search.
type SearchResponse struct {
	Items           []Record       `json:"items"`
	Total           int            `json:"total"`
	Page            int            `json:"page"`
	TotalPages      int            `json:"total_pages"`
	Source          result.Source  `json:"source"`
	LocallyFiltered bool           `json:"locally_filtered"`
	Notice          *result.Notice `json:"notice,omitempty"`
}

// SuggestResponse is the body of GET /{kind}/suggestions.
type SuggestResponse struct {
	Items []Suggestion `json:"items"`
}

// HistoryResponse is the body of GET /history.
type HistoryResponse struct {
	Terms []string `json:"terms"`
}

// UpdateRequest is the body of PATCH /{kind}/records/{id}.
type UpdateRequest map[string]any

// SummaryResponse is the body of GET /applications/summary.
type SummaryResponse struct {
	Total             int            `json:"total"`
	ByType            *stats.Counts  `json:"by_type"`
	ByCenter          *stats.Counts  `json:"by_center"`
	ByStatus          *stats.Counts  `json:"by_status"`
	Backlog           int            `json:"backlog"`
	BacklogRatio      float64        `json:"backlog_ratio"`
	BacklogByType     *stats.Counts  `json:"backlog_by_type"`
	BacklogByCenter   *stats.Counts  `json:"backlog_by_center"`
	AvgProcessingDays float64        `json:"avg_processing_days"`
	AgeBuckets        []stats.Bucket `json:"age_buckets"`
	RiskClasses       *stats.Counts  `json:"risk_classes"`
	QualityClasses    *stats.Counts  `json:"quality_classes"`
	GeneratedAt       time.Time      `json:"generated_at"`
	Source            result.Source  `json:"source"`
	Truncated         bool           `json:"truncated"`
	Notice            *result.Notice `json:"notice,omitempty"`
}

// Classification is one classified value.
type Classification struct {
	Value string `json:"value"`
	Class string `json:"class"`
}

// ClassifyResponse is the body of GET /scales/{scale}/classify.
type ClassifyResponse struct {
	Scale  string           `json:"scale"`
	Labels []string         `json:"labels"`
	Items  []Classification `json:"items"`
}

// OpenSessionRequest is the body of POST /sessions.
type OpenSessionRequest struct {
	Kind       string `json:"kind"`
	Predictive bool   `json:"predictive"`
}

// QueryRequest is the body of PUT /sessions/{id}/query.
type QueryRequest struct {
	Query string `json:"query"`
}

// FiltersRequest is the body of PUT /sessions/{id}/filters.
type FiltersRequest struct {
	Filters map[string][]string `json:"filters"`
}

// TabRequest is the body of PUT /sessions/{id}/tab.
type TabRequest struct {
	Tab string `json:"tab"`
}

// PageRequest is the body of PUT /sessions/{id}/page.
type PageRequest struct {
	Page int `json:"page"`
}

// StarRequest is the body of POST /sessions/{id}/star.
type StarRequest struct {
	ID string `json:"id"`
}

// SessionState is the wire form of a session's view state.
type SessionState struct {
	ID          string              `json:"id"`
	Kind        string              `json:"kind"`
	RawQuery    string              `json:"raw_query"`
	Query       string              `json:"query"`
	Filters     map[string][]string `json:"filters"`
	Tab         string              `json:"tab"`
	Starred     []string            `json:"starred"`
	Page        int                 `json:"page"`
	Limit       int                 `json:"limit"`
	Items       []Record            `json:"items"`
	Total       int                 `json:"total"`
	TotalPages  int                 `json:"total_pages"`
	Source      result.Source       `json:"source,omitempty"`
	Suggestions []Suggestion        `json:"suggestions"`
	Notice      *result.Notice      `json:"notice,omitempty"`
	Loading     bool                `json:"loading"`
	Suggesting  bool                `json:"suggesting"`
	Generation  uint64              `json:"generation"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func recordToDTO(r *record.Record) Record {
	out := Record{
		ID:             r.ID(),
		Kind:           string(r.Kind()),
		Name:           r.Name(),
		Type:           r.Type(),
		Domain:         r.Domain(),
		Owner:          r.OwnerOrDefault(),
		Status:         r.Status(),
		Certification:  r.Certification(),
		Center:         r.Center(),
		Tags:           r.Tags(),
		ProcessingDays: r.ProcessingDays(),
		RiskScore:      r.RiskScore(),
		QualityScore:   r.QualityScore(),
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if t := r.LastModified(); !t.IsZero() {
		out.LastModified = &t
	}
	if t := r.ReceivedDate(); !t.IsZero() {
		out.ReceivedDate = &t
	}
	return out
}

func recordsToDTO(recs []record.Record) []Record {
	out := make([]Record, len(recs))
	for i := range recs {
		out[i] = recordToDTO(&recs[i])
	}
	return out
}

func suggestionsToDTO(list []suggestion.Suggestion) []Suggestion {
	out := make([]Suggestion, len(list))
	for i, s := range list {
		out[i] = Suggestion{Text: s.Text(), Source: string(s.Source())}
	}
	return out
}

func outcomeToDTO(o *result.Outcome) SearchResponse {
	return SearchResponse{
		Items:           recordsToDTO(o.Records),
		Total:           o.Total,
		Page:            o.Page,
		TotalPages:      o.TotalPages,
		Source:          o.Source,
		LocallyFiltered: o.LocallyFiltered,
		Notice:          o.Notice,
	}
}

func summaryToDTO(s *aggregateuc.Summary) SummaryResponse {
	return SummaryResponse{
		Total:             s.Total,
		ByType:            s.ByType,
		ByCenter:          s.ByCenter,
		ByStatus:          s.ByStatus,
		Backlog:           s.Backlog,
		BacklogRatio:      s.BacklogRatio,
		BacklogByType:     s.BacklogByType,
		BacklogByCenter:   s.BacklogByCenter,
		AvgProcessingDays: s.AvgProcessingDays,
		AgeBuckets:        s.AgeBuckets,
		RiskClasses:       s.RiskClasses,
		QualityClasses:    s.QualityClasses,
		GeneratedAt:       s.GeneratedAt,
		Source:            s.Source,
		Truncated:         s.Truncated,
		Notice:            s.Notice,
	}
}

func stateToDTO(st *view.State) SessionState {
	filters := make(map[string][]string, len(st.Filters))
	for d, vals := range st.Filters {
		filters[string(d)] = vals
	}
	starred := st.Starred
	if starred == nil {
		starred = []string{}
	}
	return SessionState{
		ID:          st.ID,
		Kind:        string(st.Kind),
		RawQuery:    st.RawQuery,
		Query:       st.Query,
		Filters:     filters,
		Tab:         string(st.Tab),
		Starred:     starred,
		Page:        st.Page,
		Limit:       st.Limit,
		Items:       recordsToDTO(st.Records),
		Total:       st.Total,
		TotalPages:  st.TotalPages,
		Source:      st.Source,
		Suggestions: suggestionsToDTO(st.Suggestions),
		Notice:      st.Notice,
		Loading:     st.Loading,
		Suggesting:  st.Suggesting,
		Generation:  st.Generation,
	}
}

// UsageParams are the query parameters of GET /usage.
type UsageParams struct {
	Period *string `json:"period,omitempty"`
}

// UsageResponse reports completion token consumption for one budget window.
type UsageResponse struct {
	Period        string       `json:"period"`
	PeriodStartAt time.Time    `json:"period_start_at"`
	PeriodEndAt   time.Time    `json:"period_end_at"`
	Enabled       bool         `json:"enabled"`
	Model         string       `json:"model,omitempty"`
	TokensUsed    int64        `json:"tokens_used"`
	Budget        BudgetStatus `json:"budget"`
}

// BudgetStatus is the token budget of a window. Limit and remaining are omitted when unlimited.
type BudgetStatus struct {
	TokensLimit     *int64    `json:"tokens_limit,omitempty"`
	TokensRemaining *int64    `json:"tokens_remaining,omitempty"`
	IsExhausted     bool      `json:"is_exhausted"`
	ResetsAt        time.Time `json:"resets_at"`
}
