package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/datadesk/internal/domain"
	"github.com/kailas-cloud/datadesk/internal/domain/record"
	logpkg "github.com/kailas-cloud/datadesk/internal/logger"
	aggregateuc "github.com/kailas-cloud/datadesk/internal/usecase/aggregate"
	healthuc "github.com/kailas-cloud/datadesk/internal/usecase/health"
	searchuc "github.com/kailas-cloud/datadesk/internal/usecase/search"
	usageuc "github.com/kailas-cloud/datadesk/internal/usecase/usage"
	"github.com/kailas-cloud/datadesk/internal/usecase/view"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// kindPaths maps URL segments to record kinds.
var kindPaths = map[string]record.Kind{
	"assets":       record.KindAsset,
	"applications": record.KindApplication,
	"timeline":     record.KindTimeline,
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the dashboard API.
type Server struct {
	search        map[record.Kind]*searchuc.Service
	aggregate     *aggregateuc.Service
	sessions      *view.Registry
	health        *healthuc.Service
	usage         *usageuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. search holds one service per record kind.
func NewServer(
	search map[record.Kind]*searchuc.Service,
	aggregate *aggregateuc.Service,
	sessions *view.Registry,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search:    search,
		aggregate: aggregate,
		sessions:  sessions,
		health:    health,
		usage:     usageuc.New(nil, "", false),
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(view.ErrTooManySessions, http.StatusTooManyRequests, ErrorCodeTooManySessions),
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, ErrorCodeSessionNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		validationHandler,
		sentinelHandler(domain.ErrUpstream, http.StatusBadGateway, ErrorCodeUpstreamError),
		sentinelHandler(domain.ErrPredictorQuotaExceeded, http.StatusTooManyRequests, ErrorCodePredictorQuota),
		sentinelHandler(domain.ErrPredictor, http.StatusBadGateway, ErrorCodePredictorError),
		sentinelHandler(context.DeadlineExceeded, http.StatusGatewayTimeout, ErrorCodeTimeout),
	}
	return s
}

// WithUsage serves completion budget reports from u.
func (s *Server) WithUsage(u *usageuc.Service) *Server {
	if u != nil {
		s.usage = u
	}
	return s
}

// Handler returns a router with every API route mounted under /api/v1.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Mount(r)
	return r
}

// Mount registers the API routes on r.
func (s *Server) Mount(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/history", s.GetHistory)
		r.Delete("/history", s.ClearHistory)
		r.Get("/usage", s.GetUsage)

		r.Get("/applications/summary", s.GetSummary)
		r.Get("/scales/{scale}/classify", s.Classify)

		r.Route("/{kind}", func(r chi.Router) {
			r.Get("/search", s.SearchRecords)
			r.Get("/suggestions", s.GetSuggestions)
			r.Patch("/records/{id}", s.UpdateRecord)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.OpenSession)
			r.Route("/{session}", func(r chi.Router) {
				r.Get("/", s.GetSession)
				r.Delete("/", s.CloseSession)
				r.Put("/query", s.SetSessionQuery)
				r.Put("/filters", s.SetSessionFilters)
				r.Put("/tab", s.SetSessionTab)
				r.Put("/page", s.SetSessionPage)
				r.Post("/star", s.ToggleSessionStar)
				r.Post("/retry", s.RetrySession)
				r.Delete("/notice", s.DismissSessionNotice)
			})
		})
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// searchService resolves the {kind} path segment. Writes a 404 and returns nil if unknown.
func (s *Server) searchService(w http.ResponseWriter, r *http.Request) *searchuc.Service {
	kind, ok := kindPaths[chi.URLParam(r, "kind")]
	if !ok {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "unknown record kind")
		return nil
	}
	svc, ok := s.search[kind]
	if !ok {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "record kind not served")
		return nil
	}
	return svc
}

// anySearchService returns a configured service for kind-independent operations (history).
func (s *Server) anySearchService() *searchuc.Service {
	for _, k := range []record.Kind{record.KindAsset, record.KindApplication, record.KindTimeline} {
		if svc, ok := s.search[k]; ok {
			return svc
		}
	}
	return nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func setPredictorHeaders(w http.ResponseWriter, usage *domain.PredictorUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-Predictor-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		view.ErrTooManySessions,
		domain.ErrSessionNotFound,
		domain.ErrNotFound,
		domain.ErrUpstream,
		domain.ErrPredictorQuotaExceeded,
		domain.ErrPredictor,
		context.DeadlineExceeded,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// validationHandler handles ErrInvalidRequest. Validation messages are safe to return verbatim.
func validationHandler(w http.ResponseWriter, err error, _ string) bool {
	if !errors.Is(err, domain.ErrInvalidRequest) {
		return false
	}
	writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
