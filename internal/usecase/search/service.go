package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/kailas-cloud/datadesk/internal/domain"
	"github.com/kailas-cloud/datadesk/internal/domain/record"
	"github.com/kailas-cloud/datadesk/internal/domain/search/filter"
	"github.com/kailas-cloud/datadesk/internal/domain/search/history"
	"github.com/kailas-cloud/datadesk/internal/domain/search/page"
	"github.com/kailas-cloud/datadesk/internal/domain/search/request"
	"github.com/kailas-cloud/datadesk/internal/domain/search/result"
	"github.com/kailas-cloud/datadesk/internal/domain/search/suggestion"
	"github.com/kailas-cloud/datadesk/internal/domain/search/tab"
	"github.com/kailas-cloud/datadesk/internal/metrics"
)

const fetchFailedMessage = "Records could not be loaded. Showing the last results available."

// SnapshotScope names the snapshot of the last page served, before local narrowing.
const SnapshotScope = "page"

// Service searches one kind of catalog record, falling back to the last snapshot when the record service fails.
type Service struct {
	kind      record.Kind
	catalog   Catalog
	snapshots SnapshotStore
	history   HistoryStore
	predictor Predictor
	clock     clock.Clock
	logger    *zap.Logger
}

// New creates a search service.
func New(kind record.Kind, catalog Catalog, snapshots SnapshotStore, hist HistoryStore) *Service {
	return &Service{
		kind:      kind,
		catalog:   catalog,
		snapshots: snapshots,
		history:   hist,
		clock:     clock.New(),
		logger:    zap.NewNop(),
	}
}

// WithPredictor enables the predictive suggestion variant.
func (s *Service) WithPredictor(p Predictor) *Service {
	s.predictor = p
	return s
}

// WithClock overrides the clock used for the recently modified tab.
func (s *Service) WithClock(c clock.Clock) *Service {
	s.clock = c
	return s
}

// WithLogger sets the logger.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	s.logger = l
	return s
}

// Kind returns the record kind the service searches.
func (s *Service) Kind() record.Kind { return s.kind }

// Search fetches one page of records. A failed fetch is not an error: the last snapshot
// is filtered locally and the outcome carries a retryable notice instead.
func (s *Service) Search(ctx context.Context, req *request.Request) (result.Outcome, error) {
	out, err := s.fetch(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return result.Outcome{}, fmt.Errorf("search: %w", ctx.Err())
		}
		s.logger.Warn("Record fetch failed, using snapshot",
			zap.String("kind", string(s.kind)),
			zap.String("query", req.Query()),
			zap.Error(err),
		)
		out = s.fromSnapshot(ctx, req)
	} else if q := strings.TrimSpace(req.Query()); q != "" {
		s.remember(ctx, q)
	}

	metrics.SearchesTotal.WithLabelValues(string(s.kind), string(out.Source)).Inc()
	return out, nil
}

func (s *Service) fetch(ctx context.Context, req *request.Request) (result.Outcome, error) {
	pg, err := s.fetchPage(ctx, req, req.Page())
	if err != nil {
		return result.Outcome{}, err
	}

	totalPages := page.TotalPages(pg.Total, req.Limit())
	current := req.Page()
	if clamped := page.Clamp(current, totalPages); clamped != current {
		// The result set shrank under the requested page.
		current = clamped
		if pg, err = s.fetchPage(ctx, req, current); err != nil {
			return result.Outcome{}, err
		}
		totalPages = page.TotalPages(pg.Total, req.Limit())
	}

	if err := s.snapshots.Save(ctx, s.kind, SnapshotScope, pg.Records); err != nil {
		s.logger.Warn("Snapshot save failed", zap.String("kind", string(s.kind)), zap.Error(err))
	}

	local := needsLocalFilter(req)
	records := pg.Records
	if local {
		// The query was already applied upstream.
		records = FilterRecords(records, s.criteria(req, ""))
	}

	return result.Outcome{
		Records:         records,
		Total:           pg.Total,
		Page:            current,
		TotalPages:      totalPages,
		Source:          result.SourceRemote,
		LocallyFiltered: local,
	}, nil
}

func (s *Service) fetchPage(ctx context.Context, req *request.Request, p int) (result.Page, error) {
	params := result.Params{Page: p, Limit: req.Limit(), Sort: req.Sort()}
	params.Type, _ = req.Selection().Single(filter.Type)
	params.Domain, _ = req.Selection().Single(filter.Domain)

	if q := strings.TrimSpace(req.Query()); q != "" {
		pg, err := s.catalog.Search(ctx, q, params)
		if err != nil {
			return result.Page{}, fmt.Errorf("catalog search: %w", err)
		}
		return pg, nil
	}
	pg, err := s.catalog.List(ctx, params)
	if err != nil {
		return result.Page{}, fmt.Errorf("catalog list: %w", err)
	}
	return pg, nil
}

func (s *Service) fromSnapshot(ctx context.Context, req *request.Request) result.Outcome {
	src := result.SourceCache
	records, ok, err := s.snapshots.Load(ctx, s.kind, SnapshotScope)
	if err != nil {
		s.logger.Warn("Snapshot load failed", zap.String("kind", string(s.kind)), zap.Error(err))
	}
	if err != nil || !ok {
		records = nil
		src = result.SourceEmpty
	}

	filtered := FilterRecords(records, s.criteria(req, strings.TrimSpace(req.Query())))
	total := len(filtered)
	totalPages := page.TotalPages(total, req.Limit())
	current := page.Clamp(req.Page(), totalPages)

	start := min(page.Offset(current, req.Limit()), total)
	end := min(start+req.Limit(), total)

	return result.Outcome{
		Records:         filtered[start:end],
		Total:           total,
		Page:            current,
		TotalPages:      totalPages,
		Source:          src,
		LocallyFiltered: true,
		Notice: &result.Notice{
			Kind:      result.NoticeFetchFailed,
			Message:   fetchFailedMessage,
			Retryable: true,
		},
	}
}

func (s *Service) criteria(req *request.Request, query string) Criteria {
	return Criteria{
		Query:     query,
		Selection: req.Selection(),
		Tab:       req.Tab(),
		Starred:   req.Starred(),
		Now:       s.clock.Now(),
	}
}

// needsLocalFilter reports whether the request carries criteria the record service cannot express.
func needsLocalFilter(req *request.Request) bool {
	if req.Tab() != tab.All {
		return true
	}
	sel := req.Selection()
	for _, d := range filter.Dimensions {
		n := len(sel.Values(d))
		if n == 0 {
			continue
		}
		if (d == filter.Type || d == filter.Domain) && n == 1 {
			continue
		}
		return true
	}
	return false
}

// Suggest returns autocomplete entries for a partial query. Failures of the record service
// and the predictor degrade the list rather than fail it.
func (s *Service) Suggest(ctx context.Context, query string, predictive bool) ([]suggestion.Suggestion, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return []suggestion.Suggestion{}, nil
	}

	h := s.loadHistory(ctx)

	var remote []suggestion.Suggestion
	texts, err := s.catalog.Suggest(ctx, q)
	switch {
	case ctx.Err() != nil:
		return nil, fmt.Errorf("suggest: %w", ctx.Err())
	case err != nil:
		s.logger.Warn("Remote suggestions failed", zap.String("query", q), zap.Error(err))
	default:
		for _, t := range texts {
			remote = append(remote, suggestion.New(t, suggestion.SourceServer))
		}
	}

	limit := suggestion.MaxResults
	if predictive && s.predictor != nil {
		limit = suggestion.MaxPredictive
		predicted, err := s.predictor.Predict(ctx, q, suggestion.MaxPredictive)
		if err != nil {
			s.logger.Warn("Predictor failed", zap.String("query", q), zap.Error(err))
		}
		for _, t := range predicted {
			remote = append(remote, suggestion.New(t, suggestion.SourcePredicted))
		}
	}

	records, _, err := s.snapshots.Load(ctx, s.kind, SnapshotScope)
	if err != nil {
		s.logger.Warn("Snapshot load failed", zap.String("kind", string(s.kind)), zap.Error(err))
		records = nil
	}

	list := ComputeSuggestions(q, h.Terms(), remote, records, limit)
	for _, sg := range list {
		metrics.SuggestionsServedTotal.WithLabelValues(string(sg.Source())).Inc()
	}
	return list, nil
}

// History returns the recent search terms, most recent first.
func (s *Service) History(ctx context.Context) []string {
	h := s.loadHistory(ctx)
	return h.Terms()
}

// ClearHistory forgets every recent search term.
func (s *Service) ClearHistory(ctx context.Context) error {
	if err := s.history.Clear(ctx); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Update forwards a partial update to the record service. Local snapshots are not patched;
// the next fetch replaces them.
func (s *Service) Update(ctx context.Context, id string, patch map[string]any) (record.Record, error) {
	if strings.TrimSpace(id) == "" {
		return record.Record{}, fmt.Errorf("%w: record id is required", domain.ErrInvalidRequest)
	}
	if len(patch) == 0 {
		return record.Record{}, fmt.Errorf("%w: empty patch", domain.ErrInvalidRequest)
	}
	rec, err := s.catalog.Update(ctx, id, patch)
	if err != nil {
		return record.Record{}, fmt.Errorf("update record: %w", err)
	}
	return rec, nil
}

func (s *Service) remember(ctx context.Context, term string) {
	h := s.loadHistory(ctx)
	if !h.Push(term) {
		return
	}
	if err := s.history.Save(ctx, h); err != nil {
		s.logger.Warn("History save failed", zap.Error(err))
	}
}

// loadHistory never fails: unreadable history is replaced by an empty one.
func (s *Service) loadHistory(ctx context.Context) history.History {
	h, err := s.history.Load(ctx)
	if err == nil {
		return h
	}
	if errors.Is(err, domain.ErrCorruptHistory) {
		s.logger.Warn("Search history unreadable, resetting", zap.Error(err))
		metrics.HistoryResetsTotal.Inc()
		if err := s.history.Clear(ctx); err != nil {
			s.logger.Warn("History reset failed", zap.Error(err))
		}
	} else {
		s.logger.Warn("History load failed", zap.Error(err))
	}
	return history.New(nil)
}
