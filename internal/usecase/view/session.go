package view

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/kailas-cloud/datadesk/internal/domain"
	"github.com/kailas-cloud/datadesk/internal/domain/record"
	"github.com/kailas-cloud/datadesk/internal/domain/search/filter"
	"github.com/kailas-cloud/datadesk/internal/domain/search/request"
	"github.com/kailas-cloud/datadesk/internal/domain/search/result"
	"github.com/kailas-cloud/datadesk/internal/domain/search/suggestion"
	"github.com/kailas-cloud/datadesk/internal/domain/search/tab"
	"github.com/kailas-cloud/datadesk/internal/metrics"
)

// Default debounce windows.
const (
	DefaultFetchDelay   = 500 * time.Millisecond
	DefaultSuggestDelay = 200 * time.Millisecond
	DefaultFetchTimeout = 10 * time.Second
)

// Searcher runs catalog searches and suggestions for one record kind.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) (result.Outcome, error)
	Suggest(ctx context.Context, query string, predictive bool) ([]suggestion.Suggestion, error)
}

// Options configure a Session.
type Options struct {
	FetchDelay   time.Duration
	SuggestDelay time.Duration
	// FetchTimeout bounds fetches started by a debounce timer.
	FetchTimeout time.Duration
	Limit        int
	Predictive   bool
}

func (o *Options) applyDefaults() {
	if o.FetchDelay <= 0 {
		o.FetchDelay = DefaultFetchDelay
	}
	if o.SuggestDelay <= 0 {
		o.SuggestDelay = DefaultSuggestDelay
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = DefaultFetchTimeout
	}
	if o.Limit <= 0 {
		o.Limit = request.DefaultLimit
	}
}

// Session is the controller of one catalog page. Query edits are debounced;
// filter, tab and page changes fetch immediately. Responses of fetches superseded
// by a newer applied one are dropped.
type Session struct {
	searcher   Searcher
	predictive bool
	timeout    time.Duration
	clock      clock.Clock
	logger     *zap.Logger

	fetchDebounce   *Debouncer
	suggestDebounce *Debouncer

	mu         sync.Mutex
	state      State
	issued     uint64
	applied    uint64
	suggestGen uint64
	lastUsed   time.Time
	closed     bool
}

// NewSession creates a Session with an empty query on the All tab.
func NewSession(id string, kind record.Kind, searcher Searcher, c clock.Clock, opts Options) *Session {
	opts.applyDefaults()
	return &Session{
		searcher:        searcher,
		predictive:      opts.Predictive,
		timeout:         opts.FetchTimeout,
		clock:           c,
		logger:          zap.NewNop(),
		fetchDebounce:   NewDebouncer(c, opts.FetchDelay),
		suggestDebounce: NewDebouncer(c, opts.SuggestDelay),
		state: State{
			ID:      id,
			Kind:    kind,
			Filters: map[filter.Dimension][]string{},
			Tab:     tab.All,
			Page:    1,
			Limit:   opts.Limit,
		},
		lastUsed: c.Now(),
	}
}

// WithLogger sets the logger.
func (s *Session) WithLogger(l *zap.Logger) *Session {
	s.logger = l.With(zap.String("session_id", s.state.ID))
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.state.ID }

// State returns a copy of the current view state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// SetQuery records a keystroke. The fetch and the suggestion refresh fire after
// their own quiet windows; each call restarts both.
func (s *Session) SetQuery(q string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.state.RawQuery = q
	s.touch()
	s.mu.Unlock()

	s.fetchDebounce.Trigger(func() {
		s.mu.Lock()
		s.state.Query = q
		s.state.Page = 1
		s.mu.Unlock()
		s.fetchDetached()
	})
	s.suggestDebounce.Trigger(func() {
		s.refreshSuggestions(q)
	})
}

// SetFilters replaces the filter selection and fetches the first page.
func (s *Session) SetFilters(ctx context.Context, values map[filter.Dimension][]string) (State, error) {
	if _, err := filter.NewSelection(values); err != nil {
		return State{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	s.mu.Lock()
	s.state.Filters = make(map[filter.Dimension][]string, len(values))
	for d, vals := range values {
		s.state.Filters[d] = append([]string(nil), vals...)
	}
	s.state.Page = 1
	s.mu.Unlock()
	return s.Fetch(ctx)
}

// SetTab switches the view preset and fetches the first page.
func (s *Session) SetTab(ctx context.Context, t tab.Tab) (State, error) {
	if !t.IsValid() {
		return State{}, fmt.Errorf("%w: invalid tab %q", domain.ErrInvalidRequest, t)
	}
	s.mu.Lock()
	s.state.Tab = t
	s.state.Page = 1
	s.mu.Unlock()
	return s.Fetch(ctx)
}

// SetPage moves to another page.
func (s *Session) SetPage(ctx context.Context, page int) (State, error) {
	if page < 1 {
		return State{}, fmt.Errorf("%w: page must be positive", domain.ErrInvalidRequest)
	}
	s.mu.Lock()
	s.state.Page = page
	s.mu.Unlock()
	return s.Fetch(ctx)
}

// ToggleStar adds or removes a favorite. The Favorites tab is refetched.
func (s *Session) ToggleStar(ctx context.Context, id string) (State, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return State{}, fmt.Errorf("%w: record id is required", domain.ErrInvalidRequest)
	}
	s.mu.Lock()
	if i := slices.Index(s.state.Starred, id); i >= 0 {
		s.state.Starred = slices.Delete(s.state.Starred, i, i+1)
	} else {
		if len(s.state.Starred) >= request.MaxStarred {
			s.mu.Unlock()
			return State{}, fmt.Errorf("%w: too many starred records", domain.ErrInvalidRequest)
		}
		s.state.Starred = append(s.state.Starred, id)
	}
	refetch := s.state.Tab == tab.Favorites
	st := s.state.clone()
	s.mu.Unlock()

	if refetch {
		return s.Fetch(ctx)
	}
	return st, nil
}

// Retry re-runs the fetch for the current state, clearing the failure notice.
func (s *Session) Retry(ctx context.Context) (State, error) {
	s.DismissNotice()
	return s.Fetch(ctx)
}

// DismissNotice clears the user-visible notice.
func (s *Session) DismissNotice() {
	s.mu.Lock()
	s.state.Notice = nil
	s.mu.Unlock()
}

// Fetch searches for the current state and applies the outcome unless a newer fetch was applied first.
func (s *Session) Fetch(ctx context.Context) (State, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return State{}, domain.ErrSessionNotFound
	}
	s.issued++
	gen := s.issued
	req, err := s.buildRequest()
	if err != nil {
		s.mu.Unlock()
		return State{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	s.state.Loading = true
	s.touch()
	s.mu.Unlock()

	out, err := s.searcher.Search(ctx, &req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen < s.applied {
		metrics.StaleResponsesTotal.WithLabelValues("fetch").Inc()
		s.logger.Debug("Dropped stale fetch", zap.Uint64("generation", gen), zap.Uint64("applied", s.applied))
		return s.state.clone(), nil
	}
	s.applied = gen
	s.state.Loading = gen < s.issued
	if err != nil {
		s.state.Notice = &result.Notice{
			Kind:      result.NoticeFetchFailed,
			Message:   "Search did not complete. Retry to load records.",
			Retryable: true,
		}
		return s.state.clone(), fmt.Errorf("fetch: %w", err)
	}

	s.state.Records = out.Records
	s.state.Total = out.Total
	s.state.TotalPages = out.TotalPages
	s.state.Page = out.Page
	s.state.Source = out.Source
	s.state.Notice = out.Notice
	s.state.Generation = gen
	return s.state.clone(), nil
}

// fetchDetached runs a fetch started by a debounce timer.
func (s *Session) fetchDetached() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if _, err := s.Fetch(ctx); err != nil {
		s.logger.Warn("Debounced fetch failed", zap.Error(err))
	}
}

func (s *Session) refreshSuggestions(q string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.suggestGen++
	gen := s.suggestGen
	s.state.Suggesting = true
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	list, err := s.searcher.Suggest(ctx, q, s.predictive)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.suggestGen {
		metrics.StaleResponsesTotal.WithLabelValues("suggest").Inc()
		return
	}
	s.state.Suggesting = false
	if err != nil {
		s.logger.Warn("Suggestion refresh failed", zap.Error(err))
		return
	}
	s.state.Suggestions = list
}

// buildRequest must be called with mu held.
func (s *Session) buildRequest() (request.Request, error) {
	sel, err := filter.NewSelection(s.state.Filters)
	if err != nil {
		return request.Request{}, err
	}
	return request.New(s.state.Query, sel, s.state.Tab, s.state.Starred, s.state.Page, s.state.Limit, "")
}

// touch must be called with mu held.
func (s *Session) touch() {
	s.lastUsed = s.clock.Now()
}

func (s *Session) markUsed() {
	s.mu.Lock()
	s.touch()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// Close stops pending timers. Further fetches fail with domain.ErrSessionNotFound.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.fetchDebounce.Cancel()
	s.suggestDebounce.Cancel()
}
