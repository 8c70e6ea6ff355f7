package datadesk

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/datadesk/internal/domain"
	"github.com/kailas-cloud/datadesk/internal/domain/search/filter"
	"github.com/kailas-cloud/datadesk/internal/domain/search/request"
	"github.com/kailas-cloud/datadesk/internal/domain/search/tab"
)

// RecordService searches, suggests and updates records of one kind.
type RecordService struct {
	kind Kind
	svc  searchUseCase
	obs  *observer
}

func (s *RecordService) served() error {
	if s.svc == nil {
		return fmt.Errorf("%w: record kind %q is not served", domain.ErrInvalidRequest, s.kind)
	}
	return nil
}

// Query starts a search.
func (s *RecordService) Query() *QueryBuilder {
	return &QueryBuilder{svc: s, tab: TabAll, filters: map[Dimension][]string{}}
}

// Suggest returns autocomplete entries for a partial query.
// predictive adds completions from the configured Predictor.
func (s *RecordService) Suggest(ctx context.Context, partial string, predictive bool) (_ []Suggestion, err error) {
	start := time.Now()
	c := call{name: "suggest", kind: s.kind}
	defer func() { s.obs.done(&c, start, err) }()

	if err = s.served(); err != nil {
		return nil, err
	}
	list, err := s.svc.Suggest(ctx, partial, predictive)
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}
	out := make([]Suggestion, len(list))
	for i, sg := range list {
		out[i] = Suggestion{Text: sg.Text(), Source: string(sg.Source())}
	}
	return out, nil
}

// Update applies a partial change to a record and returns the stored record.
func (s *RecordService) Update(ctx context.Context, id string, patch map[string]any) (_ Record, err error) {
	start := time.Now()
	c := call{name: "update", kind: s.kind}
	defer func() { s.obs.done(&c, start, err) }()

	if err = s.served(); err != nil {
		return Record{}, err
	}
	rec, err := s.svc.Update(ctx, id, patch)
	if err != nil {
		return Record{}, fmt.Errorf("update %s: %w", id, err)
	}
	return fromInternalRecord(&rec), nil
}

// QueryBuilder is a fluent builder for catalog searches.
type QueryBuilder struct {
	svc *RecordService

	text    string
	filters map[Dimension][]string
	tab     Tab
	starred []string
	page    int
	limit   int
	sort    string
}

// Text sets the free-text query. Queries starting with "mar" also match marketing records.
func (b *QueryBuilder) Text(q string) *QueryBuilder {
	b.text = q
	return b
}

// Where keeps records whose dimension holds one of values. Repeated calls add values.
func (b *QueryBuilder) Where(dim Dimension, values ...string) *QueryBuilder {
	b.filters[dim] = append(b.filters[dim], values...)
	return b
}

// Tab applies a view preset.
func (b *QueryBuilder) Tab(t Tab) *QueryBuilder {
	b.tab = t
	return b
}

// Starred sets the favorite record ids used by TabFavorites.
func (b *QueryBuilder) Starred(ids ...string) *QueryBuilder {
	b.starred = ids
	return b
}

// Page selects a 1-based page.
func (b *QueryBuilder) Page(n int) *QueryBuilder {
	b.page = n
	return b
}

// Limit sets the page size. Default 20, max 100.
func (b *QueryBuilder) Limit(n int) *QueryBuilder {
	b.limit = n
	return b
}

// Sort sets the record service sort expression, e.g. "name:asc".
func (b *QueryBuilder) Sort(expr string) *QueryBuilder {
	b.sort = expr
	return b
}

// Do runs the search. A failing record service yields the last snapshot with a Notice, not an error.
func (b *QueryBuilder) Do(ctx context.Context) (_ Page, err error) {
	start := time.Now()
	c := call{name: "search", kind: b.svc.kind}
	defer func() { b.svc.obs.done(&c, start, err) }()

	if err = b.svc.served(); err != nil {
		return Page{}, err
	}
	req, err := b.request()
	if err != nil {
		return Page{}, err
	}
	out, err := b.svc.svc.Search(ctx, &req)
	if err != nil {
		return Page{}, fmt.Errorf("search: %w", err)
	}
	res := fromOutcome(&out)
	c.source, c.notice = res.Source, res.Notice
	return res, nil
}

func (b *QueryBuilder) request() (request.Request, error) {
	values := make(map[filter.Dimension][]string, len(b.filters))
	for dim, v := range b.filters {
		values[filter.Dimension(dim)] = v
	}
	sel, err := filter.NewSelection(values)
	if err != nil {
		return request.Request{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	req, err := request.New(b.text, sel, tab.Tab(b.tab), b.starred, b.page, b.limit, b.sort)
	if err != nil {
		return request.Request{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	return req, nil
}
