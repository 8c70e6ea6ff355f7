package search

import (
	"context"

	"github.com/kailas-cloud/datadesk/internal/domain/record"
	"github.com/kailas-cloud/datadesk/internal/domain/search/history"
	"github.com/kailas-cloud/datadesk/internal/domain/search/result"
)

type mockCatalog struct {
	searchFn  func(ctx context.Context, query string, params result.Params) (result.Page, error)
	listFn    func(ctx context.Context, params result.Params) (result.Page, error)
	suggestFn func(ctx context.Context, partial string) ([]string, error)
	updateFn  func(ctx context.Context, id string, patch map[string]any) (record.Record, error)

	searchCalls []string
	listCalls   []result.Params
}

func (m *mockCatalog) Search(ctx context.Context, query string, params result.Params) (result.Page, error) {
	m.searchCalls = append(m.searchCalls, query)
	if m.searchFn != nil {
		return m.searchFn(ctx, query, params)
	}
	return result.Page{}, nil
}

func (m *mockCatalog) List(ctx context.Context, params result.Params) (result.Page, error) {
	m.listCalls = append(m.listCalls, params)
	if m.listFn != nil {
		return m.listFn(ctx, params)
	}
	return result.Page{}, nil
}

func (m *mockCatalog) Suggest(ctx context.Context, partial string) ([]string, error) {
	if m.suggestFn != nil {
		return m.suggestFn(ctx, partial)
	}
	return nil, nil
}

func (m *mockCatalog) Update(ctx context.Context, id string, patch map[string]any) (record.Record, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch)
	}
	return record.Record{}, nil
}

// memHistory is an in-memory HistoryStore.
type memHistory struct {
	terms   []string
	loadErr error
	saves   int
	clears  int
}

func (m *memHistory) Load(_ context.Context) (history.History, error) {
	if m.loadErr != nil {
		return history.New(nil), m.loadErr
	}
	return history.New(m.terms), nil
}

func (m *memHistory) Save(_ context.Context, h history.History) error {
	m.saves++
	m.terms = h.Terms()
	return nil
}

func (m *memHistory) Clear(_ context.Context) error {
	m.clears++
	m.terms = nil
	m.loadErr = nil
	return nil
}

// memSnapshots is an in-memory SnapshotStore. byKind holds the page scope.
type memSnapshots struct {
	byKind map[record.Kind][]record.Record
	scopes []string
}

func newMemSnapshots() *memSnapshots {
	return &memSnapshots{byKind: map[record.Kind][]record.Record{}}
}

func (m *memSnapshots) Load(_ context.Context, kind record.Kind, scope string) ([]record.Record, bool, error) {
	if scope != SnapshotScope {
		return nil, false, nil
	}
	recs, ok := m.byKind[kind]
	return recs, ok, nil
}

func (m *memSnapshots) Save(_ context.Context, kind record.Kind, scope string, records []record.Record) error {
	m.scopes = append(m.scopes, scope)
	if scope == SnapshotScope {
		m.byKind[kind] = records
	}
	return nil
}

type mockPredictor struct {
	completions []string
	err         error
	lastN       int
}

func (m *mockPredictor) Predict(_ context.Context, _ string, n int) ([]string, error) {
	m.lastN = n
	return m.completions, m.err
}
