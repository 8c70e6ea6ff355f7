package chi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/datadesk/internal/db/memory"
	"github.com/kailas-cloud/datadesk/internal/domain/record"
	"github.com/kailas-cloud/datadesk/internal/domain/search/result"
	historyrepo "github.com/kailas-cloud/datadesk/internal/repository/history"
	snapshotrepo "github.com/kailas-cloud/datadesk/internal/repository/snapshot"
	aggregateuc "github.com/kailas-cloud/datadesk/internal/usecase/aggregate"
	healthuc "github.com/kailas-cloud/datadesk/internal/usecase/health"
	searchuc "github.com/kailas-cloud/datadesk/internal/usecase/search"
	"github.com/kailas-cloud/datadesk/internal/usecase/view"
)

// fakeCatalog implements the record service contract with fn fields.
type fakeCatalog struct {
	mu        sync.Mutex
	searchFn  func(ctx context.Context, query string, p result.Params) (result.Page, error)
	listFn    func(ctx context.Context, p result.Params) (result.Page, error)
	suggestFn func(ctx context.Context, partial string) ([]string, error)
	updateFn  func(ctx context.Context, id string, patch map[string]any) (record.Record, error)
	queries   []string
	params    []result.Params
}

func (f *fakeCatalog) Search(ctx context.Context, query string, p result.Params) (result.Page, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.params = append(f.params, p)
	f.mu.Unlock()
	if f.searchFn != nil {
		return f.searchFn(ctx, query, p)
	}
	return result.Page{}, nil
}

func (f *fakeCatalog) List(ctx context.Context, p result.Params) (result.Page, error) {
	f.mu.Lock()
	f.params = append(f.params, p)
	f.mu.Unlock()
	if f.listFn != nil {
		return f.listFn(ctx, p)
	}
	return result.Page{}, nil
}

func (f *fakeCatalog) Suggest(ctx context.Context, partial string) ([]string, error) {
	if f.suggestFn != nil {
		return f.suggestFn(ctx, partial)
	}
	return nil, nil
}

func (f *fakeCatalog) Update(ctx context.Context, id string, patch map[string]any) (record.Record, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, patch)
	}
	return record.New(id, record.KindAsset, record.Fields{}), nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type testEnv struct {
	assets *fakeCatalog
	apps   *fakeCatalog
	router http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore(nil)
	hist := historyrepo.New(store)
	snaps := snapshotrepo.New(store, 0)

	env := &testEnv{assets: &fakeCatalog{}, apps: &fakeCatalog{}}
	assetSvc := searchuc.New(record.KindAsset, env.assets, snaps, hist)
	appSvc := searchuc.New(record.KindApplication, env.apps, snaps, hist)

	registry := view.NewRegistry(map[record.Kind]view.Searcher{
		record.KindAsset:       assetSvc,
		record.KindApplication: appSvc,
	}, view.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	go registry.Run(ctx)
	t.Cleanup(cancel)

	server := NewServer(
		map[record.Kind]*searchuc.Service{
			record.KindAsset:       assetSvc,
			record.KindApplication: appSvc,
		},
		aggregateuc.New(env.apps, snaps),
		registry,
		healthuc.New(fakePinger{}),
		zap.NewNop(),
	)
	env.router = server.Handler()
	return env
}

func (e *testEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader = http.NoBody
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rr.Body.String())
	}
	return v
}

func assets(names ...string) []record.Record {
	out := make([]record.Record, len(names))
	for i, n := range names {
		out[i] = record.New("a"+n, record.KindAsset, record.Fields{Name: n, Domain: "Sales", Type: "Dataset"})
	}
	return out
}
