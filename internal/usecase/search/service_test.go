package search

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/benbjohnson/clock"

	"github.com/kailas-cloud/datadesk/internal/domain"
	"github.com/kailas-cloud/datadesk/internal/domain/record"
	"github.com/kailas-cloud/datadesk/internal/domain/search/filter"
	"github.com/kailas-cloud/datadesk/internal/domain/search/request"
	"github.com/kailas-cloud/datadesk/internal/domain/search/result"
	"github.com/kailas-cloud/datadesk/internal/domain/search/suggestion"
	"github.com/kailas-cloud/datadesk/internal/domain/search/tab"
)

func newService(cat *mockCatalog, snaps *memSnapshots, hist *memHistory) *Service {
	mock := clock.NewMock()
	mock.Set(now)
	return New(record.KindAsset, cat, snaps, hist).WithClock(mock)
}

func makeRequest(t *testing.T, query string, sel filter.Selection, tb tab.Tab, page int) *request.Request {
	t.Helper()
	r, err := request.New(query, sel, tb, nil, page, 10, "")
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &r
}

func TestSearch_RemoteQuery(t *testing.T) {
	cat := &mockCatalog{
		searchFn: func(_ context.Context, _ string, p result.Params) (result.Page, error) {
			if p.Page != 1 || p.Limit != 10 || p.Sort != request.DefaultSort {
				t.Errorf("unexpected params: %+v", p)
			}
			return result.Page{Records: scenarioRecords(), Total: 2}, nil
		},
	}
	snaps := newMemSnapshots()
	hist := &memHistory{}
	svc := newService(cat, snaps, hist)

	out, err := svc.Search(context.Background(), makeRequest(t, " sales ", filter.Selection{}, tab.All, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Source != result.SourceRemote || out.Notice != nil {
		t.Errorf("source = %q, notice = %v", out.Source, out.Notice)
	}
	if len(out.Records) != 2 || out.Total != 2 || out.TotalPages != 1 {
		t.Errorf("unexpected outcome: %+v", out)
	}
	if out.LocallyFiltered {
		t.Error("plain query must not be filtered locally")
	}
	if !slices.Equal(cat.searchCalls, []string{"sales"}) {
		t.Errorf("search calls = %v", cat.searchCalls)
	}
	if !slices.Equal(hist.terms, []string{"sales"}) {
		t.Errorf("history = %v", hist.terms)
	}
	if len(snaps.byKind[record.KindAsset]) != 2 || !slices.Equal(snaps.scopes, []string{SnapshotScope}) {
		t.Errorf("snapshot not saved under the page scope: %v", snaps.scopes)
	}
}

func TestSearch_EmptyQueryLists(t *testing.T) {
	cat := &mockCatalog{}
	hist := &memHistory{}
	svc := newService(cat, newMemSnapshots(), hist)

	sel, _ := filter.NewSelection(map[filter.Dimension][]string{filter.Type: {"Report"}})
	if _, err := svc.Search(context.Background(), makeRequest(t, "", sel, tab.All, 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cat.listCalls) != 1 || len(cat.searchCalls) != 0 {
		t.Fatalf("list=%d search=%d", len(cat.listCalls), len(cat.searchCalls))
	}
	if cat.listCalls[0].Type != "Report" {
		t.Errorf("type param = %q", cat.listCalls[0].Type)
	}
	if hist.saves != 0 {
		t.Error("empty query must not be remembered")
	}
}

func TestSearch_LocalNarrowing(t *testing.T) {
	cat := &mockCatalog{
		listFn: func(_ context.Context, p result.Params) (result.Page, error) {
			if p.Domain != "" {
				t.Errorf("multi-value domain must not be sent upstream, got %q", p.Domain)
			}
			return result.Page{Records: scenarioRecords(), Total: 2}, nil
		},
	}
	svc := newService(cat, newMemSnapshots(), &memHistory{})

	out, err := svc.Search(context.Background(), makeRequest(t, "", filter.Selection{}, tab.PendingCertification, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.LocallyFiltered || len(out.Records) != 1 || out.Records[0].ID() != "1" {
		t.Errorf("got %v (local=%v)", ids(out.Records), out.LocallyFiltered)
	}
	// totals keep counting the remote set the page was drawn from
	if out.Total != 2 || out.TotalPages != 1 {
		t.Errorf("total = %d/%d pages, want remote 2/1", out.Total, out.TotalPages)
	}
}

func TestSearch_ClampsShrunkPage(t *testing.T) {
	cat := &mockCatalog{
		listFn: func(_ context.Context, p result.Params) (result.Page, error) {
			return result.Page{Records: scenarioRecords()[:1], Total: 15}, nil
		},
	}
	svc := newService(cat, newMemSnapshots(), &memHistory{})

	out, err := svc.Search(context.Background(), makeRequest(t, "", filter.Selection{}, tab.All, 7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Page != 2 || out.TotalPages != 2 {
		t.Errorf("page = %d/%d, want 2/2", out.Page, out.TotalPages)
	}
	if len(cat.listCalls) != 2 || cat.listCalls[1].Page != 2 {
		t.Errorf("list calls = %+v", cat.listCalls)
	}
}

func TestSearch_FallbackToSnapshot(t *testing.T) {
	snaps := newMemSnapshots()
	snaps.byKind[record.KindAsset] = scenarioRecords()
	cat := &mockCatalog{
		searchFn: func(context.Context, string, result.Params) (result.Page, error) {
			return result.Page{}, domain.NewUpstreamError(503, "unavailable")
		},
	}
	hist := &memHistory{}
	svc := newService(cat, snaps, hist)

	out, err := svc.Search(context.Background(), makeRequest(t, "mar", filter.Selection{}, tab.All, 1))
	if err != nil {
		t.Fatalf("fallback must not fail: %v", err)
	}
	if out.Source != result.SourceCache {
		t.Errorf("source = %q", out.Source)
	}
	if out.Notice == nil || out.Notice.Kind != result.NoticeFetchFailed || !out.Notice.Retryable {
		t.Errorf("notice = %+v", out.Notice)
	}
	if len(out.Records) != 1 || out.Records[0].ID() != "1" || out.Total != 1 {
		t.Errorf("records = %v", ids(out.Records))
	}
	if hist.saves != 0 {
		t.Error("failed search must not be remembered")
	}
}

func TestSearch_FallbackToEmpty(t *testing.T) {
	cat := &mockCatalog{
		listFn: func(context.Context, result.Params) (result.Page, error) {
			return result.Page{}, errors.New("connection refused")
		},
	}
	svc := newService(cat, newMemSnapshots(), &memHistory{})

	out, err := svc.Search(context.Background(), makeRequest(t, "", filter.Selection{}, tab.All, 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Source != result.SourceEmpty || len(out.Records) != 0 || out.Page != 1 || out.TotalPages != 0 {
		t.Errorf("unexpected outcome: %+v", out)
	}
	if out.Notice == nil {
		t.Error("expected notice")
	}
}

func TestSearch_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cat := &mockCatalog{
		listFn: func(ctx context.Context, _ result.Params) (result.Page, error) {
			return result.Page{}, ctx.Err()
		},
	}
	svc := newService(cat, newMemSnapshots(), &memHistory{})

	_, err := svc.Search(ctx, makeRequest(t, "", filter.Selection{}, tab.All, 1))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSearch_HistoryCap(t *testing.T) {
	hist := &memHistory{}
	svc := newService(&mockCatalog{}, newMemSnapshots(), hist)

	for i := 1; i <= 6; i++ {
		q := fmt.Sprintf("term%d", i)
		if _, err := svc.Search(context.Background(), makeRequest(t, q, filter.Selection{}, tab.All, 1)); err != nil {
			t.Fatalf("search %q: %v", q, err)
		}
	}
	want := []string{"term6", "term5", "term4", "term3", "term2"}
	if !slices.Equal(hist.terms, want) {
		t.Errorf("history = %v, want %v", hist.terms, want)
	}
}

func TestSearch_CorruptHistoryReset(t *testing.T) {
	hist := &memHistory{loadErr: fmt.Errorf("decode: %w", domain.ErrCorruptHistory)}
	svc := newService(&mockCatalog{}, newMemSnapshots(), hist)

	if _, err := svc.Search(context.Background(), makeRequest(t, "budget", filter.Selection{}, tab.All, 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hist.clears != 1 {
		t.Errorf("clears = %d, want 1", hist.clears)
	}
	if !slices.Equal(hist.terms, []string{"budget"}) {
		t.Errorf("history = %v", hist.terms)
	}
}

func TestSuggest_Merges(t *testing.T) {
	snaps := newMemSnapshots()
	snaps.byKind[record.KindAsset] = scenarioRecords()
	cat := &mockCatalog{
		suggestFn: func(context.Context, string) ([]string, error) { return []string{"Sales Pipeline"}, nil },
	}
	svc := newService(cat, snaps, &memHistory{terms: []string{"sales q3"}})

	got, err := svc.Suggest(context.Background(), "sal", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"sales q3", "Sales Pipeline", "Sales Transactions", "Sales"}
	if !slices.Equal(suggestion.Texts(got), want) {
		t.Errorf("got %v, want %v", suggestion.Texts(got), want)
	}
}

func TestSuggest_RemoteFailureDegrades(t *testing.T) {
	cat := &mockCatalog{
		suggestFn: func(context.Context, string) ([]string, error) { return nil, errors.New("timeout") },
	}
	svc := newService(cat, newMemSnapshots(), &memHistory{})

	got, err := svc.Suggest(context.Background(), "mar", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(suggestion.Texts(got), []string{"Marketing"}) {
		t.Errorf("got %v", suggestion.Texts(got))
	}
}

func TestSuggest_Predictive(t *testing.T) {
	pred := &mockPredictor{completions: []string{"a1", "a2", "a3", "a4", "a5", "a6", "a7", "a8"}}
	svc := newService(&mockCatalog{}, newMemSnapshots(), &memHistory{}).WithPredictor(pred)

	got, err := svc.Suggest(context.Background(), "a", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != suggestion.MaxPredictive {
		t.Errorf("len = %d, want %d", len(got), suggestion.MaxPredictive)
	}
	if pred.lastN != suggestion.MaxPredictive {
		t.Errorf("predictor n = %d", pred.lastN)
	}
	if got[0].Source() != suggestion.SourcePredicted {
		t.Errorf("source = %q", got[0].Source())
	}

	plain, _ := svc.Suggest(context.Background(), "a", false)
	if len(plain) != 0 {
		t.Errorf("non-predictive got %v", suggestion.Texts(plain))
	}
}

func TestSuggest_PredictorFailureDegrades(t *testing.T) {
	pred := &mockPredictor{err: domain.ErrPredictor}
	cat := &mockCatalog{
		suggestFn: func(context.Context, string) ([]string, error) { return []string{"alpha"}, nil },
	}
	svc := newService(cat, newMemSnapshots(), &memHistory{}).WithPredictor(pred)

	got, err := svc.Suggest(context.Background(), "al", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(suggestion.Texts(got), []string{"alpha"}) {
		t.Errorf("got %v", suggestion.Texts(got))
	}
}

func TestSuggest_EmptyQuery(t *testing.T) {
	cat := &mockCatalog{
		suggestFn: func(context.Context, string) ([]string, error) {
			t.Error("remote must not be called for an empty query")
			return nil, nil
		},
	}
	svc := newService(cat, newMemSnapshots(), &memHistory{})
	got, err := svc.Suggest(context.Background(), "  ", false)
	if err != nil || len(got) != 0 {
		t.Errorf("got %v, %v", got, err)
	}
}

func TestUpdate(t *testing.T) {
	cat := &mockCatalog{
		updateFn: func(_ context.Context, id string, patch map[string]any) (record.Record, error) {
			return record.New(id, record.KindAsset, record.Fields{Status: patch["status"].(string)}), nil
		},
	}
	svc := newService(cat, newMemSnapshots(), &memHistory{})

	rec, err := svc.Update(context.Background(), "7", map[string]any{"status": "Approved"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID() != "7" || rec.Status() != "Approved" {
		t.Errorf("got %q/%q", rec.ID(), rec.Status())
	}

	tests := []struct {
		name  string
		id    string
		patch map[string]any
	}{
		{"missing id", "", map[string]any{"status": "x"}},
		{"empty patch", "7", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Update(context.Background(), tt.id, tt.patch)
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestUpdate_UpstreamError(t *testing.T) {
	cat := &mockCatalog{
		updateFn: func(context.Context, string, map[string]any) (record.Record, error) {
			return record.Record{}, domain.ErrNotFound
		},
	}
	svc := newService(cat, newMemSnapshots(), &memHistory{})
	_, err := svc.Update(context.Background(), "missing", map[string]any{"a": 1})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestHistoryAndClear(t *testing.T) {
	hist := &memHistory{terms: []string{"b", "a"}}
	svc := newService(&mockCatalog{}, newMemSnapshots(), hist)

	if got := svc.History(context.Background()); !slices.Equal(got, []string{"b", "a"}) {
		t.Errorf("History = %v", got)
	}
	if err := svc.ClearHistory(context.Background()); err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}
	if got := svc.History(context.Background()); len(got) != 0 {
		t.Errorf("History after clear = %v", got)
	}
}
