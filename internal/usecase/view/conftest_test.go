package view

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/datadesk/internal/domain/record"
	"github.com/kailas-cloud/datadesk/internal/domain/search/request"
	"github.com/kailas-cloud/datadesk/internal/domain/search/result"
	"github.com/kailas-cloud/datadesk/internal/domain/search/suggestion"
)

// fakeSearcher records calls and reports each one on a channel.
type fakeSearcher struct {
	searchFn  func(ctx context.Context, req *request.Request) (result.Outcome, error)
	suggestFn func(ctx context.Context, query string, predictive bool) ([]suggestion.Suggestion, error)

	mu       sync.Mutex
	queries  []string
	suggests []string
	searched chan string
	suggestC chan string
}

func newFakeSearcher() *fakeSearcher {
	return &fakeSearcher{
		searched: make(chan string, 64),
		suggestC: make(chan string, 64),
	}
}

func (f *fakeSearcher) Search(ctx context.Context, req *request.Request) (result.Outcome, error) {
	f.mu.Lock()
	f.queries = append(f.queries, req.Query())
	f.mu.Unlock()
	defer func() { f.searched <- req.Query() }()
	if f.searchFn != nil {
		return f.searchFn(ctx, req)
	}
	return result.Outcome{
		Records:    []record.Record{record.New("r1", record.KindAsset, record.Fields{Name: req.Query()})},
		Total:      1,
		Page:       req.Page(),
		TotalPages: 1,
		Source:     result.SourceRemote,
	}, nil
}

func (f *fakeSearcher) Suggest(ctx context.Context, query string, predictive bool) ([]suggestion.Suggestion, error) {
	f.mu.Lock()
	f.suggests = append(f.suggests, query)
	f.mu.Unlock()
	defer func() { f.suggestC <- query }()
	if f.suggestFn != nil {
		return f.suggestFn(ctx, query, predictive)
	}
	return []suggestion.Suggestion{suggestion.New(query+"!", suggestion.SourceServer)}, nil
}

func (f *fakeSearcher) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

// receive waits for one value or fails the test.
func receive(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for call")
		return ""
	}
}

// quiet fails the test if a value arrives shortly.
func quiet(t *testing.T, ch <-chan string) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("unexpected call with %q", v)
	case <-time.After(50 * time.Millisecond):
	}
}

// waitFor polls cond until it holds or fails the test.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met")
		}
		time.Sleep(time.Millisecond)
	}
}
