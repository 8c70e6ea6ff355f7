package datadesk

import (
	"context"

	"github.com/kailas-cloud/datadesk/internal/domain/record"
	"github.com/kailas-cloud/datadesk/internal/domain/search/request"
	"github.com/kailas-cloud/datadesk/internal/domain/search/result"
	"github.com/kailas-cloud/datadesk/internal/domain/search/suggestion"
	aggregateuc "github.com/kailas-cloud/datadesk/internal/usecase/aggregate"
	healthuc "github.com/kailas-cloud/datadesk/internal/usecase/health"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn  func(ctx context.Context, req *request.Request) (result.Outcome, error)
	suggestFn func(ctx context.Context, query string, predictive bool) ([]suggestion.Suggestion, error)
	historyFn func(ctx context.Context) []string
	clearFn   func(ctx context.Context) error
	updateFn  func(ctx context.Context, id string, patch map[string]any) (record.Record, error)
}

func (m *mockSearchUC) Search(ctx context.Context, req *request.Request) (result.Outcome, error) {
	return m.searchFn(ctx, req)
}

func (m *mockSearchUC) Suggest(ctx context.Context, query string, predictive bool) ([]suggestion.Suggestion, error) {
	return m.suggestFn(ctx, query, predictive)
}

func (m *mockSearchUC) History(ctx context.Context) []string {
	return m.historyFn(ctx)
}

func (m *mockSearchUC) ClearHistory(ctx context.Context) error {
	return m.clearFn(ctx)
}

func (m *mockSearchUC) Update(ctx context.Context, id string, patch map[string]any) (record.Record, error) {
	return m.updateFn(ctx, id, patch)
}

// --- summaryUseCase mock ---

type mockSummaryUC struct {
	summaryFn func(ctx context.Context, p aggregateuc.Params) (aggregateuc.Summary, error)
}

func (m *mockSummaryUC) Summary(ctx context.Context, p aggregateuc.Params) (aggregateuc.Summary, error) {
	return m.summaryFn(ctx, p)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

// --- helpers ---

func testClient(search map[Kind]searchUseCase, summary summaryUseCase) *Client {
	return &Client{search: search, summary: summary}
}

func asset(id, name string) record.Record {
	return record.New(id, record.KindAsset, record.Fields{Name: name, Type: "Dataset", Domain: "Sales"})
}
