package search

import (
	"context"

	"github.com/kailas-cloud/datadesk/internal/domain/record"
	"github.com/kailas-cloud/datadesk/internal/domain/search/history"
	"github.com/kailas-cloud/datadesk/internal/domain/search/result"
)

// Catalog is the remote record service.
type Catalog interface {
	Search(ctx context.Context, query string, params result.Params) (result.Page, error)
	List(ctx context.Context, params result.Params) (result.Page, error)
	Suggest(ctx context.Context, partial string) ([]string, error)
	Update(ctx context.Context, id string, patch map[string]any) (record.Record, error)
}

// HistoryStore persists the recent search terms.
// Load returns an empty history wrapped with domain.ErrCorruptHistory when the stored value is unreadable.
type HistoryStore interface {
	Load(ctx context.Context) (history.History, error)
	Save(ctx context.Context, h history.History) error
	Clear(ctx context.Context) error
}

// SnapshotStore keeps the last record set fetched successfully per kind and scope.
type SnapshotStore interface {
	Load(ctx context.Context, kind record.Kind, scope string) ([]record.Record, bool, error)
	Save(ctx context.Context, kind record.Kind, scope string, records []record.Record) error
}

// Predictor proposes query completions for the predictive suggestion variant.
type Predictor interface {
	Predict(ctx context.Context, partial string, n int) ([]string, error)
}
