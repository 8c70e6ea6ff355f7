package aggregate

import (
	"context"

	"github.com/kailas-cloud/datadesk/internal/domain/record"
	"github.com/kailas-cloud/datadesk/internal/domain/search/result"
)

// Lister pages through the record service.
type Lister interface {
	List(ctx context.Context, params result.Params) (result.Page, error)
}

// SnapshotStore keeps the last application set summarized successfully.
type SnapshotStore interface {
	Load(ctx context.Context, kind record.Kind, scope string) ([]record.Record, bool, error)
	Save(ctx context.Context, kind record.Kind, scope string, records []record.Record) error
}
