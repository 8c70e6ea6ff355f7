package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/kailas-cloud/datadesk/internal/domain"
	"github.com/kailas-cloud/datadesk/internal/domain/record"
)

const keyPrefix = domain.KeyPrefix + "snapshot:"

// store is the consumer interface for snapshot persistence (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
}

// Store keeps the last record set fetched successfully per kind and scope, as a hash of
// the JSON-encoded records and the fetch time. Each save replaces the previous snapshot
// of the same kind and scope. Callers name their scope: search keeps the last page it
// served, summaries keep the full application set they were computed over.
type Store struct {
	store  store
	maxAge time.Duration
	clock  clock.Clock
}

// New creates a snapshot store. A positive maxAge makes older snapshots invisible.
func New(s store, maxAge time.Duration) *Store {
	return &Store{store: s, maxAge: maxAge, clock: clock.New()}
}

// WithClock overrides the clock used for fetch times.
func (s *Store) WithClock(c clock.Clock) *Store {
	s.clock = c
	return s
}

// Key returns the hash key of a snapshot.
func Key(kind record.Kind, scope string) string {
	return keyPrefix + string(kind) + ":" + scope
}

// Save replaces the snapshot of a kind and scope.
func (s *Store) Save(ctx context.Context, kind record.Kind, scope string, records []record.Record) error {
	rows := make([]recordRow, len(records))
	for i := range records {
		rows[i] = toRow(&records[i])
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	key := Key(kind, scope)
	if err := s.store.Del(ctx, key); err != nil {
		return fmt.Errorf("snapshot DEL %s: %w", key, err)
	}
	fields := map[string]string{
		"records":    string(data),
		"count":      strconv.Itoa(len(rows)),
		"fetched_at": strconv.FormatInt(s.clock.Now().UnixMilli(), 10),
	}
	if err := s.store.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("snapshot HSET %s: %w", key, err)
	}
	return nil
}

// Load returns the snapshot of a kind and scope. ok is false when there is none or it is too old.
func (s *Store) Load(ctx context.Context, kind record.Kind, scope string) ([]record.Record, bool, error) {
	key := Key(kind, scope)
	m, err := s.store.HGetAll(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("snapshot HGETALL %s: %w", key, err)
	}
	if len(m) == 0 {
		return nil, false, nil
	}

	fetchedAt, err := strconv.ParseInt(m["fetched_at"], 10, 64)
	if err != nil {
		return nil, false, fmt.Errorf("snapshot %s: invalid fetched_at: %w", key, err)
	}
	if s.maxAge > 0 && s.clock.Since(time.UnixMilli(fetchedAt)) > s.maxAge {
		return nil, false, nil
	}

	var rows []recordRow
	if err := json.Unmarshal([]byte(m["records"]), &rows); err != nil {
		return nil, false, fmt.Errorf("snapshot %s: unmarshal records: %w", key, err)
	}
	out := make([]record.Record, len(rows))
	for i := range rows {
		out[i] = fromRow(&rows[i], kind)
	}
	return out, true, nil
}
