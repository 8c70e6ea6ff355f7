package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/datadesk/internal/db"
	"github.com/kailas-cloud/datadesk/internal/domain"
	domhist "github.com/kailas-cloud/datadesk/internal/domain/search/history"
)

// Key is the fixed key of the persisted search history.
const Key = domain.KeyPrefix + "search_history"

// store is the consumer interface for history persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
}

// Store persists the search history as a JSON string array under a fixed key.
type Store struct {
	store store
	key   string
}

// New creates a history store.
func New(s store) *Store {
	return &Store{store: s, key: Key}
}

// Load reads the history. A missing key is an empty history. An unreadable value yields an
// empty history and an error wrapping domain.ErrCorruptHistory.
func (s *Store) Load(ctx context.Context) (domhist.History, error) {
	data, err := s.store.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domhist.New(nil), nil
		}
		if errors.Is(err, db.ErrWrongType) {
			return domhist.New(nil), fmt.Errorf("%w: %w", domain.ErrCorruptHistory, err)
		}
		return domhist.New(nil), fmt.Errorf("history GET: %w", err)
	}

	var terms []string
	if err := json.Unmarshal(data, &terms); err != nil {
		return domhist.New(nil), fmt.Errorf("%w: %w", domain.ErrCorruptHistory, err)
	}
	return domhist.New(terms), nil
}

// Save overwrites the persisted history.
func (s *Store) Save(ctx context.Context, h domhist.History) error {
	data, err := json.Marshal(h.Terms())
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := s.store.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("history SET: %w", err)
	}
	return nil
}

// Clear deletes the persisted history.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.store.Del(ctx, s.key); err != nil {
		return fmt.Errorf("history DEL: %w", err)
	}
	return nil
}
