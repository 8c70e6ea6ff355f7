// Package memory is an in-process db.Store for single-node deployments and tests.
package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/kailas-cloud/datadesk/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

type entry struct {
	value    []byte
	hash     map[string]string
	expireAt time.Time
}

func (e *entry) expired(now time.Time) bool {
	return !e.expireAt.IsZero() && !now.Before(e.expireAt)
}

// Store keeps keys in a map guarded by a RWMutex. Expired keys are dropped lazily.
type Store struct {
	clock clock.Clock

	mu   sync.RWMutex
	data map[string]*entry
}

// NewStore creates an empty store.
func NewStore(c clock.Clock) *Store {
	if c == nil {
		c = clock.New()
	}
	return &Store{clock: c, data: make(map[string]*entry)}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close drops every key.
func (s *Store) Close() {
	s.mu.Lock()
	s.data = make(map[string]*entry)
	s.mu.Unlock()
}

// WaitForReady returns immediately.
func (s *Store) WaitForReady(context.Context, time.Duration) error { return nil }

// lookup must be called with mu held.
func (s *Store) lookup(key string) (*entry, bool) {
	e, ok := s.data[key]
	if !ok || e.expired(s.clock.Now()) {
		return nil, false
	}
	return e, true
}

// Get retrieves a value by key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.lookup(key)
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	if e.hash != nil {
		return nil, &db.Error{Op: db.OpGet, Err: db.ErrWrongType}
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// Set stores a value at the given key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.SetWithTTL(ctx, key, value, 0)
}

// SetWithTTL stores a value with an expiration. A non-positive ttl never expires.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := &entry{value: make([]byte, len(value))}
	copy(e.value, value)
	if ttl > 0 {
		e.expireAt = s.clock.Now().Add(ttl)
	}
	s.mu.Lock()
	s.data[key] = e
	s.mu.Unlock()
	return nil
}

// Del deletes a key.
func (s *Store) Del(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}

// Exists checks if a key exists.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.lookup(key)
	return ok, nil
}

// HSet sets hash fields.
func (s *Store) HSet(_ context.Context, key string, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lookup(key)
	if !ok {
		e = &entry{hash: make(map[string]string, len(fields))}
		s.data[key] = e
	}
	if e.hash == nil {
		return &db.Error{Op: db.OpHSet, Err: db.ErrWrongType}
	}
	for k, v := range fields {
		e.hash[k] = v
	}
	return nil
}

// HGetAll returns all fields of a hash. A missing key yields an empty map.
func (s *Store) HGetAll(_ context.Context, key string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.lookup(key)
	if !ok {
		return map[string]string{}, nil
	}
	if e.hash == nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: db.ErrWrongType}
	}
	out := make(map[string]string, len(e.hash))
	for k, v := range e.hash {
		out[k] = v
	}
	return out, nil
}

// IncrBy adds val to the integer stored at key. A missing key counts from zero.
func (s *Store) IncrBy(_ context.Context, key string, val int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lookup(key)
	if !ok {
		s.data[key] = &entry{value: []byte(strconv.FormatInt(val, 10))}
		return nil
	}
	if e.hash != nil {
		return &db.Error{Op: db.OpIncrBy, Err: db.ErrWrongType}
	}
	cur, err := strconv.ParseInt(string(e.value), 10, 64)
	if err != nil {
		return &db.Error{Op: db.OpIncrBy, Err: db.ErrNotInteger}
	}
	e.value = []byte(strconv.FormatInt(cur+val, 10))
	return nil
}

// Expire sets a TTL on an existing key. With nx, a key that already expires is left alone.
func (s *Store) Expire(_ context.Context, key string, ttl time.Duration, nx bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lookup(key)
	if !ok {
		return nil
	}
	if nx && !e.expireAt.IsZero() {
		return nil
	}
	e.expireAt = s.clock.Now().Add(ttl)
	return nil
}
