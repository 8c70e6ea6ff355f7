package view

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/datadesk/internal/domain"
	"github.com/kailas-cloud/datadesk/internal/domain/record"
	"github.com/kailas-cloud/datadesk/internal/metrics"
)

// Registry limits.
const (
	DefaultIdleTimeout = 30 * time.Minute
	DefaultMaxSessions = 1000
)

// ErrTooManySessions signals that the registry is full.
var ErrTooManySessions = fmt.Errorf("%w: too many open sessions", domain.ErrInvalidRequest)

// Registry holds open sessions by id and expires idle ones.
type Registry struct {
	searchers   map[record.Kind]Searcher
	opts        Options
	idleTimeout time.Duration
	maxSessions int
	clock       clock.Clock
	logger      *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates a Registry serving the given record kinds.
func NewRegistry(searchers map[record.Kind]Searcher, opts Options) *Registry {
	return &Registry{
		searchers:   searchers,
		opts:        opts,
		idleTimeout: DefaultIdleTimeout,
		maxSessions: DefaultMaxSessions,
		clock:       clock.New(),
		logger:      zap.NewNop(),
		sessions:    make(map[string]*Session),
	}
}

// WithLimits overrides idle expiry and capacity. Non-positive values keep the defaults.
func (r *Registry) WithLimits(idle time.Duration, maxSessions int) *Registry {
	if idle > 0 {
		r.idleTimeout = idle
	}
	if maxSessions > 0 {
		r.maxSessions = maxSessions
	}
	return r
}

// WithClock overrides the clock used by sessions and expiry.
func (r *Registry) WithClock(c clock.Clock) *Registry {
	r.clock = c
	return r
}

// WithLogger sets the logger.
func (r *Registry) WithLogger(l *zap.Logger) *Registry {
	r.logger = l
	return r
}

// Open starts a session for a record kind.
func (r *Registry) Open(kind record.Kind, predictive bool) (*Session, error) {
	searcher, ok := r.searchers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported record kind %q", domain.ErrInvalidRequest, kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sessions) >= r.maxSessions {
		return nil, ErrTooManySessions
	}

	opts := r.opts
	opts.Predictive = predictive
	s := NewSession(uuid.NewString(), kind, searcher, r.clock, opts).WithLogger(r.logger)
	r.sessions[s.ID()] = s
	metrics.ActiveSessions.Set(float64(len(r.sessions)))

	r.logger.Debug("Session opened", zap.String("session_id", s.ID()), zap.String("kind", string(kind)))
	return s, nil
}

// Get returns an open session.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	s.markUsed()
	return s, nil
}

// Close ends a session.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	r.mu.Unlock()
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.Close()
	return nil
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes sessions idle for longer than the idle timeout and returns how many were closed.
func (r *Registry) Sweep() int {
	cutoff := r.clock.Now().Add(-r.idleTimeout)

	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	r.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	if len(expired) > 0 {
		r.logger.Info("Expired idle sessions", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Run sweeps idle sessions until ctx is done, then closes every session.
func (r *Registry) Run(ctx context.Context) {
	ticker := r.clock.Ticker(r.idleTimeout / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *Registry) closeAll() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*Session)
	metrics.ActiveSessions.Set(0)
	r.mu.Unlock()
	for _, s := range all {
		s.Close()
	}
}
