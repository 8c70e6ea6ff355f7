package predcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/datadesk/internal/db"
	"github.com/kailas-cloud/datadesk/internal/domain"
)

var cacheKeyPrefix = domain.KeyPrefix + "pred_cache:"

// DefaultTTL bounds how long a completion list is reused.
const DefaultTTL = 24 * time.Hour

// store is the consumer interface for the completion cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedPredictor caches completion lists in a key-value store.
type CachedPredictor struct {
	inner      domain.Predictor
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner domain.Predictor,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedPredictor {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedPredictor{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Predict returns cached completions or calls the inner predictor.
// Partials differing only in case or surrounding spaces share an entry.
func (c *CachedPredictor) Predict(ctx context.Context, partial string, n int) ([]string, error) {
	key := c.cacheKey(partial, n)

	if list, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		domain.UsageFromContext(ctx).MarkUsed()
		return list, nil
	}

	c.incCache("miss")

	list, err := c.inner.Predict(ctx, partial, n)
	if err != nil {
		return nil, fmt.Errorf("predict completions: %w", err)
	}

	c.putToCache(ctx, key, list)
	return list, nil
}

func (c *CachedPredictor) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedPredictor) cacheKey(partial string, n int) string {
	norm := strings.ToLower(strings.TrimSpace(partial))
	h := sha256.Sum256([]byte(strconv.Itoa(n) + "\x00" + norm))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedPredictor) getFromCache(ctx context.Context, key string) ([]string, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached completions", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		c.logger.Warn("Failed to parse cached completions", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return list, true
}

func (c *CachedPredictor) putToCache(ctx context.Context, key string, list []string) {
	if list == nil {
		list = []string{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		c.logger.Warn("Failed to encode completions", zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache completions", zap.String("key", key), zap.Error(err))
	}
}
