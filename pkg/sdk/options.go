package datadesk

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type budgetConfig struct {
	daily   int64
	monthly int64
	reject  bool
}

type clientConfig struct {
	driver   string // "redis" or "memory"
	addrs    []string
	password string

	catalogURL     string
	catalogToken   string
	catalogTimeout time.Duration
	paths          map[Kind]string
	kinds          []Kind

	predictor    Predictor
	predictorTTL time.Duration
	budget       budgetConfig

	snapshotMaxAge time.Duration
	maxRecords     int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis stores history, snapshots and the completion cache in Redis or Valkey.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithMemory keeps history, snapshots and the completion cache in process memory.
// State is lost when the client is closed.
func WithMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "memory"
		c.addrs = nil
	})
}

// WithCatalog sets the record service base URL and bearer token. Required.
func WithCatalog(baseURL, token string) Option {
	return optionFunc(func(c *clientConfig) {
		c.catalogURL = baseURL
		c.catalogToken = token
	})
}

// WithCatalogTimeout bounds each record service request. Default: 10s.
func WithCatalogTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.catalogTimeout = d
	})
}

// WithCatalogPath overrides the collection path of one record kind,
// e.g. WithCatalogPath(KindAsset, "/data-assets").
func WithCatalogPath(kind Kind, path string) Option {
	return optionFunc(func(c *clientConfig) {
		if c.paths == nil {
			c.paths = make(map[Kind]string)
		}
		c.paths[kind] = path
	})
}

// WithKinds restricts the record kinds the client serves. Default: all.
func WithKinds(kinds ...Kind) Option {
	return optionFunc(func(c *clientConfig) {
		c.kinds = kinds
	})
}

// WithPredictor enables predictive suggestions. Completions are cached for ttl
// (0 means one day).
func WithPredictor(p Predictor, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.predictor = p
		c.predictorTTL = ttl
	})
}

// WithPredictorBudget caps completion tokens per UTC day and month (0 = unlimited).
// With reject set, requests over budget fail with ErrPredictorQuota and suggestions
// fall back to the other sources; otherwise the overrun is only logged.
// Counters are kept in the client's storage.
func WithPredictorBudget(daily, monthly int64, reject bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.budget = budgetConfig{daily: daily, monthly: monthly, reject: reject}
	})
}

// WithSnapshotMaxAge hides fallback snapshots older than d. Default: keep forever.
func WithSnapshotMaxAge(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.snapshotMaxAge = d
	})
}

// WithMaxSummaryRecords caps how many applications a summary fetches.
// Default: 5000.
func WithMaxSummaryRecords(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxRecords = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
