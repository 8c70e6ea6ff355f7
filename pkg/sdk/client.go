package datadesk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/datadesk/internal/db"
	"github.com/kailas-cloud/datadesk/internal/db/memory"
	dbRedis "github.com/kailas-cloud/datadesk/internal/db/redis"
	"github.com/kailas-cloud/datadesk/internal/domain"
	"github.com/kailas-cloud/datadesk/internal/domain/record"
	"github.com/kailas-cloud/datadesk/internal/domain/search/request"
	"github.com/kailas-cloud/datadesk/internal/domain/search/result"
	"github.com/kailas-cloud/datadesk/internal/domain/search/suggestion"
	budgetrepo "github.com/kailas-cloud/datadesk/internal/repository/budget"
	historyrepo "github.com/kailas-cloud/datadesk/internal/repository/history"
	"github.com/kailas-cloud/datadesk/internal/repository/predcache"
	snapshotrepo "github.com/kailas-cloud/datadesk/internal/repository/snapshot"
	"github.com/kailas-cloud/datadesk/internal/transport/catalogapi"
	aggregateuc "github.com/kailas-cloud/datadesk/internal/usecase/aggregate"
	"github.com/kailas-cloud/datadesk/internal/usecase/completion"
	healthuc "github.com/kailas-cloud/datadesk/internal/usecase/health"
	searchuc "github.com/kailas-cloud/datadesk/internal/usecase/search"
	usageuc "github.com/kailas-cloud/datadesk/internal/usecase/usage"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, swapped for mocks in tests.
type searchUseCase interface {
	Search(ctx context.Context, req *request.Request) (result.Outcome, error)
	Suggest(ctx context.Context, query string, predictive bool) ([]suggestion.Suggestion, error)
	History(ctx context.Context) []string
	ClearHistory(ctx context.Context) error
	Update(ctx context.Context, id string, patch map[string]any) (record.Record, error)
}

type summaryUseCase interface {
	Summary(ctx context.Context, p aggregateuc.Params) (aggregateuc.Summary, error)
}

// Client is the datadesk SDK entry point.
type Client struct {
	store     db.Store
	search    map[Kind]searchUseCase
	summary   summaryUseCase
	healthSvc healthUseCase
	usageSvc  usageUseCase
	obs       *observer
}

// New creates a datadesk Client and connects to the database.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New("datadesk: storage required (use WithRedis or WithMemory)")
	}
	if cfg.catalogURL == "" {
		return nil, errors.New("datadesk: record service required (use WithCatalog)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("datadesk: database not ready: %w", err)
	}

	c, err := wireClient(ctx, store, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("datadesk: create redis store: %w", err)
		}
		return s, nil
	case "memory":
		return memory.NewStore(clock.New()), nil
	default:
		return nil, fmt.Errorf("datadesk: unknown driver %q", cfg.driver)
	}
}

func wireClient(ctx context.Context, store db.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	kinds := cfg.kinds
	if len(kinds) == 0 {
		kinds = []Kind{KindAsset, KindApplication, KindTimeline}
	}

	var (
		predictor    domain.Predictor
		budgetReader usageuc.BudgetReader
	)
	if cfg.predictor != nil {
		var checker completion.BudgetChecker
		if cfg.budget.daily > 0 || cfg.budget.monthly > 0 {
			action := completion.BudgetActionWarn
			if cfg.budget.reject {
				action = completion.BudgetActionReject
			}
			bt := completion.NewBudgetTracker("sdk", cfg.budget.daily, cfg.budget.monthly, action, nil, nil).
				WithStore(ctx, budgetrepo.New(store, 0, 0))
			checker, budgetReader = bt, bt
		}
		budgeted := completion.NewBudgetedPredictor(&predictorAdapter{inner: cfg.predictor}, "sdk", checker, nil, nil)

		// The SDK does not register process-wide metrics; the cache counter stays local.
		cacheTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "datadesk",
			Subsystem: "sdk",
			Name:      "predictor_cache_total",
			Help:      "Predictor cache hits and misses.",
		}, []string{"result"})
		predictor = predcache.New(
			domain.NewCleanPredictor(budgeted),
			store, cfg.predictorTTL, cacheTotal, nil,
		)
	}

	hist := historyrepo.New(store)
	snaps := snapshotrepo.New(store, cfg.snapshotMaxAge)
	healthSvc := healthuc.New(store)

	c := &Client{
		store:     store,
		search:    make(map[Kind]searchUseCase, len(kinds)),
		healthSvc: healthSvc,
		usageSvc:  usageuc.New(budgetReader, "", cfg.predictor != nil),
		obs:       obs,
	}
	for _, k := range kinds {
		kind := record.Kind(k)
		client, err := catalogapi.New(kind, &catalogapi.Config{
			BaseURL: cfg.catalogURL,
			Path:    cfg.paths[k],
			Token:   cfg.catalogToken,
			Timeout: cfg.catalogTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("datadesk: %w", err)
		}
		healthSvc.WithChecker("catalog_"+string(k), client)

		svc := searchuc.New(kind, client, snaps, hist)
		if predictor != nil {
			svc.WithPredictor(predictor)
		}
		c.search[k] = svc

		if kind == record.KindApplication {
			c.summary = aggregateuc.New(client, snaps).WithMaxRecords(cfg.maxRecords)
		}
	}
	return c, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.done(&call{name: "ping"}, start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Records returns the record service of one kind. Operations on a kind the
// client does not serve fail with ErrInvalidRequest.
func (c *Client) Records(kind Kind) *RecordService {
	return &RecordService{kind: kind, svc: c.search[kind], obs: c.obs}
}

// History returns the recent search terms, most recent first.
// The history is shared by every record kind.
func (c *Client) History(ctx context.Context) []string {
	svc := c.anySearch()
	if svc == nil {
		return []string{}
	}
	return svc.History(ctx)
}

// ClearHistory forgets every recent search term.
func (c *Client) ClearHistory(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.done(&call{name: "clear_history"}, start, err) }()

	svc := c.anySearch()
	if svc == nil {
		return nil
	}
	if err = svc.ClearHistory(ctx); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func (c *Client) anySearch() searchUseCase {
	for _, k := range []Kind{KindAsset, KindApplication, KindTimeline} {
		if svc, ok := c.search[k]; ok {
			return svc
		}
	}
	return nil
}
