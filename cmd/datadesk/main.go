package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/datadesk/internal/config"
	"github.com/kailas-cloud/datadesk/internal/db"
	"github.com/kailas-cloud/datadesk/internal/db/memory"
	dbRedis "github.com/kailas-cloud/datadesk/internal/db/redis"
	"github.com/kailas-cloud/datadesk/internal/domain"
	"github.com/kailas-cloud/datadesk/internal/domain/record"
	logpkg "github.com/kailas-cloud/datadesk/internal/logger"
	"github.com/kailas-cloud/datadesk/internal/metrics"
	budgetrepo "github.com/kailas-cloud/datadesk/internal/repository/budget"
	historyrepo "github.com/kailas-cloud/datadesk/internal/repository/history"
	"github.com/kailas-cloud/datadesk/internal/repository/predcache"
	snapshotrepo "github.com/kailas-cloud/datadesk/internal/repository/snapshot"
	"github.com/kailas-cloud/datadesk/internal/transport/catalogapi"
	chiTransport "github.com/kailas-cloud/datadesk/internal/transport/chi"
	openaiPred "github.com/kailas-cloud/datadesk/internal/transport/openai"
	aggregateuc "github.com/kailas-cloud/datadesk/internal/usecase/aggregate"
	"github.com/kailas-cloud/datadesk/internal/usecase/completion"
	healthuc "github.com/kailas-cloud/datadesk/internal/usecase/health"
	searchuc "github.com/kailas-cloud/datadesk/internal/usecase/search"
	usageuc "github.com/kailas-cloud/datadesk/internal/usecase/usage"
	"github.com/kailas-cloud/datadesk/internal/usecase/view"
	"github.com/kailas-cloud/datadesk/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting datadesk API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("catalog", cfg.Catalog.BaseURL),
		zap.Strings("kinds", cfg.Catalog.Kinds),
	)

	store, err := openStore(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics()
	metrics.RegisterUpstreamMetrics()
	metrics.RegisterSearchMetrics()

	budget := buildBudget(ctx, &cfg.Predictor, store, logger)
	predictor := buildPredictor(&cfg.Predictor, store, budget, logger)

	// Pass a nil interface, not a typed nil pointer, when no budget is configured.
	var budgetReader usageuc.BudgetReader
	if budget != nil {
		budgetReader = budget
	}
	usageSvc := usageuc.New(budgetReader, cfg.Predictor.Model, cfg.Predictor.Enabled())

	histRepo := historyrepo.New(store)
	snapRepo := snapshotrepo.New(store, time.Duration(cfg.Storage.SnapshotMaxAgeSec)*time.Second)

	healthSvc := healthuc.New(store)
	if predictor != nil {
		if hc, ok := predictor.(domain.HealthChecker); ok {
			healthSvc.WithChecker("predictor", hc)
		}
	}

	services := make(map[record.Kind]*searchuc.Service, len(cfg.Catalog.Kinds))
	searchers := make(map[record.Kind]view.Searcher, len(cfg.Catalog.Kinds))
	var applications *catalogapi.Client
	for _, name := range cfg.Catalog.Kinds {
		kind := record.Kind(name)
		client, err := catalogapi.New(kind, &catalogapi.Config{
			BaseURL: cfg.Catalog.BaseURL,
			Path:    cfg.Catalog.Paths[name],
			Token:   cfg.Catalog.Token,
			Timeout: time.Duration(cfg.Catalog.TimeoutSec) * time.Second,
			Logger:  logger,
		})
		if err != nil {
			logger.Fatal("Failed to create catalog client", zap.String("kind", name), zap.Error(err))
		}
		if kind == record.KindApplication {
			applications = client
		}
		healthSvc.WithChecker("catalog_"+name, client)

		svc := searchuc.New(kind, client, snapRepo, histRepo).
			WithLogger(logger.Named("search").With(zap.String("kind", name)))
		if predictor != nil {
			svc.WithPredictor(predictor)
		}
		services[kind] = svc
		searchers[kind] = svc
	}

	var aggregateSvc *aggregateuc.Service
	if applications != nil {
		aggregateSvc = aggregateuc.New(applications, snapRepo).
			WithMaxRecords(cfg.Aggregate.MaxRecords).
			WithBoundaries(cfg.Aggregate.AgeBoundaries).
			WithLogger(logger.Named("aggregate"))
	}

	registry := view.NewRegistry(searchers, view.Options{
		FetchDelay:   time.Duration(cfg.Sessions.FetchDelayMs) * time.Millisecond,
		SuggestDelay: time.Duration(cfg.Sessions.SuggestDelayMs) * time.Millisecond,
		FetchTimeout: time.Duration(cfg.Sessions.FetchTimeoutSec) * time.Second,
		Limit:        cfg.Search.DefaultLimit,
	}).
		WithLimits(time.Duration(cfg.Sessions.IdleTimeoutSec)*time.Second, cfg.Sessions.MaxSessions).
		WithClock(clock.New()).
		WithLogger(logger.Named("sessions"))
	go registry.Run(ctx)

	server := chiTransport.NewServer(services, aggregateSvc, registry, healthSvc, logger).
		WithUsage(usageSvc)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Mount(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	// Stops the session sweeper and closes open sessions.
	stop()

	logger.Info("Server stopped gracefully")
}

func openStore(cfg *config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case "redis":
		return dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
	case "memory":
		return memory.NewStore(clock.New()), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// buildBudget creates the shared token budget. Returns nil when the provider or the limits are not configured.
func buildBudget(
	ctx context.Context, cfg *config.PredictorConfig, store db.Store, logger *zap.Logger,
) *completion.BudgetTracker {
	if !cfg.Enabled() || !cfg.Budget.Limited() {
		return nil
	}
	action := completion.BudgetActionWarn
	if cfg.Budget.Action == "reject" {
		action = completion.BudgetActionReject
	}
	bt := completion.NewBudgetTracker(
		cfg.Model, cfg.Budget.DailyTokenLimit, cfg.Budget.MonthlyTokenLimit,
		action, clock.New(), logger.Named("budget"),
	)
	return bt.WithStore(ctx, budgetrepo.New(store, budgetrepo.DefaultDailyTTL, budgetrepo.DefaultMonthlyTTL))
}

// buildPredictor assembles the decorator chain: OpenAI -> Budgeted -> Clean -> Cached.
// Cache hits never reach the budget. Returns nil when no provider is configured.
func buildPredictor(
	cfg *config.PredictorConfig, store db.Store, budget *completion.BudgetTracker, logger *zap.Logger,
) domain.Predictor {
	if !cfg.Enabled() {
		logger.Info("Predictive suggestions disabled")
		return nil
	}

	base := openaiPred.NewPredictor(&openaiPred.Config{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Instruction: cfg.Instruction,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Logger:      logger,
	})

	var checker completion.BudgetChecker
	if budget != nil {
		checker = budget
	}
	budgeted := completion.NewBudgetedPredictor(
		base, cfg.Model, checker, metrics.PredictorBudgetTokensRemaining, logger.Named("predictor"),
	)

	cached := predcache.New(
		domain.NewCleanPredictor(budgeted),
		store,
		time.Duration(cfg.CacheTTLSec)*time.Second,
		metrics.PredictorCacheTotal,
		logger,
	)
	logger.Info("Predictor created",
		zap.String("model", cfg.Model),
		zap.Bool("budget", budget != nil),
	)
	return &healthyPredictor{CachedPredictor: cached, checker: budgeted}
}

// healthyPredictor exposes the provider health check through the cache decorator.
type healthyPredictor struct {
	*predcache.CachedPredictor
	checker domain.HealthChecker
}

func (p *healthyPredictor) HealthCheck(ctx context.Context) error {
	if err := p.checker.HealthCheck(ctx); err != nil {
		return fmt.Errorf("predictor health check: %w", err)
	}
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    string(chiTransport.ErrorCodeInternalError),
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line: one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
				zap.String("predictor_tokens", ww.Header().Get("X-Predictor-Tokens")),
			)
		})
	}
}
