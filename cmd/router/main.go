package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/agenticlabs/smartrouter/internal/auth"
	"github.com/agenticlabs/smartrouter/internal/classifier"
	"github.com/agenticlabs/smartrouter/internal/config"
	"github.com/agenticlabs/smartrouter/internal/cost"
	"github.com/agenticlabs/smartrouter/internal/gateway"
	"github.com/agenticlabs/smartrouter/internal/pipeline"
	"github.com/agenticlabs/smartrouter/internal/policy"
	"github.com/agenticlabs/smartrouter/internal/ratelimit"
	"github.com/agenticlabs/smartrouter/internal/risk"
	"github.com/agenticlabs/smartrouter/internal/router"
	"github.com/agenticlabs/smartrouter/internal/routing"
	"github.com/agenticlabs/smartrouter/internal/store"
	"github.com/agenticlabs/smartrouter/internal/telemetry"
	"github.com/agenticlabs/smartrouter/internal/types"
)

var version = "dev"

func main() {
	configDir := flag.String("config", "configs", "path to configuration directory")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	loader := config.NewLoader(*configDir, logger)
	if err := loader.Load(); err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	cfg := loader.Config()

	// Connect to PostgreSQL
	dbPool, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(context.Background()); err != nil {
		logger.Warn("database not reachable (router will start but auth and persistence will fail)", "error", err)
	} else {
		logger.Info("database connected")
	}

	// Connect to Redis
	var rdb *redis.Client
	if len(cfg.Redis.Addresses) > 0 && cfg.Redis.Addresses[0] != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addresses[0],
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis not reachable (auth cache and rate limits disabled)", "error", err)
			rdb = nil
		} else {
			logger.Info("redis connected")
		}
	}

	// Provider adapters and health tracking. The reload callback must be
	// registered before the watcher goroutine starts.
	adapterRegistry := router.BuildFromConfig(loader.Providers())
	loader.OnReload(func() {
		adapterRegistry.ReplaceAll(router.BuildAdapters(loader.Providers()))
		logger.Info("provider adapters reloaded")
	})

	if err := loader.Watch(); err != nil {
		logger.Warn("failed to start config watcher", "error", err)
	}

	health := router.NewHealthTracker(
		cfg.Routing.CircuitBreaker.FailureThreshold,
		cfg.Routing.CircuitBreaker.RecoveryProbeInterval,
	)
	dispatcher := router.NewDispatcher(adapterRegistry, health)

	// Decision core
	modelsCfg := loader.Models()
	modelRegistry := routing.NewRegistry(modelsCfg)
	selector := routing.NewSelector(modelRegistry, modelsCfg.Routes, types.ParseRouterMode(cfg.Routing.Mode)).
		WithHealth(health.IsAvailable)
	engine := cost.NewEngine(modelRegistry, modelsCfg)
	scorer := risk.NewScorer(modelsCfg.Risk)
	pipe := pipeline.New(modelRegistry, selector, engine, scorer, cfg.Routing.EfficiencyTolerance)

	// Optional external services
	cls := classifier.NewClient(func() config.ClassifierConfig { return loader.Config().Classifier })
	if cfg.Classifier.Enabled {
		if err := cls.Connect(); err != nil {
			logger.Warn("classifier unavailable, falling back to heuristics", "error", err)
		}
		defer cls.Close()
	}

	policyEval := policy.NewEvaluator(func() config.PolicyConfig { return loader.Config().Policy })
	if cfg.Policy.Enabled {
		if err := policyEval.Load(); err != nil {
			logger.Error("failed to load policy bundle", "error", err)
			os.Exit(1)
		}
	}

	// Tenancy, limits, persistence, metrics
	tenantStore := auth.NewCachedTenantStore(dbPool, rdb, logger)
	limiter := ratelimit.NewLimiter(rdb)
	budget := ratelimit.NewBudgetTracker(rdb)
	runStore := store.NewRunStore(dbPool)
	metrics := telemetry.NewMetrics()

	handler := gateway.NewHandler(
		pipe, dispatcher, modelRegistry, engine,
		cls, policyEval, runStore, budget, metrics,
		func() *config.Config { return loader.Config() },
	)

	// Router setup
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)

	// Unauthenticated routes
	r.Get("/v1/health", healthHandler)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(tenantStore, logger))
		r.Use(ratelimit.Middleware(limiter, budget, metrics))
		r.Post("/v1/run", handler.Run)
		r.Get("/v1/models", handler.ListModels)
		r.Get("/v1/runs", handler.ListRuns)
		r.Get("/v1/metrics/overview", handler.MetricsOverview)
		r.Get("/v1/metrics/savings", handler.MetricsSavings)
	})

	// Prometheus scrape endpoint on its own port
	if cfg.Telemetry.MetricsPort > 0 {
		go func() {
			metricsAddr := fmt.Sprintf(":%d", cfg.Telemetry.MetricsPort)
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			logger.Info("metrics server starting", "addr", metricsAddr)
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("router starting", "addr", addr, "version", version, "mode", cfg.Routing.Mode)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("router stopped")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"version": version,
	})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = generateRequestID()
		}
		w.Header().Set("X-Request-ID", reqID)
		ctx := context.WithValue(r.Context(), requestIDKey, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type contextKey string

const requestIDKey contextKey = "request_id"

func generateRequestID() string {
	now := time.Now()
	b := make([]byte, 8)
	rand.Read(b)
	return fmt.Sprintf("req_%d_%s", now.UnixMilli(), hex.EncodeToString(b))
}
