package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/entlink/internal/config"
	dbRedis "github.com/kailas-cloud/entlink/internal/db/redis"
	"github.com/kailas-cloud/entlink/internal/domain"
	"github.com/kailas-cloud/entlink/internal/domain/graph"
	logpkg "github.com/kailas-cloud/entlink/internal/logger"
	"github.com/kailas-cloud/entlink/internal/metrics"
	"github.com/kailas-cloud/entlink/internal/repository/kbcache"
	"github.com/kailas-cloud/entlink/internal/repository/knowledgebase"
	"github.com/kailas-cloud/entlink/internal/repository/termindex"
	chiTransport "github.com/kailas-cloud/entlink/internal/transport/chi"
	batchuc "github.com/kailas-cloud/entlink/internal/usecase/batch"
	evaluateuc "github.com/kailas-cloud/entlink/internal/usecase/evaluate"
	healthuc "github.com/kailas-cloud/entlink/internal/usecase/health"
	"github.com/kailas-cloud/entlink/internal/usecase/pipeline"
	"github.com/kailas-cloud/entlink/internal/usecase/rating"
	"github.com/kailas-cloud/entlink/internal/usecase/stages"
	"github.com/kailas-cloud/entlink/internal/version"
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

	logger.Info("Starting entlink API server", append(version.Fields(),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.Strings("stages", cfg.Pipeline.Stages),
	)...)

	// valkey and redis share the RESP3 client.
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:      cfg.Database.Addrs,
		Password:   cfg.Database.Password,
		Standalone: cfg.Database.Standalone,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Repositories
	kbRepo := knowledgebase.New(store).WithKeyPrefix(cfg.Storage.KeyPrefix)
	termIndex := termindex.New(store).WithKeyPrefix(cfg.Storage.KeyPrefix)

	if cfg.Storage.SeedFile != "" {
		n, err := kbRepo.LoadSeedFile(ctx, cfg.Storage.SeedFile)
		if err != nil {
			logger.Fatal("Failed to load knowledge base seed", zap.String("path", cfg.Storage.SeedFile), zap.Error(err))
		}
		logger.Info("Knowledge base seeded", zap.Int("resources", n))
	}

	// Metrics registered explicitly (no init())
	pipelineMetrics, err := metrics.NewPipeline(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal("Failed to register pipeline metrics", zap.Error(err))
	}

	httpMetrics, err := metrics.NewHTTP(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal("Failed to register HTTP metrics", zap.Error(err))
	}

	var cache *kbcache.CachedKnowledgeBase
	var kb domain.KnowledgeBase = kbRepo
	if !cfg.Cache.Disabled {
		cacheTotal, err := metrics.NewKnowledgeBaseCache(prometheus.DefaultRegisterer)
		if err != nil {
			logger.Fatal("Failed to register cache metrics", zap.Error(err))
		}
		cache = kbcache.New(kbRepo, cfg.Cache.MaxEntries, cacheTotal, logger)
		kb = cache
	}

	// Stages
	built, err := stages.Build(ctx, stages.Spec{
		Names:    cfg.Pipeline.Stages,
		Resolver: cfg.Pipeline.Resolver,
		Rating:   cfg.Pipeline.Rating,
		HITS: graph.HITSOptions{
			MaxIterations: cfg.Pipeline.HITS.MaxIterations,
			Tolerance:     cfg.Pipeline.HITS.Tolerance,
		},
	}, stages.Deps{
		Index:   rating.IndexOpenerFunc(openTermIndex(termIndex)),
		Metrics: pipelineMetrics,
		Logger:  logger,
	})
	if err != nil {
		logger.Fatal("Failed to build pipeline stages", zap.Error(err))
	}
	defer func() {
		if err := built.Close(); err != nil {
			logger.Warn("Failed to release stage resources", zap.Error(err))
		}
	}()

	p := pipeline.New(kb, pipeline.Observers{
		pipeline.NewLogObserver(logger),
		pipeline.NewMetricsObserver(pipelineMetrics),
	})
	if err := p.Configure(built.Stages...); err != nil {
		logger.Fatal("Failed to configure pipeline", zap.Error(err))
	}
	logger.Info("Pipeline configured", zap.Strings("stages", p.Names()))

	// Use case services
	batchSvc := batchuc.New(p, termIndex).
		WithMaxBatchSize(cfg.Batch.MaxBatchSize).
		WithWorkers(cfg.Batch.Workers)
	evaluator := evaluateuc.New(p, logger)
	healthSvc := healthuc.New(store, map[string]healthuc.Checker{
		"knowledge_base": kbRepo,
		"term_index":     termIndex,
	})

	server := chiTransport.NewServer(batchSvc, evaluator, healthSvc, kbcache.NewWriteThrough(kbRepo, cache), termIndex, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(httpMetrics.Middleware())
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
			Code:    chiTransport.CodeNotFound,
			Message: "route not found",
		})
	})
	server.Register(r)

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	logger.Info("Server stopped gracefully")
}

// openTermIndex adapts the term index to the handle type the IDF rating consumes.
func openTermIndex(ix *termindex.Index) func(context.Context) (rating.TermIndex, error) {
	return func(ctx context.Context) (rating.TermIndex, error) {
		h, err := ix.Open(ctx)
		if err != nil {
			return nil, err
		}
		return h, nil
	}
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.CodeInternalError,
						Message: "internal error",
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

			ctx := logpkg.ContextWithLogger(r.Context(), logger)
			ctx, reqLogger := logpkg.WithFields(ctx, zap.String("request_id", requestID))

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
