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
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/luizgdev/rag-feedback-analyzer/internal/config"
	dbRedis "github.com/luizgdev/rag-feedback-analyzer/internal/db/redis"
	"github.com/luizgdev/rag-feedback-analyzer/internal/domain"
	logpkg "github.com/luizgdev/rag-feedback-analyzer/internal/logger"
	"github.com/luizgdev/rag-feedback-analyzer/internal/metrics"
	chunkrepo "github.com/luizgdev/rag-feedback-analyzer/internal/repository/chunk"
	"github.com/luizgdev/rag-feedback-analyzer/internal/repository/embcache"
	chiTransport "github.com/luizgdev/rag-feedback-analyzer/internal/transport/chi"
	openaiProvider "github.com/luizgdev/rag-feedback-analyzer/internal/transport/openai"
	answeruc "github.com/luizgdev/rag-feedback-analyzer/internal/usecase/answer"
	healthuc "github.com/luizgdev/rag-feedback-analyzer/internal/usecase/health"
	retrieveuc "github.com/luizgdev/rag-feedback-analyzer/internal/usecase/retrieve"
	"github.com/luizgdev/rag-feedback-analyzer/internal/version"
)

func main() {
	// Load .env if present (local development); real environments set vars directly.
	_ = godotenv.Load()

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

	logger.Info("Starting feedbackd API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
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

	// Register metrics explicitly (no init())
	metrics.RegisterProviderMetrics()
	metrics.RegisterHTTPMetrics()

	// Embedder chain: OpenAI provider wrapped by the Redis embedding cache.
	baseEmbedder := openaiProvider.NewEmbedder(&openaiProvider.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		Logger:     logger,
	})
	embedder := embcache.New(
		baseEmbedder, store,
		cfg.Storage.KeyPrefix, cfg.Embedding.Model,
		metrics.EmbeddingCacheTotal, logger,
	)
	logger.Info("Embedder created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	generator := openaiProvider.NewGenerator(&openaiProvider.GeneratorConfig{
		APIKey:      cfg.Generation.APIKey,
		BaseURL:     cfg.Generation.BaseURL,
		Model:       cfg.Generation.Model,
		Temperature: cfg.Generation.Temperature,
		MaxTokens:   cfg.Generation.MaxTokens,
		Timeout:     time.Duration(cfg.Generation.TimeoutSec) * time.Second,
		Logger:      logger,
	})

	repo := chunkrepo.New(store, cfg.Storage.KeyPrefix, cfg.Embedding.Dimensions).
		WithHNSW(cfg.Index.HNSWM, cfg.Index.HNSWEFConstruct)

	retrieveSvc := retrieveuc.New(repo, embedder, cfg.Retrieval.TopK, cfg.Retrieval.MaxTopK, logger)
	answerSvc := answeruc.New(generator, logger)
	healthSvc := healthuc.New(store, baseEmbedder, repo)

	// Verify the persisted index matches the configured embedding model.
	// A missing index is fine (queries answer with the no-evidence text);
	// a mismatched one would silently return garbage similarity scores.
	verifyIndex(ctx, retrieveSvc, cfg, logger)

	server := chiTransport.NewServer(retrieveSvc, answerSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
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

	logger.Info("Server stopped gracefully")
}

func verifyIndex(ctx context.Context, svc *retrieveuc.Service, cfg config.Config, logger *zap.Logger) {
	meta, err := svc.VerifyIndex(ctx, cfg.Embedding.Model, cfg.Embedding.Dimensions)
	switch {
	case err == nil:
		logger.Info("Index verified",
			zap.String("model", meta.Model),
			zap.Int("dimensions", meta.Dimensions),
			zap.Int("chunks", meta.Chunks),
			zap.Time("created_at", meta.CreatedAt),
		)
	case errors.Is(err, domain.ErrIndexNotReady):
		logger.Warn("Index not built yet, run feedback-ingest first")
	case errors.Is(err, domain.ErrModelMismatch), errors.Is(err, domain.ErrDimensionMismatch):
		logger.Fatal("Index was built with different embedding settings, re-ingest required",
			zap.Error(err))
	default:
		logger.Fatal("Failed to verify index", zap.Error(err))
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
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
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

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
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
