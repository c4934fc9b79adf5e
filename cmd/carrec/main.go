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

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/taimoorKVD/car-recommendation-apis/internal/config"
	"github.com/taimoorKVD/car-recommendation-apis/internal/db"
	dbRedis "github.com/taimoorKVD/car-recommendation-apis/internal/db/redis"
	"github.com/taimoorKVD/car-recommendation-apis/internal/domain"
	logpkg "github.com/taimoorKVD/car-recommendation-apis/internal/logger"
	"github.com/taimoorKVD/car-recommendation-apis/internal/metrics"
	"github.com/taimoorKVD/car-recommendation-apis/internal/repository/embcache"
	eventrepo "github.com/taimoorKVD/car-recommendation-apis/internal/repository/event"
	rulesrepo "github.com/taimoorKVD/car-recommendation-apis/internal/repository/rules"
	sessionrepo "github.com/taimoorKVD/car-recommendation-apis/internal/repository/session"
	uservecrepo "github.com/taimoorKVD/car-recommendation-apis/internal/repository/uservector"
	vehiclerepo "github.com/taimoorKVD/car-recommendation-apis/internal/repository/vehicle"
	vocabrepo "github.com/taimoorKVD/car-recommendation-apis/internal/repository/vocab"
	chiTransport "github.com/taimoorKVD/car-recommendation-apis/internal/transport/chi"
	openaiProv "github.com/taimoorKVD/car-recommendation-apis/internal/transport/openai"
	clarifyuc "github.com/taimoorKVD/car-recommendation-apis/internal/usecase/clarify"
	eventsuc "github.com/taimoorKVD/car-recommendation-apis/internal/usecase/events"
	healthuc "github.com/taimoorKVD/car-recommendation-apis/internal/usecase/health"
	interpretuc "github.com/taimoorKVD/car-recommendation-apis/internal/usecase/interpret"
	prefvectoruc "github.com/taimoorKVD/car-recommendation-apis/internal/usecase/prefvector"
	rankuc "github.com/taimoorKVD/car-recommendation-apis/internal/usecase/rank"
	recommenduc "github.com/taimoorKVD/car-recommendation-apis/internal/usecase/recommend"
	rulesuc "github.com/taimoorKVD/car-recommendation-apis/internal/usecase/rules"
	vocabuc "github.com/taimoorKVD/car-recommendation-apis/internal/usecase/vocab"
	"github.com/taimoorKVD/car-recommendation-apis/internal/version"
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

	logger.Info("Starting car recommendation API server",
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

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register provider metrics explicitly (no init())
	metrics.RegisterProviderMetrics()

	// Build embedder chain — composition root
	embedder := buildEmbedder(cfg.Embedding, store, logger)
	logger.Info("Embedder created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	parser := openaiProv.NewParser(&openaiProv.ParserConfig{
		APIKey:  cfg.Parser.APIKey,
		BaseURL: cfg.Parser.BaseURL,
		Model:   cfg.Parser.Model,
		Logger:  logger,
	})

	// Create repositories (domain-native, no adapters)
	vehicleRepo := vehiclerepo.New(store, cfg.Embedding.Dimensions)
	userVecRepo := uservecrepo.New(store)
	sessionRepo := sessionrepo.New(store).
		WithTTL(time.Duration(cfg.Recommend.SessionTTLSec) * time.Second)
	rulesRepo := rulesrepo.New(store)
	vocabRepo := vocabrepo.New(store)
	eventRepo := eventrepo.New(store)

	// Create use case services
	vocabSvc := vocabuc.New(vocabRepo, time.Duration(cfg.Recommend.VocabRefreshMs)*time.Millisecond)
	rulesSvc := rulesuc.New(rulesRepo, time.Duration(cfg.Recommend.VocabRefreshMs)*time.Millisecond, logger)
	interpretSvc := interpretuc.New(parser, vocabSvc, rulesSvc, logger)
	clarifySvc := clarifyuc.New(sessionRepo, vocabSvc)
	prefSvc := prefvectoruc.New(userVecRepo, eventRepo, embedder, cfg.Recommend.PrefDecay, logger)
	rankSvc := rankuc.New(vehicleRepo, cfg.Recommend.PoolSize, cfg.Recommend.ResultLimit, logger)
	recommendSvc := recommenduc.New(
		interpretSvc, clarifySvc, rankSvc, embedder,
		userVecRepo, vocabSvc, eventRepo, prefSvc, logger,
	)
	eventsSvc := eventsuc.New(eventRepo, vehicleRepo, prefSvc, logger)

	// Health service
	healthSvc := healthuc.New(store, map[string]healthuc.ProviderChecker{
		"embedding": newProviderHealthChecker(embedder),
		"parser":    parser,
	})

	// Create chi server
	server := chiTransport.NewServer(recommendSvc, eventsSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.RegisterRoutes(r)

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

// providerHealthChecker probes an embedder that may optionally expose a
// health check.
type providerHealthChecker struct {
	embedder domain.Embedder
}

func newProviderHealthChecker(embedder domain.Embedder) *providerHealthChecker {
	return &providerHealthChecker{embedder: embedder}
}

func (h *providerHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached
func buildEmbedder(cfg config.EmbeddingConfig, store db.Store, logger *zap.Logger) domain.Embedder {
	base := openaiProv.NewEmbedder(&openaiProv.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Provider:   "openai",
		Logger:     logger,
	})

	var embedder domain.Embedder = base
	if store != nil {
		embedder = embcache.New(base, store, metrics.EmbeddingCacheTotal, logger)
	}

	return embedder
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

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
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
