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
	"go.uber.org/zap"

	"github.com/kailas-cloud/buscadoc/internal/config"
	"github.com/kailas-cloud/buscadoc/internal/db"
	"github.com/kailas-cloud/buscadoc/internal/db/memory"
	dbRedis "github.com/kailas-cloud/buscadoc/internal/db/redis"
	"github.com/kailas-cloud/buscadoc/internal/domain/search/engine"
	"github.com/kailas-cloud/buscadoc/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/buscadoc/internal/logger"
	"github.com/kailas-cloud/buscadoc/internal/metrics"
	datasetrepo "github.com/kailas-cloud/buscadoc/internal/repository/dataset"
	historyrepo "github.com/kailas-cloud/buscadoc/internal/repository/history"
	sessionrepo "github.com/kailas-cloud/buscadoc/internal/repository/session"
	chiTransport "github.com/kailas-cloud/buscadoc/internal/transport/chi"
	analyticsuc "github.com/kailas-cloud/buscadoc/internal/usecase/analytics"
	authuc "github.com/kailas-cloud/buscadoc/internal/usecase/auth"
	datasetuc "github.com/kailas-cloud/buscadoc/internal/usecase/dataset"
	exportuc "github.com/kailas-cloud/buscadoc/internal/usecase/export"
	healthuc "github.com/kailas-cloud/buscadoc/internal/usecase/health"
	searchuc "github.com/kailas-cloud/buscadoc/internal/usecase/search"
	"github.com/kailas-cloud/buscadoc/internal/version"
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

	logger.Info("Starting buscadoc server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("data_path", cfg.Data.Path),
	)

	store, err := newStore(cfg.Database)
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

	metrics.RegisterDomainMetrics()

	// Internal dataset
	dataset := datasetrepo.New(cfg.Data.Path, cfg.Data.IdentityField, logger).
		WithPublishHook(func(n int) { metrics.DatasetRecords.Set(float64(n)) })
	if err := dataset.Load(); err != nil {
		logger.Fatal("Failed to load dataset", zap.Error(err))
	}
	if cfg.Data.Watch {
		go func() {
			if err := dataset.Watch(ctx); err != nil {
				logger.Error("Dataset watcher stopped", zap.Error(err))
			}
		}()
	}

	// Repositories
	prefix := cfg.Database.KeyPrefix
	sessions := sessionrepo.New(store, prefix, cfg.Auth.SessionTTL())
	history := historyrepo.New(store, prefix, cfg.History.MaxSearch, cfg.History.MaxUpload)

	// Use case services
	accounts := make([]authuc.Account, len(cfg.Auth.Users))
	for i, u := range cfg.Auth.Users {
		accounts[i] = authuc.Account{Username: u.Username, Name: u.Name, PasswordHash: u.PasswordHash}
	}
	authSvc := authuc.New(accounts, sessions).
		WithLoginRate(cfg.Auth.LoginRate, cfg.Auth.LoginBurst).
		WithLogger(logger)

	eng := engine.New().
		WithLogger(logger.Named("engine")).
		WithFallbackHook(metrics.AdvancedFallbackTotal.Inc)
	searchSvc := searchuc.New(dataset, sessions, history, eng).
		WithValidator(request.NewValidator(cfg.Search.MaxQueryLength, cfg.Search.ForbiddenTerms))
	datasetSvc := datasetuc.New(sessions, dataset, history).
		WithAllowedExtensions(cfg.Upload.AllowedExtensions).
		WithMaxBytes(cfg.Upload.MaxBytes)
	analyticsSvc := analyticsuc.New(searchSvc, history)
	exportSvc := exportuc.New(searchSvc)
	healthSvc := healthuc.New(store, dataset)

	server := chiTransport.NewServer(
		authSvc, searchSvc, datasetSvc, analyticsSvc, exportSvc, healthSvc,
		chiTransport.Config{
			CookieName:     cfg.Auth.CookieName,
			CookieSecure:   cfg.Auth.CookieSecure,
			SessionTTL:     cfg.Auth.SessionTTL(),
			MaxUploadBytes: cfg.Upload.MaxBytes,
		},
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
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
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func newStore(cfg config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memory.NewStore(), nil
	case config.DriverRedis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("redis store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    code,
		"message": message,
	})
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					writeJSONError(w, http.StatusInternalServerError, "internal_error", "internal error")
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
