package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"matgary/backend/internal/config"
	"matgary/backend/internal/httpapi"
	"matgary/backend/internal/kv"
	"matgary/backend/internal/service"
	"matgary/backend/internal/state"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, closers := openStore(ctx, cfg, logger)

	gateway := state.NewGateway(store, logger)
	svc := service.New(ctx, gateway, cfg.DefaultAppName, logger)
	api := httpapi.New(svc, cfg.AllowedOrigin, logger)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("ledger backend listening", zap.String("addr", cfg.Address()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown error", zap.Error(err))
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logger.Warn("close error", zap.Error(err))
		}
	}

	logger.Info("server stopped")
}

// openStore picks the persistence backend: postgres when DATABASE_URL is
// set, otherwise redis when REDIS_ADDR is set, otherwise in-memory. A
// configured but unreachable backend is fatal; there is no silent fallback.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (kv.Store, []func() error) {
	closers := make([]func() error, 0, 1)

	if cfg.DatabaseURL != "" {
		pg, err := kv.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("postgres unavailable and DATABASE_URL is set; refusing in-memory fallback", zap.Error(err))
		}
		closers = append(closers, pg.Close)
		logger.Info("state backend: postgres")
		return pg, closers
	}

	if cfg.RedisAddr != "" {
		rd := kv.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rd.Ping(ctx); err != nil {
			logger.Fatal("redis unavailable and REDIS_ADDR is set; refusing in-memory fallback", zap.Error(err))
		}
		closers = append(closers, rd.Close)
		logger.Info("state backend: redis")
		return rd, closers
	}

	logger.Info("state backend: in-memory (no DATABASE_URL or REDIS_ADDR set)")
	return kv.NewMemory(), closers
}
