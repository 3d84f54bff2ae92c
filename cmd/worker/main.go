// Package main is the entry point for the stockbook maintenance worker.
// It periodically purges expired refresh tokens and idempotency keys so
// neither table grows without bound. The worker is optional: a deployment
// that runs it keeps the API server free of housekeeping load.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"stockbook/internal/infrastructure/storage/postgres"
	"stockbook/internal/infrastructure/storage/postgres/auth_repo"
	"stockbook/pkg/config"
	"stockbook/pkg/logger"
)

const cleanupInterval = 1 * time.Hour

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.App.Env == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(logger.WithLogger(context.Background(), log))
	defer cancel()

	log.Infow("starting stockbook worker", "version", cfg.App.Version)

	poolCfg := postgres.DefaultPoolConfig(cfg.DB.ConnectionString())
	// Housekeeping runs one statement at a time.
	poolCfg.MaxConns = 2
	poolCfg.MinConns = 1

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)

	worker := NewMaintenanceWorker(
		auth_repo.NewTokenRepo(txManager),
		postgres.NewIdempotencyStore(txManager, cfg.Idempotency.TTL),
		log,
	)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// MaintenanceWorker runs periodic database housekeeping jobs.
type MaintenanceWorker struct {
	tokens      *auth_repo.TokenRepo
	idempotency *postgres.IdempotencyStore
	log         *logger.Logger
}

func NewMaintenanceWorker(tokens *auth_repo.TokenRepo, idempotency *postgres.IdempotencyStore, log *logger.Logger) *MaintenanceWorker {
	return &MaintenanceWorker{
		tokens:      tokens,
		idempotency: idempotency,
		log:         log.WithComponent("worker"),
	}
}

// Run executes one cleanup pass immediately, then repeats on a fixed
// interval until the context is cancelled.
func (w *MaintenanceWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *MaintenanceWorker) runOnce(ctx context.Context) {
	w.cleanupTokens(ctx)
	w.cleanupIdempotency(ctx)
}

func (w *MaintenanceWorker) cleanupTokens(ctx context.Context) {
	n, err := w.tokens.CleanupExpiredTokens(ctx)
	if err != nil {
		w.log.Warnw("refresh token cleanup failed", "error", err)
		return
	}
	if n > 0 {
		w.log.Infow("expired refresh tokens purged", "count", n)
	}
}

func (w *MaintenanceWorker) cleanupIdempotency(ctx context.Context) {
	n, err := w.idempotency.CleanupExpired(ctx)
	if err != nil {
		w.log.Warnw("idempotency key cleanup failed", "error", err)
		return
	}
	if n > 0 {
		w.log.Infow("expired idempotency keys purged", "count", n)
	}
}
