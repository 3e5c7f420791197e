// cmd/server/main.go

// 本服務提供帳戶建立、查詢、餘額調整、轉帳與刪除的 HTTP API。
// 此檔案負責載入設定、初始化模組（logging, storage, bank, worker, server），
// 並啟動 HTTP 伺服器；收到 SIGINT/SIGTERM 時優雅關閉並釋放儲存後端。

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"moneytransfer/internal/bank"
	"moneytransfer/internal/config"
	"moneytransfer/internal/logging"
	"moneytransfer/internal/server"
	"moneytransfer/internal/storage"
	"moneytransfer/internal/worker"
)

func main() {
	path := "config.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	if err := run(path); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(path string) error {
	cfg, err := config.Load(path)
	if errors.Is(err, config.ErrFileNotFound) {
		cfg = config.Default()
	} else if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{
		Environment: logging.Environment(cfg.Logging.Environment),
		Level:       cfg.Logging.Level,
	})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("close store", zap.Error(err))
		}
	}()

	engine := bank.NewEngine(store, bank.WithLogger(logger))
	pool := worker.New(cfg.HTTPServer.Workers)
	s := server.NewServer(engine, pool, logger)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      s.Router(),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("money transfer server running",
			zap.String("address", srv.Addr),
			zap.String("store", cfg.Store.Backend),
			zap.Int("workers", pool.Size()),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore 依設定建立儲存後端，必要時套上熔斷器。
func openStore(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (storage.Backend, error) {
	var (
		backend storage.Backend
		err     error
	)
	switch cfg.Backend {
	case config.BackendSnapshot:
		backend, err = storage.OpenSnapshotStore(cfg.Path)
	case config.BackendRedis:
		backend, err = storage.NewRedisStore(ctx, storage.RedisOptions{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	default:
		backend = storage.NewMemoryStore()
	}
	if err != nil {
		return nil, err
	}

	if cfg.Breaker.Enabled {
		backend = storage.NewBreakerStore(backend, storage.BreakerConfig{
			Name:                cfg.Backend,
			ConsecutiveFailures: cfg.Breaker.ConsecutiveFailures,
			Timeout:             cfg.Breaker.Timeout,
		}, logger)
	}
	return backend, nil
}
