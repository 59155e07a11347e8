package app

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bms/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/bms/internal/health"
	"github.com/vladislavdragonenkov/bms/internal/storage/memory"
	"github.com/vladislavdragonenkov/bms/internal/storage/postgres"
)

// initStorage выбирает хранилище: PostgreSQL при заданном DSN, иначе
// in-memory для локального запуска и демонстраций. Postgres-хранилище
// регистрирует readiness-проверку подключения.
func initStorage(ctx context.Context, cfg Config, logger *log.Entry, healthHandler *healthcheck.Handler) (domain.TxManager, *postgres.Store, error) {
	if cfg.DatabaseDSN == "" {
		logger.Info("DSN не задан, используется in-memory хранилище")
		return memory.NewTxManager(), nil, nil
	}

	store, err := postgres.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres store: %w", err)
	}

	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}

	healthHandler.RegisterChecker("postgres", healthcheck.NewSimpleChecker("postgres", func() error {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return store.Ping(pingCtx)
	}))

	logger.Info("подключение к PostgreSQL установлено")
	return postgres.NewTxManager(store), store, nil
}
