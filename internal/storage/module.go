// Package storage selects the order store configured by STORAGE_DRIVER.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/fx"

	"github.com/HannahHaeusler/labor/internal/config"
	"github.com/HannahHaeusler/labor/internal/domain/repository"
	"github.com/HannahHaeusler/labor/internal/storage/memory"
	"github.com/HannahHaeusler/labor/internal/storage/pebble"
	"github.com/HannahHaeusler/labor/internal/storage/postgres"
)

// Store is implemented by every backend.
type Store interface {
	Orders() repository.OrderRepository
	HealthCheck(ctx context.Context) error
	Close() error
}

// Module wires the configured store and its order repository.
var Module = fx.Options(
	fx.Provide(newStore),
	fx.Provide(func(s Store) repository.OrderRepository { return s.Orders() }),
	fx.Invoke(registerLifecycle),
)

type storeParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

func newStore(p storeParams) (Store, error) {
	return Open(p.Ctx, p.Config, p.Logger)
}

// Open builds the store selected by cfg.StorageDriver.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverPostgres:
		store, err := postgres.Open(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StorageDriverPebble:
		store, err := pebble.Open(cfg.PebbleDir, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StorageDriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func registerLifecycle(lc fx.Lifecycle, store Store, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := store.Close(); err != nil {
				logger.Error("close storage failed", slog.String("error", err.Error()))
				return err
			}
			return nil
		},
	})
}
