package app

import (
	"context"
	"fmt"

	"github.com/odyssey-erp/tripbook/internal/platform/cache"
	"github.com/odyssey-erp/tripbook/internal/storage"
	"github.com/odyssey-erp/tripbook/internal/storage/redisstore"
	"github.com/odyssey-erp/tripbook/internal/storage/sqlitestore"
)

// OpenStore connects the storage driver selected by cfg.
func OpenStore(ctx context.Context, cfg *Config) (storage.Store, error) {
	switch cfg.StorageDriver {
	case DriverMemory:
		return storage.NewMemory(), nil
	case DriverSQLite, "":
		store, err := sqlitestore.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	case DriverRedis:
		client, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		return redisstore.New(client, cfg.RedisPrefix), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
