package main

import (
	"context"
	"fmt"
	"time"

	"oyna-console/internal/cache"
	"oyna-console/internal/config"
	"oyna-console/internal/handler"
	"oyna-console/internal/logging"
	"oyna-console/internal/repository"
	"oyna-console/internal/service"
	"oyna-console/internal/storage"
)

// backend is the selected per-browser state store with its upkeep hooks.
type backend struct {
	store   storage.Storage
	expirer service.Expirer // nil when the store expires entries itself
	check   handler.Check
	close   func() error
}

// openBackend initializes the storage backend named by cfg.Storage.Type.
func openBackend(ctx context.Context, cfg *config.Config, log logging.Logger) (*backend, error) {
	switch cfg.Storage.Type {
	case "redis":
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:      cfg.Cache.RedisAddress(),
			Password:  cfg.Cache.RedisPassword,
			DB:        cfg.Cache.RedisDB,
			KeyPrefix: cfg.Cache.KeyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		return &backend{
			store: storage.NewCacheStore(rc, cfg.Storage.TTL),
			check: handler.Check{Name: "redis", Ping: rc.Ping},
			close: rc.Close,
		}, nil

	case "sqlite", "mysql", "postgres":
		repo, err := openRepository(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return &backend{
			store:   storage.NewRepositoryStore(repo, cfg.Storage.TTL),
			expirer: repo,
			check:   handler.Check{Name: cfg.Storage.Type, Ping: repo.Ping},
			close:   repo.Close,
		}, nil

	default:
		// the cleanup scheduler owns the sweep
		mc := cache.NewMemoryCache(cache.WithoutCleanup())
		return &backend{
			store: storage.NewCacheStore(mc, cfg.Storage.TTL),
			expirer: service.ExpirerFunc(func(context.Context, time.Time) (int64, error) {
				return int64(mc.RemoveExpired()), nil
			}),
			check: handler.Check{Name: "memory", Ping: func(context.Context) error { return nil }},
			close: mc.Close,
		}, nil
	}
}

func openRepository(ctx context.Context, cfg *config.Config, log logging.Logger) (*repository.SQLKeyValueRepository, error) {
	switch cfg.Storage.Type {
	case "mysql":
		return repository.NewMySQLKeyValueRepository(ctx, cfg.Database.DSN(), log)
	case "postgres":
		return repository.NewPostgresKeyValueRepository(ctx, cfg.Postgres.DSN(), log)
	default:
		return repository.NewSQLiteKeyValueRepository(ctx, cfg.Storage.SQLitePath, log)
	}
}
