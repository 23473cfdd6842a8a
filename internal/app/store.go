package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/pokecatalog/internal/adapter/badgerstore"
	"github.com/heartmarshall/pokecatalog/internal/adapter/postgres"
	"github.com/heartmarshall/pokecatalog/internal/adapter/postgres/cachestore"
	"github.com/heartmarshall/pokecatalog/internal/adapter/sqlitestore"
	"github.com/heartmarshall/pokecatalog/internal/cache"
	"github.com/heartmarshall/pokecatalog/internal/config"
	"github.com/heartmarshall/pokecatalog/internal/transport/rest"
)

// OpenStore opens the cache backend selected by cfg.Cache.Driver. The map
// holds the dependencies the health endpoint should ping.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (cache.Store, map[string]rest.Pinger, error) {
	switch cfg.Cache.Driver {
	case "memory":
		return cache.NewMemStore(), nil, nil

	case "badger":
		s, err := badgerstore.Open(badgerstore.Config{
			Path:       cfg.Cache.Path,
			SyncWrites: cfg.Cache.SyncWrites,
			GCInterval: cfg.Cache.GCInterval,
			Logger:     logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil

	case "sqlite":
		s, err := sqlitestore.Open(ctx, cfg.Cache.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil

	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return cachestore.New(pool), map[string]rest.Pinger{"database": pool}, nil
	}

	return nil, nil, fmt.Errorf("unknown cache driver %q", cfg.Cache.Driver)
}
