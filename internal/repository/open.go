package repository

import (
	"context"
	"fmt"

	"github.com/portfolio-content-api/internal/config"
	"github.com/portfolio-content-api/internal/database"
	"github.com/rs/zerolog"
)

// OpenCache connects the draft cache backend named by cfg.Cache.Backend.
// The postgres backend is migrated to the latest schema first. The returned
// func releases the backend's connections.
func OpenCache(ctx context.Context, cfg *config.Config, log zerolog.Logger) (DraftCache, func() error, error) {
	switch cfg.Cache.Backend {
	case "postgres":
		db, err := database.New(&cfg.Database, log)
		if err != nil {
			return nil, nil, err
		}
		if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
			db.Close()
			return nil, nil, err
		}
		return NewPostgresCache(db), db.Close, nil

	case "redis":
		client := NewRedisClient(cfg.Redis)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Redis cache connected")
		return NewRedisCache(client, cfg.Redis.KeyPrefix), client.Close, nil

	case "memory", "":
		return NewMemoryCache(), func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
}
