package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/coastal7-sdlc/user-story-agent/core/config"
	"github.com/coastal7-sdlc/user-story-agent/core/db"
)

// Open builds the BatchStore selected by cfg.Backend and checks it is reachable.
func Open(ctx context.Context, cfg config.StoreConfig) (BatchStore, error) {
	switch cfg.Backend {
	case config.StoreBackendMongo, "":
		return OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)

	case config.StoreBackendPostgres:
		database, err := db.New(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		if err := EnsureSchema(ctx, database); err != nil {
			database.Close()
			return nil, err
		}
		return NewPostgresStore(database), nil

	case config.StoreBackendRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("pinging redis: %w", err)
		}
		return NewRedisStore(client, cfg.RedisKeyPrefix), nil

	case config.StoreBackendMemory:
		return NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Backend)
	}
}
