package repository

import (
	"context"
	"fmt"

	"tictacgo/internal/config"
	"tictacgo/internal/db"
)

// Open builds the KVStore selected by cfg.StoreBackend.
func Open(ctx context.Context, cfg *config.Config) (KVStore, error) {
	switch cfg.StoreBackend {
	case "", "file":
		return NewFileStore(cfg.StatePath)
	case "memory":
		return NewMemoryStore(), nil
	case "redis":
		client, err := db.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client), nil
	case "postgres":
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return NewPostgresStore(pool), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.StoreBackend)
}
