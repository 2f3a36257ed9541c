package store

import (
	"context"
	"fmt"

	"tutorials/internal/config"

	"go.uber.org/zap"
)

// Open builds the Store selected by cfg.Backend.
func Open(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (Store, error) {
	var (
		st  Store
		err error
	)

	switch cfg.Backend {
	case config.BackendMemory:
		return NewMemoryStore(), nil
	case config.BackendBadger:
		var b *BadgerStore
		b, err = NewBadgerStore(cfg.BadgerPath, logger)
		st = b
	case config.BackendRedis:
		var r *RedisStore
		r, err = NewRedisStore(cfg.RedisAddr)
		st = r
	case config.BackendPostgres:
		var p *PostgresStore
		p, err = NewPostgresStore(ctx, cfg.PostgresURL)
		st = p
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}

	if err != nil {
		return nil, err
	}
	return st, nil
}
