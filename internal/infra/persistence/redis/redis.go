// Package redis implements the durable KeyValueStore capability on top
// of a Redis instance.
package redis

import (
	"context"

	"pulse/config"
	"pulse/internal/domain/repository"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

type store struct {
	client    *goredis.Client
	keyPrefix string
}

// Params holds dependencies for the Redis store, injected by Fx
type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
}

// New creates a Redis-backed key-value store and verifies connectivity
// on startup.
func New(params Params) (repository.KeyValueStore, error) {
	cfg := params.Config.Redis
	if cfg == nil {
		return nil, errors.New("redis configuration is required")
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	params.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return errors.Wrap(client.Ping(ctx).Err(), "redis ping failed")
		},
		OnStop: func(ctx context.Context) error {
			return errors.WithStack(client.Close())
		},
	})

	return &store{client: client, keyPrefix: cfg.KeyPrefix}, nil
}

// Get retrieves the payload stored under key.
func (s *store) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, repository.ErrKeyNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get key %s", key)
	}

	return value, nil
}

// Set durably writes the payload under key. Engine state has no TTL; the
// retention cleanup job bounds growth instead.
func (s *store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.keyPrefix+key, value, 0).Err(); err != nil {
		return errors.Wrapf(err, "failed to set key %s", key)
	}

	return nil
}
