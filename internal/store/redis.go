package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string // host:port
	Password string // optional
	DB       int
	Prefix   string // key namespace, defaults to "vibe:"
}

// Redis is a Store backed by a Redis server.
type Redis struct {
	client *redis.Client
	prefix string
	logger zerolog.Logger
}

// NewRedis connects to Redis and verifies the connection with a PING.
func NewRedis(cfg RedisConfig, logger zerolog.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Info().
		Str("addr", cfg.Addr).
		Int("db", cfg.DB).
		Msg("connected to Redis session store")

	return newRedis(client, cfg.Prefix, logger), nil
}

func newRedis(client *redis.Client, prefix string, logger zerolog.Logger) *Redis {
	if prefix == "" {
		prefix = "vibe:"
	}
	return &Redis{client: client, prefix: prefix, logger: logger}
}

// Get implements Store.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		err = ErrNotFound
	} else if err != nil {
		r.logger.Debug().Err(err).Str("key", key).Msg("redis get failed")
		err = fmt.Errorf("redis: get %q: %w", key, err)
	}
	observe(BackendRedis, "get", err)
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Put implements Store. The TTL is applied with SET ... EX.
func (r *Redis) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.client.Set(ctx, r.prefix+key, value, ttl).Err()
	if err != nil {
		r.logger.Debug().Err(err).Str("key", key).Msg("redis set failed")
		err = fmt.Errorf("redis: put %q: %w", key, err)
	}
	observe(BackendRedis, "put", err)
	return err
}

// Delete implements Store.
func (r *Redis) Delete(ctx context.Context, key string) error {
	err := r.client.Del(ctx, r.prefix+key).Err()
	if err != nil {
		err = fmt.Errorf("redis: delete %q: %w", key, err)
	}
	observe(BackendRedis, "delete", err)
	return err
}

// Close implements Store.
func (r *Redis) Close() error {
	return r.client.Close()
}
