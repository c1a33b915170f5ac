// Package store keeps server-side session state for `vibe serve`.
//
// A Store is a small key/value interface with per-key expiry. Three
// backends implement it: an in-process map, a SQLite file and Redis.
// Sessions and pending OAuth logins are encoded on top of it.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tessro/vibe/internal/config"
	"github.com/tessro/vibe/internal/metrics"
)

// Backend names accepted by server.session_backend.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// ErrNotFound is returned by Get when a key is missing or has expired.
var ErrNotFound = errors.New("store: key not found")

// Store is a key/value store with per-key TTL.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put stores value under key. A ttl of zero never expires.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend.
	Close() error
}

// New opens the backend selected by cfg.SessionBackend.
func New(cfg config.ServerConfig, logger zerolog.Logger) (Store, error) {
	switch cfg.SessionBackend {
	case "", BackendMemory:
		return NewMemory(time.Minute), nil
	case BackendSQLite:
		return OpenSQLite(cfg.SQLitePath, DefaultSQLiteConfig())
	case BackendRedis:
		return NewRedis(RedisConfig{Addr: cfg.RedisAddr, DB: cfg.RedisDB}, logger)
	default:
		return nil, fmt.Errorf("store: unknown backend %q", cfg.SessionBackend)
	}
}

// observe records the outcome of one store call.
func observe(backend, op string, err error) {
	outcome := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		outcome = "miss"
	case err != nil:
		outcome = "error"
	case op == "get":
		outcome = "hit"
	}
	metrics.IncStoreOp(backend, op, outcome)
}
