// Package cache keeps downloaded feed documents between runs.
package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ppiankov/kmbfeed/internal/config"
	"github.com/ppiankov/kmbfeed/internal/logging"
)

// Cache is a byte-value key store.
type Cache interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Clear removes every entry owned by this cache.
	Clear(ctx context.Context) error
	Close() error
}

// Open returns the backend selected by cfg. Disabled caching yields Nop.
func Open(ctx context.Context, cfg config.Cache) (Cache, error) {
	if !cfg.Enabled {
		return Nop{}, nil
	}
	switch cfg.Backend {
	case "", "sqlite":
		slog.Debug("opening sqlite cache", "path", cfg.Path)
		return OpenSQLite(ctx, cfg.Path, cfg.TTLDuration())
	case "redis":
		slog.Debug("opening redis cache", "redis_url", logging.Redact(cfg.RedisURL))
		return OpenRedis(ctx, cfg.RedisURL, cfg.TTLDuration())
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Nop) Set(context.Context, string, []byte) error         { return nil }
func (Nop) Delete(context.Context, string) error              { return nil }
func (Nop) Clear(context.Context) error                       { return nil }
func (Nop) Close() error                                      { return nil }
