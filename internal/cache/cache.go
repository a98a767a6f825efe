// Package cache holds the page cache that sits in front of the global feed.
//
// Entries move absent -> fresh on the first compute, fresh -> stale when
// their TTL elapses, stale -> fresh on the next GetOrCompute, and any state
// -> absent on Invalidate. Writes to posts or follows never touch the cache:
// a filled page stays as it was until it expires or is invalidated.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/yatube/config"
)

// Loader computes the bytes for a key that is absent or stale.
type Loader func(ctx context.Context) ([]byte, error)

// PageCache caches rendered pages for a bounded time.
type PageCache interface {
	// GetOrCompute returns the stored bytes while they are fresh. Otherwise it
	// calls compute and stores the result; a compute error is returned as is
	// and nothing is stored.
	GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute Loader) ([]byte, error)
	Invalidate(ctx context.Context, key string) error
	InvalidateAll(ctx context.Context) error
	Close() error
}

// EntryState 缓存项状态
type EntryState int

const (
	Absent EntryState = iota
	Fresh
	Stale
)

func (s EntryState) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	default:
		return "absent"
	}
}

// Counters summarises cache traffic since start or the last reset.
type Counters struct {
	Hits          int64
	Misses        int64
	ComputeErrors int64
}

// New builds the backend named by cfg.Driver.
func New(ctx context.Context, cfg config.CacheConfig, rcfg config.RedisConfig) (PageCache, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemory(), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     rcfg.Addr,
			Password: rcfg.Password,
			DB:       rcfg.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect redis %s: %w", rcfg.Addr, err)
		}
		return NewRedis(client, cfg.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unsupported cache driver %q", cfg.Driver)
	}
}
