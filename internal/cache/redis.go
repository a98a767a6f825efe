package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/yatube/pkg/logger"
)

// Redis stores pages in Redis with a native TTL, so a stale entry is simply
// a missing key. Redis failures degrade to a recompute and are only logged.
type Redis struct {
	client *redis.Client
	prefix string

	hits          atomic.Int64
	misses        atomic.Int64
	computeErrors atomic.Int64
}

func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute Loader) ([]byte, error) {
	k := r.prefix + key
	data, err := r.client.Get(ctx, k).Bytes()
	switch {
	case err == nil:
		r.hits.Add(1)
		pageCacheRequests.WithLabelValues("redis", "hit").Inc()
		return data, nil
	case errors.Is(err, redis.Nil):
	default:
		logger.Warn("page cache read failed, recomputing", zap.String("key", k), zap.Error(err))
	}
	r.misses.Add(1)
	pageCacheRequests.WithLabelValues("redis", "miss").Inc()

	value, err := compute(ctx)
	if err != nil {
		r.computeErrors.Add(1)
		pageCacheComputeErrors.WithLabelValues("redis").Inc()
		return nil, err
	}
	if err := r.client.Set(ctx, k, value, ttl).Err(); err != nil {
		logger.Warn("page cache write failed", zap.String("key", k), zap.Error(err))
	}
	return value, nil
}

func (r *Redis) Invalidate(ctx context.Context, key string) error {
	n, err := r.client.Del(ctx, r.prefix+key).Result()
	if err != nil {
		return err
	}
	pageCacheEvictions.WithLabelValues("redis", "invalidate").Add(float64(n))
	return nil
}

// InvalidateAll deletes every key under the prefix with SCAN + DEL.
func (r *Redis) InvalidateAll(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			n, err := r.client.Del(ctx, keys...).Result()
			if err != nil {
				return err
			}
			pageCacheEvictions.WithLabelValues("redis", "invalidate").Add(float64(n))
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func (r *Redis) Counters() Counters {
	return Counters{
		Hits:          r.hits.Load(),
		Misses:        r.misses.Load(),
		ComputeErrors: r.computeErrors.Load(),
	}
}

func (r *Redis) Close() error {
	return r.client.Close()
}
