package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := NewRedis(client, "pagecache:")
	t.Cleanup(func() { _ = r.Close() })
	return r, mr
}

func TestRedis_HitThenExpire(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)
	var calls atomic.Int64

	v, err := r.GetOrCompute(ctx, "index_page", 20*time.Second, countingLoader(&calls, "v1"))
	require.NoError(t, err)
	assert.Equal(t, "v1", string(v))
	assert.True(t, mr.Exists("pagecache:index_page"))

	v, err = r.GetOrCompute(ctx, "index_page", 20*time.Second, countingLoader(&calls, "v2"))
	require.NoError(t, err)
	assert.Equal(t, "v1", string(v))
	assert.EqualValues(t, 1, calls.Load())

	mr.FastForward(21 * time.Second)

	v, err = r.GetOrCompute(ctx, "index_page", 20*time.Second, countingLoader(&calls, "v2"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(v))
	assert.EqualValues(t, 2, calls.Load())

	c := r.Counters()
	assert.EqualValues(t, 1, c.Hits)
	assert.EqualValues(t, 2, c.Misses)
}

func TestRedis_ComputeErrorNotCached(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)
	boom := errors.New("boom")

	_, err := r.GetOrCompute(ctx, "k", time.Minute, func(context.Context) ([]byte, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("pagecache:k"))
}

func TestRedis_InvalidateAllKeepsForeignKeys(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)
	var calls atomic.Int64

	require.NoError(t, mr.Set("session:1", "x"))
	_, _ = r.GetOrCompute(ctx, "a", time.Minute, countingLoader(&calls, "a"))
	_, _ = r.GetOrCompute(ctx, "b", time.Minute, countingLoader(&calls, "b"))

	require.NoError(t, r.Invalidate(ctx, "a"))
	assert.False(t, mr.Exists("pagecache:a"))
	assert.True(t, mr.Exists("pagecache:b"))

	require.NoError(t, r.InvalidateAll(ctx))
	assert.False(t, mr.Exists("pagecache:b"))
	assert.True(t, mr.Exists("session:1"))
}

func TestRedis_ReadFailureFallsBackToCompute(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)
	mr.Close()

	var calls atomic.Int64
	v, err := r.GetOrCompute(ctx, "k", time.Minute, countingLoader(&calls, "v"))
	require.NoError(t, err)
	assert.Equal(t, "v", string(v))
	assert.EqualValues(t, 1, calls.Load())
}
