package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is a process-local PageCache. Lookups never take a lock; two
// requests racing past a stale entry both compute and the last store wins.
type Memory struct {
	entries sync.Map // key -> *entry
	now     func() time.Time

	hits          atomic.Int64
	misses        atomic.Int64
	computeErrors atomic.Int64
}

// MemoryOption 配置内存缓存
type MemoryOption func(*Memory)

// WithClock replaces time.Now, for tests that step through expiry.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute Loader) ([]byte, error) {
	if v, ok := m.entries.Load(key); ok {
		e := v.(*entry)
		if m.now().Before(e.expiresAt) {
			m.hits.Add(1)
			pageCacheRequests.WithLabelValues("memory", "hit").Inc()
			return e.value, nil
		}
	}
	m.misses.Add(1)
	pageCacheRequests.WithLabelValues("memory", "miss").Inc()

	value, err := compute(ctx)
	if err != nil {
		m.computeErrors.Add(1)
		pageCacheComputeErrors.WithLabelValues("memory").Inc()
		return nil, err
	}
	m.entries.Store(key, &entry{value: value, expiresAt: m.now().Add(ttl)})
	return value, nil
}

func (m *Memory) Invalidate(_ context.Context, key string) error {
	if _, loaded := m.entries.LoadAndDelete(key); loaded {
		pageCacheEvictions.WithLabelValues("memory", "invalidate").Inc()
	}
	return nil
}

func (m *Memory) InvalidateAll(_ context.Context) error {
	m.entries.Range(func(k, _ any) bool {
		if _, loaded := m.entries.LoadAndDelete(k); loaded {
			pageCacheEvictions.WithLabelValues("memory", "invalidate").Inc()
		}
		return true
	})
	return nil
}

// State reports where key sits in the absent/fresh/stale cycle.
func (m *Memory) State(key string) EntryState {
	v, ok := m.entries.Load(key)
	if !ok {
		return Absent
	}
	if m.now().Before(v.(*entry).expiresAt) {
		return Fresh
	}
	return Stale
}

// Sweep drops stale entries and returns how many were removed. A stale entry
// replaced by a fresh one in the meantime is left alone.
func (m *Memory) Sweep() int {
	now := m.now()
	n := 0
	m.entries.Range(func(k, v any) bool {
		if !now.Before(v.(*entry).expiresAt) && m.entries.CompareAndDelete(k, v) {
			n++
		}
		return true
	})
	if n > 0 {
		pageCacheEvictions.WithLabelValues("memory", "sweep").Add(float64(n))
	}
	return n
}

func (m *Memory) Counters() Counters {
	return Counters{
		Hits:          m.hits.Load(),
		Misses:        m.misses.Load(),
		ComputeErrors: m.computeErrors.Load(),
	}
}

func (m *Memory) ResetCounters() {
	m.hits.Store(0)
	m.misses.Store(0)
	m.computeErrors.Store(0)
}

func (m *Memory) Close() error {
	return m.InvalidateAll(context.Background())
}
