package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pageCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "page_cache_requests_total",
			Help: "Page cache lookups by backend and result (hit, miss)",
		},
		[]string{"backend", "result"},
	)

	pageCacheComputeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "page_cache_compute_errors_total",
			Help: "Page computations that failed and were not cached",
		},
		[]string{"backend"},
	)

	pageCacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "page_cache_evictions_total",
			Help: "Entries removed by invalidation or sweeping",
		},
		[]string{"backend", "reason"},
	)
)
