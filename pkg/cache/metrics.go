package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Store layers used as metric labels.
const (
	layerMemory = "memory"
	layerRedis  = "redis"
)

var (
	// CacheHits tracks cache hits by layer
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voucher_cache_hits_total",
			Help: "Total number of redemption cache hits",
		},
		[]string{"layer"}, // "memory", "redis"
	)

	// CacheMisses tracks cache misses, expired entries included
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voucher_cache_misses_total",
			Help: "Total number of redemption cache misses",
		},
		[]string{"layer"},
	)

	// CacheEntries tracks entries held by in-process stores
	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "voucher_cache_entries",
			Help: "Current number of entries held in the redemption cache",
		},
		[]string{"layer"},
	)

	// CacheEvictions tracks expired entries removed by a sweep
	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voucher_cache_evictions_total",
			Help: "Total number of expired entries removed from the redemption cache",
		},
		[]string{"layer"},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voucher_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
