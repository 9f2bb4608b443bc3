package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheEntries tracks the number of entries in the most recently written cache
	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crunchbase_cache_entries",
			Help: "Number of entries in the most recently written CrunchBase response cache (last write wins across stores)",
		},
	)

	// ConditionalRequestsSent tracks requests sent with If-None-Match or If-Modified-Since
	ConditionalRequestsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crunchbase_conditional_requests_total",
			Help: "Total number of conditional requests sent to CrunchBase",
		},
	)

	// NotModifiedResponses tracks 304 Not Modified responses served from cache
	NotModifiedResponses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crunchbase_304_responses_total",
			Help: "Total number of CrunchBase 304 Not Modified responses",
		},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crunchbase_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "snapshot_save", "snapshot_load"
	)
)
