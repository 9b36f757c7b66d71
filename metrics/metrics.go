package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// VFSOperations metric for VFS operations (lstat, stat, readlink, readdir, open)
	VFSOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dirindex_vfs_operations_total",
			Help: "The number of VFS operations",
		},
		[]string{"vfs_name", "operation", "success"},
	)

	// Responses counts the responses produced by the directory responder
	// by outcome: listing, delegated, forbidden or not_found
	Responses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dirindex_responses_total",
			Help: "The number of directory responder responses by outcome",
		},
		[]string{"outcome"},
	)

	// ListingEntries records the number of entries rendered per directory listing
	ListingEntries = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dirindex_listing_entries",
		Help:    "The number of entries rendered in a directory listing",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	// ListingSkippedEntries counts children left out of a listing because they could not be resolved
	ListingSkippedEntries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dirindex_listing_skipped_entries_total",
		Help: "The number of directory children skipped because they could not be resolved",
	})

	// RejectedRequestsCount counts requests rejected because of their HTTP method
	RejectedRequestsCount = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dirindex_unknown_method_rejected_requests",
		Help: "The number of requests with a method that can not read a directory",
	})

	// URITooLongRejectedRequests counts requests rejected because their URI exceeds the limit
	URITooLongRejectedRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dirindex_uri_too_long_rejected_requests",
		Help: "The number of requests rejected because the request URI was too long",
	})

	// FileServingFileSize metric for file size served by the file delegate
	FileServingFileSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "dirindex_file_serving_size_bytes",
		Help: "The size in bytes for each file that has been served",
		// From 1B to 100MB in *10 increments (1 10 100 1,000 10,000 100,000 1'000,000 10'000,000 100'000,000)
		Buckets: prometheus.ExponentialBuckets(1.0, 10.0, 9),
	})

	// LimitListenerMaxConns for the max number of connections allowed on a shared listener
	LimitListenerMaxConns = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dirindex_limit_listener_max_conns",
		Help: "The maximum number of concurrent connections allowed by the limit listener",
	})

	// LimitListenerConcurrentConns for the number of concurrent connections currently open
	LimitListenerConcurrentConns = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dirindex_limit_listener_concurrent_conns",
		Help: "The number of concurrent connections currently accepted by the limit listener",
	})

	// LimitListenerWaitingConns for the number of connections waiting for a slot
	LimitListenerWaitingConns = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dirindex_limit_listener_waiting_conns",
		Help: "The number of connections waiting to be accepted by the limit listener",
	})

	// RateLimitSourceIPCacheRequests is the number of cache hits/misses
	RateLimitSourceIPCacheRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dirindex_rate_limit_source_ip_cache_requests",
		Help: "The number of source_ip cache hits/misses in the rate limiter",
	}, []string{"op", "cache"})

	// RateLimitSourceIPCachedEntries is the number of entries in the cache
	RateLimitSourceIPCachedEntries = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dirindex_rate_limit_source_ip_cached_entries",
		Help: "The number of entries in the source_ip cache of the rate limiter",
	}, []string{"op"})

	// RateLimitSourceIPBlockedCount is the number of source IPs that have been blocked by the
	// source IP rate limiter
	RateLimitSourceIPBlockedCount = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dirindex_rate_limit_source_ip_blocked_count",
		Help: "The number of source IP addresses that have been blocked by the rate limiter",
	}, []string{"enforced"})
)

func init() {
	prometheus.MustRegister(
		VFSOperations,
		Responses,
		ListingEntries,
		ListingSkippedEntries,
		RejectedRequestsCount,
		URITooLongRejectedRequests,
		FileServingFileSize,
		LimitListenerMaxConns,
		LimitListenerConcurrentConns,
		LimitListenerWaitingConns,
		RateLimitSourceIPCacheRequests,
		RateLimitSourceIPCachedEntries,
		RateLimitSourceIPBlockedCount,
	)
}
