package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// fetchTotal's "miss" series doubles as the cache-miss counter used to
// assert single-writer behavior under concurrent Get calls.
var (
	fetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geniecache",
			Name:      "fetch_total",
			Help:      "Total Engine.Get outcomes by result.",
		},
		[]string{"result"}, // hit | miss
	)

	downloadTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geniecache",
			Name:      "download_total",
			Help:      "Total Fetcher.Open invocations by result.",
		},
		[]string{"result"}, // success | failed
	)

	lockWaitSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "geniecache",
			Name:      "lock_wait_seconds",
			Help:      "Time spent blocked acquiring a version's ScopedLock.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	evictionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geniecache",
			Name:      "eviction_total",
			Help:      "Total version evictions by result.",
		},
		[]string{"result"}, // success | failed
	)

	cleanupQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "geniecache",
			Name:      "cleanup_queue_depth",
			Help:      "Number of cleanup tasks currently queued or running.",
		},
	)
)
