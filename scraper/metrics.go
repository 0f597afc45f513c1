package scraper

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Add Prometheus metrics
var (
	syncRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bfcfeed_sync_runs_total",
		Help: "The total number of sync runs, by platform and outcome",
	}, []string{"platform", "status"})

	syncContentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bfcfeed_sync_contents_total",
		Help: "The total number of content records written by sync runs",
	}, []string{"platform"})

	syncExcludedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bfcfeed_sync_excluded_total",
		Help: "The total number of raw items dropped by the exclusion filter",
	}, []string{"platform"})

	fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bfcfeed_fetch_duration_seconds",
		Help:    "Duration of platform API page fetches",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // Start at 50ms, double each bucket, 10 buckets
	}, []string{"platform"})
)
