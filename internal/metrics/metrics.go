package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors are registered on the default registry; the server exposes
// them on /metrics via promhttp.

var (
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aircatalog_cache_hits_total",
		Help: "Cache hits per logical namespace.",
	}, []string{"namespace"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aircatalog_cache_misses_total",
		Help: "Cache misses per logical namespace.",
	}, []string{"namespace"})

	SourceAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aircatalog_source_attempts_total",
		Help: "Upstream source attempts by source and outcome (hit=yielded records, empty, error).",
	}, []string{"source", "outcome"})

	RecordsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aircatalog_records_rejected_total",
		Help: "Raw records rejected during validation, by reason.",
	}, []string{"reason"})

	EnrichmentFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aircatalog_enrichment_fallbacks_total",
		Help: "City descriptions that fell back to the default text.",
	})
)
