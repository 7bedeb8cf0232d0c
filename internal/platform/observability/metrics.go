package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueryRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_query_requests_total",
		Help: "The total number of query service requests by slice and status",
	}, []string{"slice", "status"})

	QueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pulse_query_duration_seconds",
		Help:    "Duration of query service requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"slice"})

	FetchCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulse_fetch_cycles_total",
		Help: "The total number of dashboard fetch cycles started",
	})

	StaleResultsDiscarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_stale_results_discarded_total",
		Help: "Responses discarded because a newer fetch cycle superseded them",
	}, []string{"slice"})

	SliceFetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_slice_fetch_failures_total",
		Help: "Per-slice fetch failures recovered by substituting defaults",
	}, []string{"slice"})

	InsightCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulse_insight_cache_hits_total",
		Help: "Theme insight requests answered from the session cache",
	})

	InsightCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulse_insight_cache_misses_total",
		Help: "Theme insight requests that triggered a fetch",
	})

	ExpansionCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulse_expansion_cache_hits_total",
		Help: "Sub-theme expansions served from the session cache",
	})

	LLMRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pulse_llm_request_duration_seconds",
		Help:    "Duration of LLM requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"model"})

	InsightsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_insights_generated_total",
		Help: "Theme insights generated by the offline generator, by status",
	}, []string{"status"})
)
