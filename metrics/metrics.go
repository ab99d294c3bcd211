// Package metrics 暴露推荐链路的 Prometheus 指标：缓存命中率、召回耗时、降级次数。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shoprec_cache_hits_total",
			Help: "Total number of recommendation cache hits",
		},
		[]string{"kind"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shoprec_cache_misses_total",
			Help: "Total number of recommendation cache misses",
		},
		[]string{"kind"},
	)

	// CacheErrors 统计后端错误（已降级为 miss），op: get / set / delete
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shoprec_cache_errors_total",
			Help: "Total number of cache backend errors degraded to a miss",
		},
		[]string{"op"},
	)

	CacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shoprec_cache_invalidations_total",
			Help: "Total number of cache entries invalidated",
		},
		[]string{"kind"},
	)

	RankerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shoprec_ranker_duration_seconds",
			Help:    "Duration of ranker computations on cache miss",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"ranker"},
	)

	// RankerDegraded 统计超时等原因导致的空结果
	RankerDegraded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shoprec_ranker_degraded_total",
			Help: "Total number of ranker calls that returned an empty result because of a timeout",
		},
		[]string{"ranker", "reason"},
	)

	RecommendationSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shoprec_recommendation_size",
			Help:    "Number of products returned per recommendation request",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
		[]string{"kind"},
	)
)

// ObserveRanker 记录一次召回耗时。
func ObserveRanker(ranker string, start time.Time) {
	RankerDuration.WithLabelValues(ranker).Observe(time.Since(start).Seconds())
}
