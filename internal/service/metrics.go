package service

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors for the voting backend.
// Collectors are nil until InitMetrics runs; the Observe helpers are
// nil-safe so unit tests need no registry.
var Metrics = struct {
	VotesTotal       *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RecountDuration  prometheus.Histogram
	AuditRepairs     prometheus.Counter
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	DBPoolActive     prometheus.GaugeFunc
	DBPoolIdle       prometheus.GaugeFunc
}{}

// InitMetrics registers all Prometheus metrics. Call once at startup.
func InitMetrics(pool *pgxpool.Pool) {
	Metrics.VotesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nashidroom_votes_total",
			Help: "Total vote casts accepted by the ledger, by direction.",
		},
		[]string{"direction"},
	)

	Metrics.RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nashidroom_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by endpoint and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	Metrics.RecountDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nashidroom_net_count_recompute_duration_seconds",
			Help:    "Duration of net-count recomputations including verification.",
			Buckets: prometheus.DefBuckets,
		},
	)

	Metrics.AuditRepairs = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nashidroom_net_count_repairs_total",
			Help: "Net counts repaired by the audit sweep after drift detection.",
		},
	)

	Metrics.CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nashidroom_cache_hits_total",
			Help: "Total Redis cache hits.",
		},
	)

	Metrics.CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nashidroom_cache_misses_total",
			Help: "Total Redis cache misses.",
		},
	)

	if pool != nil {
		Metrics.DBPoolActive = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "nashidroom_db_connection_pool_active",
				Help: "Number of active database connections.",
			},
			func() float64 {
				return float64(pool.Stat().AcquiredConns())
			},
		)

		Metrics.DBPoolIdle = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "nashidroom_db_connection_pool_idle",
				Help: "Number of idle database connections.",
			},
			func() float64 {
				return float64(pool.Stat().IdleConns())
			},
		)

		prometheus.MustRegister(Metrics.DBPoolActive)
		prometheus.MustRegister(Metrics.DBPoolIdle)
	}

	prometheus.MustRegister(
		Metrics.VotesTotal,
		Metrics.RequestDuration,
		Metrics.RecountDuration,
		Metrics.AuditRepairs,
		Metrics.CacheHits,
		Metrics.CacheMisses,
	)
}

// observeVote records an accepted vote cast.
func observeVote(direction string) {
	if Metrics.VotesTotal != nil {
		Metrics.VotesTotal.WithLabelValues(direction).Inc()
	}
}

// observeRecount records a completed net-count recomputation.
func observeRecount(d time.Duration) {
	if Metrics.RecountDuration != nil {
		Metrics.RecountDuration.Observe(d.Seconds())
	}
}

// observeRepair records one audit repair.
func observeRepair() {
	if Metrics.AuditRepairs != nil {
		Metrics.AuditRepairs.Inc()
	}
}

// observeCache records a cache hit or miss.
func observeCache(hit bool) {
	if hit {
		if Metrics.CacheHits != nil {
			Metrics.CacheHits.Inc()
		}
		return
	}
	if Metrics.CacheMisses != nil {
		Metrics.CacheMisses.Inc()
	}
}
