package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// Collectors for the polling jobs. Registered at package init so code paths
// exercised in tests can increment them without extra wiring.
var (
	PollCycles = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "youtube_bot_poll_cycles_total",
		Help: "Completed video poll cycles.",
	})

	VideosDiscovered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "youtube_bot_videos_discovered_total",
		Help: "Full-form videos accepted and persisted.",
	})

	ShortsFiltered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "youtube_bot_shorts_filtered_total",
		Help: "Short-form videos rejected by the content classifier.",
	})

	FeedErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "youtube_bot_feed_errors_total",
		Help: "Feed fetches that produced no usable entry.",
	})

	SyncCycles = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "youtube_bot_sync_cycles_total",
		Help: "Completed subscription sync cycles.",
	})

	NotificationsSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "youtube_bot_notifications_sent_total",
		Help: "Messages delivered to the messaging sink.",
	})

	NotificationErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "youtube_bot_notification_errors_total",
		Help: "Messages the sink failed to deliver.",
	})

	CacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "youtube_bot_channel_cache_hits_total",
		Help: "Channel registry reads served from the in-process cache.",
	})

	CacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "youtube_bot_channel_cache_misses_total",
		Help: "Channel registry reads that hit the durable store.",
	})
)

func init() {
	prometheus.MustRegister(
		PollCycles,
		VideosDiscovered,
		ShortsFiltered,
		FeedErrors,
		SyncCycles,
		NotificationsSent,
		NotificationErrors,
		CacheHits,
		CacheMisses,
	)
}

// RegisterPoolGauges exposes live pgx pool stats. Call once at startup.
func RegisterPoolGauges(pool *pgxpool.Pool) {
	prometheus.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "youtube_bot_db_connection_pool_active",
			Help: "Number of active database connections.",
		}, func() float64 {
			return float64(pool.Stat().AcquiredConns())
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "youtube_bot_db_connection_pool_idle",
			Help: "Number of idle database connections.",
		}, func() float64 {
			return float64(pool.Stat().IdleConns())
		}),
	)
}
