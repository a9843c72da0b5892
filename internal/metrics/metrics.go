package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iptv_relay_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "iptv_relay_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "iptv_relay_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Session metrics
var (
	SessionsStartedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "iptv_relay_sessions_started_total",
			Help: "Total number of transcoding sessions started",
		},
	)

	SessionsSupersededTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "iptv_relay_sessions_superseded_total",
			Help: "Total number of sessions stopped because a new start replaced them",
		},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "iptv_relay_sessions_active",
			Help: "Number of active transcoding sessions (0 or 1)",
		},
	)

	SessionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "iptv_relay_session_duration_seconds",
			Help:    "Lifetime of a transcoding session from start to stop",
			Buckets: []float64{1, 10, 60, 300, 900, 1800, 3600, 7200, 14400},
		},
	)

	SessionStopsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iptv_relay_session_stops_total",
			Help: "Total number of session stops by reason",
		},
		[]string{"reason"}, // "explicit", "superseded", "disconnect", "process_exit"
	)
)

// Transcoder process metrics
var (
	ProcessSpawnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iptv_relay_process_spawns_total",
			Help: "Total number of transcoder process spawn attempts",
		},
		[]string{"status"}, // "success", "error"
	)

	ProcessExitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iptv_relay_process_exits_total",
			Help: "Total number of transcoder process exits",
		},
		[]string{"result"}, // "clean", "error", "killed"
	)

	StreamBytesRelayedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "iptv_relay_stream_bytes_relayed_total",
			Help: "Total bytes relayed from transcoder processes to HTTP clients",
		},
	)

	StreamClientDisconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "iptv_relay_stream_client_disconnects_total",
			Help: "Total number of streams ended by a client disconnect",
		},
	)
)

// Settings store metrics
var (
	SettingsQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iptv_relay_settings_queries_total",
			Help: "Total number of settings store queries",
		},
		[]string{"operation", "status"},
	)

	SettingsQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "iptv_relay_settings_query_duration_seconds",
			Help:    "Settings store query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)
)

// Playlist metrics
var (
	PlaylistFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iptv_relay_playlist_fetches_total",
			Help: "Total number of remote playlist fetches",
		},
		[]string{"status"}, // "success", "error"
	)

	PlaylistChannels = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "iptv_relay_playlist_channels",
			Help: "Number of channels in the most recently loaded playlist",
		},
	)
)

// Logo cache metrics
var (
	LogoCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "iptv_relay_logo_cache_hits_total",
			Help: "Total number of logo requests served from the cache",
		},
	)

	LogoCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "iptv_relay_logo_cache_misses_total",
			Help: "Total number of logo requests that required a remote fetch",
		},
	)

	LogoFetchErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "iptv_relay_logo_fetch_errors_total",
			Help: "Total number of failed logo fetches or decodes",
		},
	)
)
