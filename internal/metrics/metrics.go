package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	// Tracker query metrics
	QueriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chime_tracker_queries_total",
			Help: "Total queries issued to the time-tracking service",
		},
	)

	QueryErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chime_tracker_query_errors_total",
			Help: "Queries to the time-tracking service that failed",
		},
	)

	// Cache metrics
	CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chime_cache_hits_total",
			Help: "Cache lookups served from the stored value",
		},
	)

	CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chime_cache_misses_total",
			Help: "Cache lookups that invoked the underlying operation",
		},
	)

	// Alert metrics
	ThresholdsTriggered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chime_thresholds_triggered_total",
			Help: "Threshold crossings announced, per category",
		},
		[]string{"category"},
	)

	// Notification metrics
	NotificationsSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chime_notifications_sent_total",
			Help: "Desktop notifications delivered to the sink",
		},
	)

	NotificationsDeduped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chime_notifications_deduped_total",
			Help: "Notifications suppressed by the dedup window",
		},
	)

	NotificationErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chime_notification_errors_total",
			Help: "Notifications that failed to deliver",
		},
	)

	// Checkin metrics
	CheckinsSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chime_checkins_sent_total",
			Help: "Checkin summaries sent",
		},
	)

	CheckinsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chime_checkins_skipped_total",
			Help: "Hourly checkins skipped, by reason",
		},
		[]string{"reason"},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(
		QueriesTotal,
		QueryErrors,
		CacheHits,
		CacheMisses,
		ThresholdsTriggered,
		NotificationsSent,
		NotificationsDeduped,
		NotificationErrors,
		CheckinsSent,
		CheckinsSkipped,
	)
}

// Server is the metrics HTTP server
type Server struct {
	server *http.Server
	logger zerolog.Logger
}

// NewServer creates a new metrics server
func NewServer(addr string, logger zerolog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &Server{
		server: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
		logger: logger.With().Str("component", "metrics").Logger(),
	}
}

// Start starts the metrics server
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("Starting metrics server")
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("Metrics server error")
		}
	}()
	return nil
}

// Stop stops the metrics server
func (s *Server) Stop() error {
	s.logger.Info().Msg("Stopping metrics server")
	return s.server.Close()
}
