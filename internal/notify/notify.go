package notify

import (
	"time"

	"github.com/gen2brain/beeep"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"

	"github.com/goodtune/chime/internal/metrics"
)

const (
	// DefaultDedupWindow is how long an identical title+message pair is
	// suppressed after delivery.
	DefaultDedupWindow = time.Minute

	// dedupKeys bounds the dedup cache; far more than the number of
	// distinct notifications the loops can produce in one window.
	dedupKeys = 64
)

// Sender delivers one desktop notification. It exists so tests can observe
// deliveries without a desktop session.
type Sender func(title, message, icon string) error

// Config holds notification sink configuration
type Config struct {
	// AppName shown by the desktop environment as the notification source.
	AppName string
	// Icon is a path to the notification icon, empty for none.
	Icon string
	// DedupWindow suppresses identical notifications delivered within it.
	// Zero uses the default; negative disables dedup.
	DedupWindow time.Duration
}

// Service is a best-effort desktop notification sink. Delivery is
// synchronous and fire-and-forget: failures are logged and counted, never
// escalated to the caller's control flow.
type Service struct {
	icon   string
	send   Sender
	recent *expirable.LRU[string, time.Time]
	logger zerolog.Logger
}

// New creates a notification service backed by the desktop notifier.
func New(cfg Config, logger zerolog.Logger) *Service {
	return NewWithSender(cfg, func(title, message, icon string) error {
		return beeep.Notify(title, message, icon)
	}, logger)
}

// NewWithSender is New with an injectable delivery function for tests.
func NewWithSender(cfg Config, send Sender, logger zerolog.Logger) *Service {
	if cfg.AppName != "" {
		beeep.AppName = cfg.AppName
	}

	window := cfg.DedupWindow
	if window == 0 {
		window = DefaultDedupWindow
	}

	var recent *expirable.LRU[string, time.Time]
	if window > 0 {
		recent = expirable.NewLRU[string, time.Time](dedupKeys, nil, window)
	}

	return &Service{
		icon:   cfg.Icon,
		send:   send,
		recent: recent,
		logger: logger.With().Str("component", "notify").Logger(),
	}
}

// Send delivers one notification. An identical title+message pair already
// delivered within the dedup window is silently suppressed.
func (s *Service) Send(title, message string) error {
	key := title + "\n" + message
	if s.recent != nil {
		if _, seen := s.recent.Get(key); seen {
			metrics.NotificationsDeduped.Inc()
			s.logger.Debug().Str("title", title).Msg("Suppressing duplicate notification")
			return nil
		}
	}

	s.logger.Info().Str("title", title).Str("message", message).Msg("Showing notification")

	if err := s.send(title, message, s.icon); err != nil {
		metrics.NotificationErrors.Inc()
		s.logger.Error().Err(err).Str("title", title).Msg("Failed to deliver notification")
		return err
	}

	if s.recent != nil {
		s.recent.Add(key, time.Now())
	}
	metrics.NotificationsSent.Inc()
	return nil
}
