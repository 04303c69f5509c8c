package checkin

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/goodtune/chime/internal/metrics"
	"github.com/goodtune/chime/internal/usage"
)

// Reporter provides the day's category totals and the activity signal.
// Implemented by usage.Reporter.
type Reporter interface {
	CategoryTime() (map[string]time.Duration, error)
	ActiveStatus() (usage.Activity, error)
}

// Notifier delivers a notification. Implemented by notify.Service.
type Notifier interface {
	Send(title, message string) error
}

// Service sends summary notifications of the day's tracked time: once on
// demand, and on every wall-clock hour boundary while the user is active.
// Hours where the activity signal is idle or unknown are skipped silently.
type Service struct {
	reporter      Reporter
	notifier      Notifier
	topCategories []string
	cron          *cron.Cron
	logger        zerolog.Logger
}

// New creates a checkin service. topCategories are the categories listed in
// the summary, normally All plus each configured top-level category.
func New(reporter Reporter, notifier Notifier, topCategories []string, logger zerolog.Logger) *Service {
	return &Service{
		reporter:      reporter,
		notifier:      notifier,
		topCategories: topCategories,
		cron:          cron.New(),
		logger:        logger.With().Str("component", "checkin").Logger(),
	}
}

// Start schedules an hourly checkin on every whole hour
func (s *Service) Start() error {
	if _, err := s.cron.AddFunc("0 * * * *", s.hourly); err != nil {
		return fmt.Errorf("failed to schedule hourly checkin: %w", err)
	}
	s.cron.Start()
	s.logger.Info().Msg("Hourly checkin scheduler started")
	return nil
}

// Stop stops the hourly schedule
func (s *Service) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Hourly checkin scheduler stopped")
}

// Send delivers one summary notification of the day so far.
func (s *Service) Send() error {
	totals, err := s.reporter.CategoryTime()
	if err != nil {
		return fmt.Errorf("failed to get category totals: %w", err)
	}

	type entry struct {
		name  string
		spent time.Duration
	}
	entries := make([]entry, 0, len(s.topCategories))
	for _, name := range s.topCategories {
		entries = append(entries, entry{name: name, spent: totals[name]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].spent > entries[j].spent
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Time spent today: %s\n", usage.FormatDuration(totals[usage.AllCategory]))
	b.WriteString("Categories:\n")
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf(" - %s: %s", e.name, usage.FormatDuration(e.spent)))
	}
	b.WriteString(strings.Join(lines, "\n"))

	if err := s.notifier.Send("Checkin", b.String()); err != nil {
		return err
	}
	metrics.CheckinsSent.Inc()
	return nil
}

// hourly runs on each hour boundary: consult the activity signal and send a
// summary only when the user is demonstrably active.
func (s *Service) hourly() {
	activity, err := s.reporter.ActiveStatus()
	if err != nil {
		metrics.CheckinsSkipped.WithLabelValues("error").Inc()
		s.logger.Warn().Err(err).Msg("Failed to get activity status, skipping hourly checkin")
		return
	}

	switch activity {
	case usage.ActivityUnknown:
		metrics.CheckinsSkipped.WithLabelValues("unknown").Inc()
		s.logger.Warn().Msg("Activity status unknown, skipping hourly checkin")
		return
	case usage.ActivityIdle:
		metrics.CheckinsSkipped.WithLabelValues("idle").Inc()
		s.logger.Info().Msg("User is away, skipping hourly checkin")
		return
	}

	if err := s.Send(); err != nil {
		s.logger.Error().Err(err).Msg("Failed to send hourly checkin")
	}
}
