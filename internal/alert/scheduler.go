package alert

import (
	"time"

	"github.com/rs/zerolog"
)

// DefaultInterval is the fixed tick between scheduler passes. A pass is
// cheap (pure comparisons unless an alert decides to query), so a short
// fixed tick is acceptable; the per-alert adaptive interval gates the
// expensive work.
const DefaultInterval = 10 * time.Second

// Config holds scheduler configuration
type Config struct {
	Interval time.Duration
}

// Scheduler drives a fixed set of category alerts: every tick it runs
// Update then Check on each alert, logging status lines when they change.
type Scheduler struct {
	alerts     []*CategoryAlert
	interval   time.Duration
	lastStatus map[string]string
	logger     zerolog.Logger
	stopChan   chan struct{}
}

// NewScheduler creates a scheduler over the given alerts.
func NewScheduler(alerts []*CategoryAlert, cfg Config, logger zerolog.Logger) *Scheduler {
	interval := cfg.Interval
	if interval == 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		alerts:     alerts,
		interval:   interval,
		lastStatus: make(map[string]string),
		logger:     logger.With().Str("component", "alert-scheduler").Logger(),
		stopChan:   make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *Scheduler) Start() {
	go s.run()
	s.logger.Info().
		Dur("interval", s.interval).
		Int("alerts", len(s.alerts)).
		Msg("Threshold alert scheduler started")
}

// Stop stops the scheduler loop
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.logger.Info().Msg("Threshold alert scheduler stopped")
}

// run is the main scheduler loop
func (s *Scheduler) run() {
	for {
		s.pass()

		select {
		case <-time.After(s.interval):
		case <-s.stopChan:
			return
		}
	}
}

// pass runs one update/check cycle over every alert.
func (s *Scheduler) pass() {
	for _, a := range s.alerts {
		a.Update()
		a.Check()

		status := a.Status()
		if status != s.lastStatus[a.Category()] {
			s.logger.Debug().Str("status", status).Msg("Alert status changed")
			s.lastStatus[a.Category()] = status
		}
	}
}
