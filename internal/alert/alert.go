package alert

import (
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/goodtune/chime/internal/clock"
	"github.com/goodtune/chime/internal/metrics"
	"github.com/goodtune/chime/internal/usage"
)

// TimeSource provides today's per-category totals and the aggregation day
// boundaries. Implemented by usage.Reporter.
type TimeSource interface {
	CategoryTime() (map[string]time.Duration, error)
	DayStart(now time.Time) time.Time
	NextDayStart(now time.Time) time.Time
}

// Notifier delivers a notification. Implemented by notify.Service.
type Notifier interface {
	Send(title, message string) error
}

// CategoryAlert tracks time spent in one category against a set of
// thresholds. It keeps the largest threshold already announced today as a
// high-water mark and only re-queries the time source once a crossing is
// numerically possible.
type CategoryAlert struct {
	category   string
	label      string
	thresholds []time.Duration

	maxTriggered time.Duration
	timeSpent    time.Duration
	lastCheck    time.Time
	day          time.Time

	source   TimeSource
	notifier Notifier
	clock    clock.Clock
	logger   zerolog.Logger
}

// NewCategoryAlert creates an alert for one category. An empty label falls
// back to the category name.
func NewCategoryAlert(category, label string, thresholds []time.Duration, source TimeSource, notifier Notifier, clk clock.Clock, logger zerolog.Logger) *CategoryAlert {
	if label == "" {
		label = category
	}
	return &CategoryAlert{
		category:   category,
		label:      label,
		thresholds: thresholds,
		source:     source,
		notifier:   notifier,
		clock:      clk,
		logger:     logger.With().Str("component", "alert").Str("category", category).Logger(),
	}
}

// untriggered returns the thresholds above the current high-water mark.
func (a *CategoryAlert) untriggered() []time.Duration {
	var out []time.Duration
	for _, t := range a.thresholds {
		if t > a.maxTriggered {
			out = append(out, t)
		}
	}
	return out
}

// TimeToNextThreshold returns how long until the earliest untriggered
// threshold could possibly be reached. The result may be zero or negative
// when a crossing is already due. When every threshold is exhausted for
// today it returns the time until shortly after tomorrow's day start, since
// nothing further can fire before then.
func (a *CategoryAlert) TimeToNextThreshold() time.Duration {
	now := a.clock.Now()

	untriggered := a.untriggered()
	if len(untriggered) == 0 {
		wait := a.source.NextDayStart(now).Sub(now)
		if len(a.thresholds) > 0 {
			wait += slices.Min(a.thresholds)
		}
		return wait
	}

	return slices.Min(untriggered) - a.timeSpent
}

// Update refreshes timeSpent from the time source iff enough wall-clock time
// has passed since the last refresh for a threshold crossing to be possible.
// A failed query is logged and skipped; the next tick retries.
func (a *CategoryAlert) Update() {
	now := a.clock.Now()
	a.rollover(now)

	if !now.After(a.lastCheck.Add(a.TimeToNextThreshold())) {
		return
	}

	totals, err := a.source.CategoryTime()
	if err != nil {
		a.logger.Error().Err(err).Msg("Failed to get time spent")
		return
	}

	a.timeSpent = totals[a.category]
	a.lastCheck = now
	a.logger.Debug().Dur("time_spent", a.timeSpent).Msg("Updated time spent")
}

// rollover resets the per-day state when the aggregation day has changed.
// Without this the high-water mark of yesterday would suppress today's
// alerts for thresholds already passed once.
func (a *CategoryAlert) rollover(now time.Time) {
	dayStart := a.source.DayStart(now)
	if a.day.IsZero() {
		a.day = dayStart
		return
	}
	if dayStart.After(a.day) {
		a.logger.Debug().Time("day_start", dayStart).Msg("Day rolled over, resetting alert state")
		a.maxTriggered = 0
		a.timeSpent = 0
		a.day = dayStart
	}
}

// Check fires at most one notification: the largest untriggered threshold
// now covered by timeSpent. Lower thresholds skipped over in the same jump
// are implicitly satisfied and never announced.
func (a *CategoryAlert) Check() {
	untriggered := a.untriggered()
	slices.Sort(untriggered)
	slices.Reverse(untriggered)

	for _, threshold := range untriggered {
		if threshold <= a.timeSpent {
			a.maxTriggered = threshold
			metrics.ThresholdsTriggered.WithLabelValues(a.category).Inc()
			_ = a.notifier.Send(
				"Time spent",
				fmt.Sprintf("%s: %s reached! (%s)", a.label, usage.FormatDuration(threshold), usage.FormatDuration(a.timeSpent)),
			)
			break
		}
	}
}

// Status returns a one-line projection of the alert for logging. It has no
// side effects on alert state.
func (a *CategoryAlert) Status() string {
	return fmt.Sprintf("%s: %s", a.label, usage.FormatDuration(a.timeSpent))
}

// Category returns the category path this alert tracks.
func (a *CategoryAlert) Category() string {
	return a.category
}
