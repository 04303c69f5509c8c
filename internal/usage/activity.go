package usage

// Activity is the user's activity state as derived from the most recent AFK
// event. Unknown is a first-class outcome: a missing or stale event must not
// be guessed into active or idle.
type Activity int

const (
	ActivityUnknown Activity = iota
	ActivityActive
	ActivityIdle
)

// String returns a readable form for logging.
func (a Activity) String() string {
	switch a {
	case ActivityActive:
		return "active"
	case ActivityIdle:
		return "idle"
	default:
		return "unknown"
	}
}

// ActiveStatus derives the activity state from the latest AFK event.
// Events whose end is more than the configured max age in the past yield
// ActivityUnknown rather than a guess.
func (r *Reporter) ActiveStatus() (Activity, error) {
	event, err := r.client.LatestAFKEvent()
	if err != nil {
		return ActivityUnknown, err
	}
	if event == nil {
		return ActivityUnknown, nil
	}

	now := r.clock.Now()
	if event.End().Before(now.Add(-r.afkMaxAge)) {
		r.logger.Warn().
			Time("event_end", event.End()).
			Msg("AFK event is too old to reliably determine activity")
		return ActivityUnknown, nil
	}

	status, _ := event.Data["status"].(string)
	if status == "not-afk" {
		return ActivityActive, nil
	}
	return ActivityIdle, nil
}
