package tracker

import "time"

// ServerInfo describes the tracking server, as returned by its info endpoint.
type ServerInfo struct {
	Hostname string `json:"hostname"`
	Version  string `json:"version"`
	Testing  bool   `json:"testing"`
}

// Event is a raw tracked event. Durations are reported in seconds.
type Event struct {
	ID              int64          `json:"id,omitempty"`
	Timestamp       time.Time      `json:"timestamp"`
	DurationSeconds float64        `json:"duration"`
	Data            map[string]any `json:"data"`
}

// Duration returns the event duration as a time.Duration.
func (e *Event) Duration() time.Duration {
	return time.Duration(e.DurationSeconds * float64(time.Second))
}

// End returns the point in time at which the event ended.
func (e *Event) End() time.Time {
	return e.Timestamp.Add(e.Duration())
}

// CategoryTotal is one category's summed duration within a query window.
type CategoryTotal struct {
	// Path holds the hierarchical category segments, e.g. ["Work", "Programming"].
	Path     []string
	Duration time.Duration
}

// Summary is the result of a categorized range query: the total tracked
// duration plus per-category totals, ordered by duration descending as
// returned by the server.
type Summary struct {
	Total      time.Duration
	Categories []CategoryTotal
}
