package usage

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/goodtune/chime/internal/cache"
	"github.com/goodtune/chime/internal/clock"
	"github.com/goodtune/chime/internal/tracker"
)

const (
	// AllCategory is the synthetic category aggregating every tracked
	// category.
	AllCategory = "All"

	// PathSeparator joins hierarchical category path segments.
	PathSeparator = ">"

	// DefaultCacheTTL bounds how often the range query is issued; the
	// polling loops call far more frequently than this.
	DefaultCacheTTL = time.Minute

	// DefaultDayStartOffset shifts the aggregation day boundary past
	// midnight UTC, modeling a user's local day start.
	DefaultDayStartOffset = 4 * time.Hour

	// DefaultAFKMaxAge is how far past its end an AFK event may be and
	// still be trusted for the activity signal.
	DefaultAFKMaxAge = 5 * time.Minute
)

// Config holds reporter configuration
type Config struct {
	CacheTTL       time.Duration
	DayStartOffset time.Duration
	AFKMaxAge      time.Duration
}

// Reporter aggregates tracked time into per-category totals for today.
// The underlying range query is expensive and memoized behind a TTL cache
// shared by every consumer of this reporter.
type Reporter struct {
	client    *tracker.Client
	rules     []tracker.Rule
	dayOffset time.Duration
	afkMaxAge time.Duration
	clock     clock.Clock
	cache     *cache.TTL[map[string]time.Duration]
	logger    zerolog.Logger
}

// NewReporter creates a reporter over the given client and classification
// rules.
func NewReporter(client *tracker.Client, rules []tracker.Rule, cfg Config, logger zerolog.Logger) *Reporter {
	return newReporter(client, rules, cfg, clock.RealClock{}, logger)
}

// NewReporterWithClock is NewReporter with an injectable clock for tests.
func NewReporterWithClock(client *tracker.Client, rules []tracker.Rule, cfg Config, clk clock.Clock, logger zerolog.Logger) *Reporter {
	return newReporter(client, rules, cfg, clk, logger)
}

func newReporter(client *tracker.Client, rules []tracker.Rule, cfg Config, clk clock.Clock, logger zerolog.Logger) *Reporter {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.DayStartOffset == 0 {
		cfg.DayStartOffset = DefaultDayStartOffset
	}
	if cfg.AFKMaxAge == 0 {
		cfg.AFKMaxAge = DefaultAFKMaxAge
	}

	r := &Reporter{
		client:    client,
		rules:     rules,
		dayOffset: cfg.DayStartOffset,
		afkMaxAge: cfg.AFKMaxAge,
		clock:     clk,
		logger:    logger.With().Str("component", "usage").Logger(),
	}
	r.cache = cache.NewWithClock(cfg.CacheTTL, r.fetch, clk)
	return r
}

// Client exposes the underlying tracker client.
func (r *Reporter) Client() *tracker.Client {
	return r.client
}

// CategoryTime returns the time spent today per category path, including the
// synthetic All entry. Results come from the TTL cache; at most one range
// query is issued per TTL window.
func (r *Reporter) CategoryTime() (map[string]time.Duration, error) {
	return r.cache.Get()
}

// DayStart returns the start of the aggregation day that now falls in:
// midnight UTC shifted forward by the configured offset. Times before the
// shifted boundary belong to the previous day.
func (r *Reporter) DayStart(now time.Time) time.Time {
	now = now.UTC()
	start := now.Truncate(24 * time.Hour).Add(r.dayOffset)
	if start.After(now) {
		start = start.AddDate(0, 0, -1)
	}
	return start
}

// NextDayStart returns the start of the aggregation day after the one now
// falls in.
func (r *Reporter) NextDayStart(now time.Time) time.Time {
	return r.DayStart(now).AddDate(0, 0, 1)
}

// fetch issues one categorized range query for [day start, now).
func (r *Reporter) fetch() (map[string]time.Duration, error) {
	now := r.clock.Now().UTC()
	start := r.DayStart(now)

	summary, err := r.client.CategorySummary(r.rules, start, now)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]time.Duration, len(summary.Categories)+1)
	for _, cat := range summary.Categories {
		totals[strings.Join(cat.Path, PathSeparator)] = cat.Duration
	}
	totals[AllCategory] = summary.Total

	r.logger.Debug().
		Time("day_start", start).
		Int("categories", len(summary.Categories)).
		Dur("total", summary.Total).
		Msg("Fetched category totals")

	return totals, nil
}
