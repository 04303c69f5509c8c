package tracker

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/goodtune/chime/internal/metrics"
)

const (
	// DefaultTimeout bounds every request to the tracking server. The
	// polling loops have no other protection against a hung query.
	DefaultTimeout = 30 * time.Second

	windowBucketPrefix = "aw-watcher-window_"
	afkBucketPrefix    = "aw-watcher-afk_"
)

// Config holds tracker client configuration
type Config struct {
	// BaseURL of the tracking server, e.g. "http://localhost:5600".
	BaseURL string
	// Hostname overrides the hostname reported by the server's info
	// endpoint when building bucket names. Empty means ask the server.
	Hostname string
	Timeout  time.Duration
}

// Client queries an aw-server-compatible time-tracking service.
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger

	// hostname is resolved lazily and then kept; guarded because the
	// alert and checkin loops share one client.
	mu       sync.Mutex
	hostname string
}

// New creates a tracker client.
func New(cfg Config, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		hostname: cfg.Hostname,
		http:     &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "tracker").Logger(),
	}
}

// Info fetches server information.
func (c *Client) Info() (*ServerInfo, error) {
	var info ServerInfo
	if err := c.getJSON("/api/0/info", &info); err != nil {
		return nil, fmt.Errorf("failed to fetch server info: %w", err)
	}
	return &info, nil
}

// Hostname returns the configured hostname override, or the hostname the
// server reports. The resolved value is kept for subsequent calls.
func (c *Client) Hostname() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hostname != "" {
		return c.hostname, nil
	}
	info, err := c.Info()
	if err != nil {
		return "", err
	}
	if info.Hostname == "" {
		return "", fmt.Errorf("server reported an empty hostname")
	}
	c.hostname = info.Hostname
	return c.hostname, nil
}

// queryRequest is the wire form of a query call: statements plus one or more
// "start/end" time ranges in UTC.
type queryRequest struct {
	Query       []string `json:"query"`
	Timeperiods []string `json:"timeperiods"`
}

// Query runs a query over [start, end) and returns the raw RETURN value for
// that range.
func (c *Client) Query(query string, start, end time.Time) (json.RawMessage, error) {
	reqBody, err := json.Marshal(queryRequest{
		Query: strings.Split(query, "\n"),
		Timeperiods: []string{
			start.UTC().Format(time.RFC3339) + "/" + end.UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	metrics.QueriesTotal.Inc()

	resp, err := c.http.Post(c.baseURL+"/api/0/query", "application/json", bytes.NewReader(reqBody))
	if err != nil {
		metrics.QueryErrors.Inc()
		return nil, fmt.Errorf("query request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.QueryErrors.Inc()
		return nil, fmt.Errorf("failed to read query response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		metrics.QueryErrors.Inc()
		return nil, fmt.Errorf("query returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	// One result per timeperiod; we always send exactly one.
	var results []json.RawMessage
	if err := json.Unmarshal(body, &results); err != nil {
		metrics.QueryErrors.Inc()
		return nil, fmt.Errorf("failed to decode query response: %w", err)
	}
	if len(results) == 0 {
		metrics.QueryErrors.Inc()
		return nil, fmt.Errorf("query returned no results")
	}

	return results[0], nil
}

// categorySummaryResult mirrors the RETURN shape of BuildQuery.
type categorySummaryResult struct {
	Duration  float64 `json:"duration"`
	CatEvents []struct {
		Duration float64 `json:"duration"`
		Data     struct {
			Category []string `json:"$category"`
		} `json:"data"`
	} `json:"cat_events"`
}

// CategorySummary runs the canonical categorization query for [start, end)
// against this host's window and AFK buckets.
func (c *Client) CategorySummary(rules []Rule, start, end time.Time) (*Summary, error) {
	hostname, err := c.Hostname()
	if err != nil {
		return nil, err
	}

	query, err := BuildQuery(windowBucketPrefix+hostname, afkBucketPrefix+hostname, rules)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Time("start", start).
		Time("end", end).
		Int("rules", len(rules)).
		Msg("Running category query")

	raw, err := c.Query(query, start, end)
	if err != nil {
		return nil, err
	}

	var result categorySummaryResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode category summary: %w", err)
	}

	summary := &Summary{
		Total: time.Duration(result.Duration * float64(time.Second)),
	}
	for _, ev := range result.CatEvents {
		summary.Categories = append(summary.Categories, CategoryTotal{
			Path:     ev.Data.Category,
			Duration: time.Duration(ev.Duration * float64(time.Second)),
		})
	}

	return summary, nil
}

// LatestAFKEvent returns the most recent event from this host's AFK bucket,
// or nil when the bucket is empty.
func (c *Client) LatestAFKEvent() (*Event, error) {
	hostname, err := c.Hostname()
	if err != nil {
		return nil, err
	}

	var events []Event
	path := fmt.Sprintf("/api/0/buckets/%s/events?limit=1", afkBucketPrefix+hostname)
	if err := c.getJSON(path, &events); err != nil {
		return nil, fmt.Errorf("failed to fetch AFK events: %w", err)
	}
	if len(events) == 0 {
		return nil, nil
	}
	return &events[0], nil
}

func (c *Client) getJSON(path string, out any) error {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return json.Unmarshal(body, out)
}
