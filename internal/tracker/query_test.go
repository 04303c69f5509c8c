package tracker

import (
	"strings"
	"testing"
)

// TestBuildQuery tests that the rendered query references both buckets,
// filters by not-afk, and carries the classification rules in order.
func TestBuildQuery(t *testing.T) {
	rules := []Rule{
		{Category: []string{"Work"}, Regex: "Code|Terminal", IgnoreCase: true},
		{Category: []string{"Media", "Youtube"}, Regex: "YouTube"},
	}

	query, err := BuildQuery("aw-watcher-window_host", "aw-watcher-afk_host", rules)
	if err != nil {
		t.Fatalf("BuildQuery() error = %v", err)
	}

	for _, want := range []string{
		`find_bucket("aw-watcher-window_host")`,
		`find_bucket("aw-watcher-afk_host")`,
		`filter_keyvals(not_afk, "status", ["not-afk"])`,
		"filter_period_intersect(events, not_afk)",
		`["Work"],{"type":"regex","regex":"Code|Terminal","ignore_case":true}`,
		`["Media","Youtube"]`,
		"sum_durations(events)",
		`merge_events_by_keys(events, ["$category"])`,
		`RETURN = {"duration": duration, "cat_events": cat_events};`,
	} {
		if !strings.Contains(query, want) {
			t.Errorf("query missing %q:\n%s", want, query)
		}
	}

	// Work rule must come before the Youtube rule, first match wins
	if strings.Index(query, `"Code|Terminal"`) > strings.Index(query, `"YouTube"`) {
		t.Error("rules rendered out of order")
	}
}

// TestBuildQuery_NoRules tests that an empty rule set still renders a valid
// query with an empty class list.
func TestBuildQuery_NoRules(t *testing.T) {
	query, err := BuildQuery("w", "a", nil)
	if err != nil {
		t.Fatalf("BuildQuery() error = %v", err)
	}
	if !strings.Contains(query, "categorize(events, [])") {
		t.Errorf("query = %s", query)
	}
}
