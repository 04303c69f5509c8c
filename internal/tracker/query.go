package tracker

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Rule classifies canonical events into a category. Rules are applied in
// order; the first matching rule wins. The regex is matched against window
// title and app name.
type Rule struct {
	// Category is the hierarchical category path, e.g. ["Work", "Programming"].
	Category []string
	// Regex matched against window title/app.
	Regex string
	// IgnoreCase makes the match case-insensitive.
	IgnoreCase bool
}

// classRule is the wire form of a rule inside the query language: a pair of
// category path and match rule.
type classRule struct {
	Type       string `json:"type"`
	Regex      string `json:"regex"`
	IgnoreCase bool   `json:"ignore_case"`
}

// BuildQuery renders the canonicalization query for one window/AFK bucket
// pair: flood both buckets, keep window events intersecting not-afk periods,
// categorize them by the given rules, and return summed per-category totals
// together with the overall duration.
func BuildQuery(windowBucket, afkBucket string, rules []Rule) (string, error) {
	classes := make([][2]json.RawMessage, 0, len(rules))
	for _, r := range rules {
		path, err := json.Marshal(r.Category)
		if err != nil {
			return "", fmt.Errorf("failed to marshal category path: %w", err)
		}
		rule, err := json.Marshal(classRule{
			Type:       "regex",
			Regex:      r.Regex,
			IgnoreCase: r.IgnoreCase,
		})
		if err != nil {
			return "", fmt.Errorf("failed to marshal rule: %w", err)
		}
		classes = append(classes, [2]json.RawMessage{path, rule})
	}

	classesJSON, err := json.Marshal(classes)
	if err != nil {
		return "", fmt.Errorf("failed to marshal classes: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "events = flood(query_bucket(find_bucket(%q)));\n", windowBucket)
	fmt.Fprintf(&b, "not_afk = flood(query_bucket(find_bucket(%q)));\n", afkBucket)
	b.WriteString("not_afk = filter_keyvals(not_afk, \"status\", [\"not-afk\"]);\n")
	b.WriteString("events = filter_period_intersect(events, not_afk);\n")
	fmt.Fprintf(&b, "events = categorize(events, %s);\n", classesJSON)
	b.WriteString("duration = sum_durations(events);\n")
	b.WriteString("cat_events = sort_by_duration(merge_events_by_keys(events, [\"$category\"]));\n")
	b.WriteString("RETURN = {\"duration\": duration, \"cat_events\": cat_events};")
	return b.String(), nil
}
