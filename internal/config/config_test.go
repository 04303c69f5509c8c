package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// TestLoad_Defaults tests that a missing config file yields a fully
// defaulted configuration including the built-in categories.
func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Tracker.URL != "http://localhost:5600" {
		t.Errorf("tracker.url = %q", cfg.Tracker.URL)
	}
	if !cfg.Checkin.Hourly || !cfg.Checkin.OnStart {
		t.Errorf("checkin defaults = %+v, want hourly and on_start enabled", cfg.Checkin)
	}
	if cfg.Server.MetricsEnabled {
		t.Error("metrics enabled by default, want disabled")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("logging defaults = %+v", cfg.Logging)
	}

	if len(cfg.Categories) != 3 {
		t.Fatalf("default categories = %d, want 3", len(cfg.Categories))
	}
	if cfg.Categories[0].Name != "Work" {
		t.Errorf("first default category = %q, want Work", cfg.Categories[0].Name)
	}

	want := []time.Duration{time.Hour, 2 * time.Hour, 4 * time.Hour, 6 * time.Hour, 8 * time.Hour}
	got := cfg.Alerts.ParseAllThresholds()
	if len(got) != len(want) {
		t.Fatalf("all thresholds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("all thresholds[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

// TestLoad_FileOverrides tests that file values override defaults and that
// configured categories replace the built-in taxonomy.
func TestLoad_FileOverrides(t *testing.T) {
	path := writeConfig(t, `
tracker:
  url: http://tracker.lan:5600
  hostname: desktop
alerts:
  poll_interval: 30s
  all_thresholds: ["2h", "6h"]
checkin:
  hourly: false
categories:
  - name: Gaming
    regex: Steam|Minecraft
    thresholds: ["1h", "3h"]
  - name: Work>Email
    regex: Thunderbird
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Tracker.URL != "http://tracker.lan:5600" {
		t.Errorf("tracker.url = %q", cfg.Tracker.URL)
	}
	if cfg.Tracker.Hostname != "desktop" {
		t.Errorf("tracker.hostname = %q", cfg.Tracker.Hostname)
	}
	if cfg.Checkin.Hourly {
		t.Error("checkin.hourly = true, want overridden to false")
	}
	if cfg.Alerts.PollInterval != "30s" {
		t.Errorf("poll_interval = %q", cfg.Alerts.PollInterval)
	}

	if len(cfg.Categories) != 2 {
		t.Fatalf("categories = %d, want 2", len(cfg.Categories))
	}
	gaming := cfg.Categories[0]
	if got := gaming.ParseThresholds(); len(got) != 2 || got[0] != time.Hour || got[1] != 3*time.Hour {
		t.Errorf("Gaming thresholds = %v", got)
	}
	email := cfg.Categories[1]
	if segments := email.PathSegments(); len(segments) != 2 || segments[0] != "Work" || segments[1] != "Email" {
		t.Errorf("PathSegments() = %v", segments)
	}
	if len(email.ParseThresholds()) != 0 {
		t.Errorf("Email thresholds = %v, want none", email.ParseThresholds())
	}
}

// TestLoad_Invalid tests semantic validation failures.
func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "empty tracker url",
			content: `
tracker:
  url: ""
`,
			wantErr: "tracker.url",
		},
		{
			name: "bad poll interval",
			content: `
alerts:
  poll_interval: soon
`,
			wantErr: "invalid duration",
		},
		{
			name: "negative threshold",
			content: `
categories:
  - name: Work
    regex: Code
    thresholds: ["-15m"]
`,
			wantErr: "must be positive",
		},
		{
			name: "duplicate category",
			content: `
categories:
  - name: Work
    regex: Code
  - name: Work
    regex: Terminal
`,
			wantErr: "duplicate category",
		},
		{
			name: "category without regex",
			content: `
categories:
  - name: Work
`,
			wantErr: "regex must not be empty",
		},
		{
			name: "broken regex",
			content: `
categories:
  - name: Work
    regex: "("
`,
			wantErr: "invalid regex",
		},
		{
			name: "metrics port out of range",
			content: `
server:
  metrics_port: 70000
`,
			wantErr: "metrics_port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Load() error = nil, want validation failure")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}
