package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the complete application configuration
type Config struct {
	Tracker    TrackerConfig    `mapstructure:"tracker"`
	Categories []CategoryConfig `mapstructure:"categories"`
	Alerts     AlertsConfig     `mapstructure:"alerts"`
	Checkin    CheckinConfig    `mapstructure:"checkin"`
	Notify     NotifyConfig     `mapstructure:"notify"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Server     ServerConfig     `mapstructure:"server"`
}

// TrackerConfig defines how to reach the time-tracking server
type TrackerConfig struct {
	URL      string `mapstructure:"url"`
	Hostname string `mapstructure:"hostname"` // override; empty asks the server
	Timeout  string `mapstructure:"timeout"`
}

// CategoryConfig defines one tracked category: a classification rule plus
// the alert thresholds for it. Hierarchical names join segments with ">".
type CategoryConfig struct {
	Name       string   `mapstructure:"name"`
	Label      string   `mapstructure:"label"`
	Regex      string   `mapstructure:"regex"`
	Thresholds []string `mapstructure:"thresholds"`
}

// AlertsConfig defines threshold alert behavior
type AlertsConfig struct {
	AllThresholds  []string `mapstructure:"all_thresholds"`
	AllLabel       string   `mapstructure:"all_label"`
	PollInterval   string   `mapstructure:"poll_interval"`
	CacheTTL       string   `mapstructure:"cache_ttl"`
	DayStartOffset string   `mapstructure:"day_start_offset"`
}

// CheckinConfig defines summary checkin behavior
type CheckinConfig struct {
	Hourly    bool   `mapstructure:"hourly"`
	OnStart   bool   `mapstructure:"on_start"`
	AFKMaxAge string `mapstructure:"afk_max_age"`
}

// NotifyConfig defines the desktop notification sink
type NotifyConfig struct {
	AppName     string `mapstructure:"app_name"`
	Icon        string `mapstructure:"icon"`
	DedupWindow string `mapstructure:"dedup_window"`
}

// LoggingConfig defines logging behavior
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig defines the metrics endpoint
type ServerConfig struct {
	BindAddress    string `mapstructure:"bind_address"`
	MetricsPort    int    `mapstructure:"metrics_port"`
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Configure viper
	v.SetConfigFile(configPath)
	v.SetEnvPrefix("CHIME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file. A missing file is fine: defaults and environment
	// variables still apply.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal config
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// The category list can't be defaulted through viper; fall back to the
	// built-in taxonomy when the file defines none.
	if len(config.Categories) == 0 {
		config.Categories = DefaultCategories()
	}

	// Validate config
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Tracker defaults
	v.SetDefault("tracker.url", "http://localhost:5600")
	v.SetDefault("tracker.hostname", "")
	v.SetDefault("tracker.timeout", "30s")

	// Alert defaults
	v.SetDefault("alerts.all_thresholds", []string{"1h", "2h", "4h", "6h", "8h"})
	v.SetDefault("alerts.all_label", "All")
	v.SetDefault("alerts.poll_interval", "10s")
	v.SetDefault("alerts.cache_ttl", "1m")
	v.SetDefault("alerts.day_start_offset", "4h")

	// Checkin defaults
	v.SetDefault("checkin.hourly", true)
	v.SetDefault("checkin.on_start", true)
	v.SetDefault("checkin.afk_max_age", "5m")

	// Notify defaults
	v.SetDefault("notify.app_name", "chime")
	v.SetDefault("notify.icon", "")
	v.SetDefault("notify.dedup_window", "1m")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// Server defaults
	v.SetDefault("server.bind_address", "127.0.0.1")
	v.SetDefault("server.metrics_port", 9280)
	v.SetDefault("server.metrics_enabled", false)
}

// DefaultCategories returns the built-in classification taxonomy, used when
// the config file defines no categories.
func DefaultCategories() []CategoryConfig {
	return []CategoryConfig{
		{
			Name:       "Work",
			Label:      "\U0001F4BC Work",
			Regex:      `Programming|nvim|taxes|Roam|Code`,
			Thresholds: []string{"15m", "30m", "1h", "2h", "4h"},
		},
		{
			Name:       "Twitter",
			Label:      "\U0001F426 Twitter",
			Regex:      `Twitter|twitter.com|Home / X`,
			Thresholds: []string{"15m", "30m", "1h"},
		},
		{
			Name:       "Youtube",
			Label:      "\U0001F4FA Youtube",
			Regex:      `Youtube|youtube.com`,
			Thresholds: []string{"15m", "30m", "1h"},
		},
	}
}

// validate performs semantic validation of the configuration
func validate(config *Config) error {
	if config.Tracker.URL == "" {
		return fmt.Errorf("tracker.url must not be empty")
	}

	durations := map[string]string{
		"tracker.timeout":         config.Tracker.Timeout,
		"alerts.poll_interval":    config.Alerts.PollInterval,
		"alerts.cache_ttl":        config.Alerts.CacheTTL,
		"alerts.day_start_offset": config.Alerts.DayStartOffset,
		"checkin.afk_max_age":     config.Checkin.AFKMaxAge,
		"notify.dedup_window":     config.Notify.DedupWindow,
	}
	for key, value := range durations {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%s: invalid duration %q: %w", key, value, err)
		}
	}

	for i, threshold := range config.Alerts.AllThresholds {
		if err := validateThreshold(threshold); err != nil {
			return fmt.Errorf("alerts.all_thresholds[%d]: %w", i, err)
		}
	}

	seen := make(map[string]bool, len(config.Categories))
	for i, cat := range config.Categories {
		if cat.Name == "" {
			return fmt.Errorf("categories[%d]: name must not be empty", i)
		}
		if seen[cat.Name] {
			return fmt.Errorf("categories[%d]: duplicate category %q", i, cat.Name)
		}
		seen[cat.Name] = true

		if cat.Regex == "" {
			return fmt.Errorf("categories[%d] (%s): regex must not be empty", i, cat.Name)
		}
		if _, err := regexp.Compile(cat.Regex); err != nil {
			return fmt.Errorf("categories[%d] (%s): invalid regex: %w", i, cat.Name, err)
		}
		for j, threshold := range cat.Thresholds {
			if err := validateThreshold(threshold); err != nil {
				return fmt.Errorf("categories[%d] (%s) thresholds[%d]: %w", i, cat.Name, j, err)
			}
		}
	}

	if config.Server.MetricsPort < 1 || config.Server.MetricsPort > 65535 {
		return fmt.Errorf("server.metrics_port must be between 1 and 65535")
	}

	return nil
}

func validateThreshold(s string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if d <= 0 {
		return fmt.Errorf("threshold %q must be positive", s)
	}
	return nil
}

// PathSegments splits a hierarchical category name into its segments.
func (c CategoryConfig) PathSegments() []string {
	return strings.Split(c.Name, ">")
}

// ParseThresholds returns the category's thresholds as durations. Must only
// be called on validated configuration.
func (c CategoryConfig) ParseThresholds() []time.Duration {
	return parseDurations(c.Thresholds)
}

// ParseAllThresholds returns the synthetic All category's thresholds.
func (a AlertsConfig) ParseAllThresholds() []time.Duration {
	return parseDurations(a.AllThresholds)
}

func parseDurations(values []string) []time.Duration {
	out := make([]time.Duration, 0, len(values))
	for _, value := range values {
		if d, err := time.ParseDuration(value); err == nil {
			out = append(out, d)
		}
	}
	return out
}
