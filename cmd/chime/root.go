package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/goodtune/chime/internal/alert"
	"github.com/goodtune/chime/internal/clock"
	"github.com/goodtune/chime/internal/config"
	"github.com/goodtune/chime/internal/notify"
	"github.com/goodtune/chime/internal/tracker"
	"github.com/goodtune/chime/internal/usage"
)

var (
	version    = "dev"
	configPath string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chime",
	Short: "Chime - category time-threshold desktop notifier",
	Long: `Chime polls a time-tracking server for the time spent today in each
configured category and raises desktop notifications when duration thresholds
are crossed, plus hourly summary checkins while the user is active.`,
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to start command when no subcommand is provided
		return runStart(cmd, args)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "Path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "chime", "config.yaml")
	}
	return "config.yaml"
}

// setupLogger configures the logger based on configuration
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}

	zerolog.SetGlobalLevel(level)

	// Set output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	// Default to human-readable console output
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// classificationRules converts the configured categories into query rules,
// in config order (first match wins server-side).
func classificationRules(cfg *config.Config) []tracker.Rule {
	rules := make([]tracker.Rule, 0, len(cfg.Categories))
	for _, cat := range cfg.Categories {
		rules = append(rules, tracker.Rule{
			Category:   cat.PathSegments(),
			Regex:      cat.Regex,
			IgnoreCase: true,
		})
	}
	return rules
}

// topCategories returns the categories listed in checkin summaries: the
// synthetic All entry plus each configured top-level category.
func topCategories(cfg *config.Config) []string {
	names := []string{usage.AllCategory}
	seen := map[string]bool{usage.AllCategory: true}
	for _, cat := range cfg.Categories {
		top := cat.PathSegments()[0]
		if !seen[top] {
			seen[top] = true
			names = append(names, top)
		}
	}
	return names
}

// newReporter wires the tracker client and usage reporter from config.
func newReporter(cfg *config.Config, logger zerolog.Logger) *usage.Reporter {
	client := tracker.New(tracker.Config{
		BaseURL:  cfg.Tracker.URL,
		Hostname: cfg.Tracker.Hostname,
		Timeout:  parseDuration(cfg.Tracker.Timeout, tracker.DefaultTimeout),
	}, logger)

	return usage.NewReporter(client, classificationRules(cfg), usage.Config{
		CacheTTL:       parseDuration(cfg.Alerts.CacheTTL, usage.DefaultCacheTTL),
		DayStartOffset: parseDuration(cfg.Alerts.DayStartOffset, usage.DefaultDayStartOffset),
		AFKMaxAge:      parseDuration(cfg.Checkin.AFKMaxAge, usage.DefaultAFKMaxAge),
	}, logger)
}

// newNotifier wires the desktop notification sink from config.
func newNotifier(cfg *config.Config, logger zerolog.Logger) *notify.Service {
	return notify.New(notify.Config{
		AppName:     cfg.Notify.AppName,
		Icon:        cfg.Notify.Icon,
		DedupWindow: parseDuration(cfg.Notify.DedupWindow, notify.DefaultDedupWindow),
	}, logger)
}

// buildAlerts creates one alert per configured category plus the synthetic
// All aggregate.
func buildAlerts(cfg *config.Config, reporter *usage.Reporter, notifier *notify.Service, logger zerolog.Logger) []*alert.CategoryAlert {
	clk := clock.RealClock{}

	alerts := []*alert.CategoryAlert{
		alert.NewCategoryAlert(usage.AllCategory, cfg.Alerts.AllLabel, cfg.Alerts.ParseAllThresholds(), reporter, notifier, clk, logger),
	}
	for _, cat := range cfg.Categories {
		if len(cat.Thresholds) == 0 {
			continue
		}
		alerts = append(alerts, alert.NewCategoryAlert(cat.Name, cat.Label, cat.ParseThresholds(), reporter, notifier, clk, logger))
	}
	return alerts
}
