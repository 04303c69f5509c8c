package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/goodtune/chime/internal/alert"
	"github.com/goodtune/chime/internal/checkin"
	"github.com/goodtune/chime/internal/config"
	"github.com/goodtune/chime/internal/metrics"
	"github.com/goodtune/chime/internal/systemd"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the notification daemon",
	Long:  `Start the daemon: poll the tracking server, raise threshold alerts, and send hourly checkins.`,
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)
	log.Logger = logger

	logger.Info().
		Str("version", version).
		Str("config", configPath).
		Msg("Starting chime")

	reporter := newReporter(cfg, logger)
	notifier := newNotifier(cfg, logger)

	// Wait for the tracking server before anything else fires
	info, err := reporter.Client().Info()
	if err != nil {
		return fmt.Errorf("tracking server unreachable at %s: %w", cfg.Tracker.URL, err)
	}
	logger.Info().
		Str("url", cfg.Tracker.URL).
		Str("hostname", info.Hostname).
		Str("server_version", info.Version).
		Msg("Connected to tracking server")

	// Metrics Server (optional)
	var metricsServer *metrics.Server
	if cfg.Server.MetricsEnabled {
		metricsAddr := fmt.Sprintf("%s:%d", cfg.Server.BindAddress, cfg.Server.MetricsPort)
		metricsServer = metrics.NewServer(metricsAddr, logger)
		if err := metricsServer.Start(); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		logger.Info().
			Str("addr", metricsAddr).
			Msg("Metrics Server started")
	}

	// Checkin service
	checkinService := checkin.New(reporter, notifier, topCategories(cfg), logger)

	if cfg.Checkin.OnStart {
		if err := checkinService.Send(); err != nil {
			logger.Warn().Err(err).Msg("Startup checkin failed")
		}
	}

	if cfg.Checkin.Hourly {
		if err := checkinService.Start(); err != nil {
			return fmt.Errorf("failed to start checkin scheduler: %w", err)
		}
		logger.Info().Msg("Hourly checkin scheduled")
	}

	// Alert scheduler
	alerts := buildAlerts(cfg, reporter, notifier, logger)
	scheduler := alert.NewScheduler(alerts, alert.Config{
		Interval: parseDuration(cfg.Alerts.PollInterval, alert.DefaultInterval),
	}, logger)
	scheduler.Start()

	logger.Info().
		Int("alerts", len(alerts)).
		Msg("Alert scheduler started")

	// Notify systemd that we're ready
	if systemd.IsSystemdService() {
		if err := systemd.NotifyReady(); err != nil {
			logger.Warn().Err(err).Msg("Failed to send systemd ready notification")
		}
		if interval := systemd.WatchdogInterval(); interval > 0 {
			go watchdogLoop(interval)
		}
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received, stopping...")

	// Notify systemd that we're stopping
	if err := systemd.NotifyStopping(); err != nil {
		logger.Warn().Err(err).Msg("Failed to send systemd stopping notification")
	}

	scheduler.Stop()

	if cfg.Checkin.Hourly {
		checkinService.Stop()
	}

	if metricsServer != nil {
		if err := metricsServer.Stop(); err != nil {
			logger.Error().Err(err).Msg("Error stopping Metrics Server")
		}
	}

	logger.Info().Msg("Chime stopped")

	return nil
}

// watchdogLoop pings the systemd watchdog at the configured interval.
func watchdogLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		if err := systemd.NotifyWatchdog(); err != nil {
			log.Warn().Err(err).Msg("Failed to send systemd watchdog notification")
		}
	}
}
