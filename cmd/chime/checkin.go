package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goodtune/chime/internal/checkin"
	"github.com/goodtune/chime/internal/config"
)

var checkinCmd = &cobra.Command{
	Use:   "checkin",
	Short: "Send a single checkin notification",
	Long:  `Send one summary notification of the time spent today, then exit.`,
	RunE:  runCheckin,
}

func init() {
	rootCmd.AddCommand(checkinCmd)
}

func runCheckin(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	reporter := newReporter(cfg, logger)
	notifier := newNotifier(cfg, logger)

	return checkin.New(reporter, notifier, topCategories(cfg), logger).Send()
}
