package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/goodtune/chime/internal/config"
	"github.com/goodtune/chime/internal/usage"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show today's tracked time per category",
	Long:  `Query the tracking server and print the time spent today in each category, plus the current activity status.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Quiet logger for interactive use
	logger := zerolog.New(os.Stderr).Level(zerolog.ErrorLevel).With().Timestamp().Logger()
	if verbose {
		logger = setupLogger(cfg.Logging)
	}

	reporter := newReporter(cfg, logger)

	totals, err := reporter.CategoryTime()
	if err != nil {
		return fmt.Errorf("failed to get category totals: %w", err)
	}

	type row struct {
		name  string
		spent string
	}
	rows := make([]row, 0, len(totals))
	names := make([]string, 0, len(totals))
	for name := range totals {
		if name == usage.AllCategory {
			continue
		}
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return totals[names[i]] > totals[names[j]]
	})
	for _, name := range names {
		rows = append(rows, row{name: name, spent: usage.FormatDuration(totals[name])})
	}

	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)

	fmt.Println()
	cyan.Println("TIME SPENT TODAY")
	fmt.Println()

	green.Printf("%-24s %s\n", usage.AllCategory, usage.FormatDuration(totals[usage.AllCategory]))
	for _, r := range rows {
		fmt.Printf("%-24s %s\n", r.name, r.spent)
	}

	fmt.Println()
	activity, err := reporter.ActiveStatus()
	if err != nil {
		yellow.Printf("Activity: unavailable (%v)\n", err)
	} else {
		fmt.Printf("Activity: %s\n", activity)
	}
	fmt.Println()

	return nil
}
