package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/goodtune/chime/internal/config"
	"github.com/goodtune/chime/internal/usage"
)

var validateDump bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long:  `Validate the configuration file for syntax and semantic errors.`,
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateDump, "dump", false, "Dump the effective category configuration")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Configuration validation failed: %v\n", err)
		return err
	}

	fmt.Fprintf(os.Stdout, "✅ Configuration is valid: %s\n", configPath)

	if validateDump {
		dumpCategories(cfg)
	}

	return nil
}

// dumpCategories prints the effective category ladder after defaults are
// applied.
func dumpCategories(cfg *config.Config) {
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)

	cyan.Println("\n[alerts]")
	fmt.Printf("  %s thresholds: ", usage.AllCategory)
	for i, t := range cfg.Alerts.ParseAllThresholds() {
		if i > 0 {
			fmt.Print(", ")
		}
		fmt.Print(usage.FormatDuration(t))
	}
	fmt.Println()

	cyan.Println("\n[categories]")
	for _, cat := range cfg.Categories {
		green.Printf("  %s\n", cat.Name)
		if cat.Label != "" {
			fmt.Printf("    label:      %s\n", cat.Label)
		}
		fmt.Printf("    regex:      %s\n", cat.Regex)
		fmt.Print("    thresholds: ")
		thresholds := cat.ParseThresholds()
		if len(thresholds) == 0 {
			fmt.Print("(none, checkin only)")
		}
		for i, t := range thresholds {
			if i > 0 {
				fmt.Print(", ")
			}
			fmt.Print(usage.FormatDuration(t))
		}
		fmt.Println()
	}
	fmt.Println()
}
