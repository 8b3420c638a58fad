// Package cmd implements the acumon CLI commands.
package cmd

import (
	"fmt"

	"github.com/theirongolddev/acumon/internal/cli"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", configPath())
	if configExists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [API]")
	fmt.Printf("    Base URL:     %s\n", cfg.API.BaseURL)
	fmt.Printf("    Latest path:  %s\n", cfg.API.LatestPath)
	fmt.Printf("    History path: %s\n", cfg.API.HistoryPath)
	fmt.Printf("    Timeout:      %s\n", cfg.Timeout())
	fmt.Println()

	fmt.Println("  [Refresh]")
	fmt.Printf("    Interval: %s\n", cli.FormatDuration(int64(cfg.Interval().Seconds())))
	fmt.Println()

	fmt.Println("  [Display]")
	fmt.Printf("    Theme: %s\n", cfg.Display.Theme)
	if cfg.Display.DateLayout != "" {
		fmt.Printf("    Date layout:  %s\n", cfg.Display.DateLayout)
	}
	if cfg.Display.LabelLayout != "" {
		fmt.Printf("    Label layout: %s\n", cfg.Display.LabelLayout)
	}
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    File:  %s\n", cfg.LogPath())
	fmt.Printf("    Level: %s\n", cfg.Log.Level)
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address:  %s\n", cfg.Server.Addr)
	fmt.Printf("    Database: %s\n", cfg.DBPath())
	if d := cfg.ScrapeInterval(); d > 0 {
		fmt.Printf("    Scrape every: %s\n", d)
	} else {
		fmt.Println("    Scrape every: disabled")
	}
	fmt.Println()

	fmt.Println("  [Scraper]")
	fmt.Printf("    URL:      %s\n", cfg.Scraper.URL)
	fmt.Printf("    Username: %s\n", orNotConfigured(cfg.Scraper.Username))
	fmt.Printf("    Password: %s\n", maskSecret(cfg.Scraper.Password))
	fmt.Printf("    Headless: %v\n", cfg.Scraper.Headless)
	fmt.Println()

	fmt.Println("  [MQTT]")
	if cfg.MQTT.Enabled {
		fmt.Printf("    Broker: %s\n", cfg.MQTT.Broker)
		fmt.Printf("    Topic:  %s/snapshot\n", cfg.MQTT.TopicPrefix)
	} else {
		fmt.Println("    Disabled")
	}
	fmt.Println()

	fmt.Println("  Run `acumon setup` to reconfigure.")
	return nil
}

func orNotConfigured(s string) string {
	if s == "" {
		return "not configured"
	}
	return s
}
