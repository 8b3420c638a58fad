package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/theirongolddev/acumon/internal/cli"
	"github.com/theirongolddev/acumon/internal/config"
	"github.com/theirongolddev/acumon/internal/tui/theme"

	"github.com/spf13/cobra"
)

var (
	flagConfig   string
	flagBaseURL  string
	flagInterval int
	flagLogFile  string
	flagLogLevel string
	flagQuiet    bool
)

var rootCmd = &cobra.Command{
	Use:   "acumon",
	Short: "Devin ACU credit monitor",
	Long:  "Watch Devin ACU credit usage from the terminal, and run the backend that records it.",
	RunE:  runTUI,
}

// Execute is the main entry point called from main.go.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Config file (default "+config.ConfigPath()+")")
	rootCmd.PersistentFlags().StringVarP(&flagBaseURL, "base-url", "u", "", "Backend base URL")
	rootCmd.PersistentFlags().IntVarP(&flagInterval, "interval", "i", 0, "Refresh interval in seconds")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Log file path")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error, off)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

// configPath returns the file the commands read and write.
func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.ConfigPath()
}

func configExists() bool {
	_, err := os.Stat(configPath())
	return err == nil
}

// loadConfig reads the config file and layers the command-line flags on
// top. Display settings take effect immediately.
func loadConfig() (config.Config, error) {
	cfg, err := config.LoadFrom(configPath())
	if err != nil {
		return cfg, err
	}

	if flagBaseURL != "" {
		cfg.API.BaseURL = strings.TrimRight(flagBaseURL, "/")
	}
	if flagInterval > 0 {
		cfg.Refresh.IntervalSec = flagInterval
	}
	if flagLogFile != "" {
		cfg.Log.File = flagLogFile
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}

	theme.SetActive(cfg.Display.Theme)
	cli.SetLayouts(cfg.Display.DateLayout, cfg.Display.LabelLayout)
	return cfg, nil
}

// progress writes a status line to stderr unless --quiet is set.
func progress(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, "  "+format+"\n", args...)
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
