package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/acumon/internal/applog"
	"github.com/theirongolddev/acumon/internal/scraper"

	"github.com/spf13/cobra"
)

// scrapeTimeout bounds a one-shot scrape from the CLI.
const scrapeTimeout = 3 * time.Minute

var errNoCredentials = errors.New("scraper credentials missing: run `acumon setup` or set DEVIN_USERNAME and DEVIN_PASSWORD")

var flagShowBrowser bool

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape the Devin account page once and store the result",
	RunE:  runScrape,
}

func init() {
	scrapeCmd.Flags().BoolVar(&flagShowBrowser, "show-browser", false, "Run Chrome with a visible window")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Scraper.Username == "" || cfg.Scraper.Password == "" {
		return errNoCredentials
	}
	if flagShowBrowser {
		cfg.Scraper.Headless = false
	}

	log := applog.Console(os.Stderr, cfg.Log.Level)

	svc, cleanup, err := openBackend(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()
	svc.WithScraper(scraper.New(cfg.Scraper, log))

	progress("Logging in to %s...", cfg.Scraper.URL)

	ctx, cancel := context.WithTimeout(cmd.Context(), scrapeTimeout)
	defer cancel()

	if err := svc.ScrapeOnce(ctx); err != nil {
		return fmt.Errorf("scrape: %w", err)
	}

	fmt.Printf("  Stored snapshot in %s\n", cfg.DBPath())
	return nil
}
