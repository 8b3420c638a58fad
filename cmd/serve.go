package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/acumon/internal/applog"
	"github.com/theirongolddev/acumon/internal/config"
	"github.com/theirongolddev/acumon/internal/publisher"
	"github.com/theirongolddev/acumon/internal/scraper"
	"github.com/theirongolddev/acumon/internal/server"
	"github.com/theirongolddev/acumon/internal/store"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	flagServeAddr    string
	flagScrapeHours  int
	flagNoScrape     bool
	flagEventsBuffer int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the credit backend and its scrape loop",
	Long: "Serve /api/latest-credit-data, /api/credit-data and /api/usage-history from the local store,\n" +
		"scraping the Devin account page on a schedule when credentials are configured.",
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "Listen address (default from config)")
	serveCmd.Flags().IntVar(&flagScrapeHours, "scrape-interval", 0, "Hours between scrapes (default from config)")
	serveCmd.Flags().BoolVar(&flagNoScrape, "no-scrape", false, "Serve stored records only")
	serveCmd.Flags().IntVar(&flagEventsBuffer, "events-buffer", 200, "Number of recent events kept in memory")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagServeAddr != "" {
		cfg.Server.Addr = flagServeAddr
	}
	if flagScrapeHours > 0 {
		cfg.Server.ScrapeIntervalHours = flagScrapeHours
	}

	log := applog.Console(os.Stderr, cfg.Log.Level)

	svc, cleanup, err := openBackend(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	if flagNoScrape {
		log.Info().Msg("scraping disabled")
	} else if cfg.Scraper.Username == "" || cfg.Scraper.Password == "" {
		log.Warn().Msg("no scraper credentials configured, serving stored records only")
	} else {
		svc.WithScraper(scraper.New(cfg.Scraper, log))
	}

	return svc.Run(cmd.Context())
}

// openBackend opens the store and publisher and returns a service over them.
// The scrape interval comes from cfg; callers attach a scraper themselves.
func openBackend(cfg config.Config, log zerolog.Logger) (*server.Service, func(), error) {
	st, err := store.Open(cfg.DBPath())
	if err != nil {
		return nil, nil, err
	}
	log.Debug().Str("path", cfg.DBPath()).Msg("store opened")

	svc := server.New(server.Config{
		Addr:           cfg.Server.Addr,
		ScrapeInterval: cfg.ScrapeInterval(),
		EventsBuffer:   flagEventsBuffer,
	}, st, log)

	cleanup := func() { _ = st.Close() }

	if cfg.MQTT.Enabled {
		pub, err := publisher.New(cfg.MQTT)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("mqtt: %w", err)
		}
		svc.WithPublisher(pub)
		log.Info().Str("topic", pub.Topic()).Msg("publishing snapshots")
		cleanup = func() {
			pub.Close()
			_ = st.Close()
		}
	}

	return svc, cleanup, nil
}
