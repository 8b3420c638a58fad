// Package scraper logs in to the account page with headless Chrome and reads
// the credit usage and limit.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"github.com/theirongolddev/acumon/internal/config"
	"github.com/theirongolddev/acumon/internal/model"
)

// ErrCredentials is returned when no login is configured.
var ErrCredentials = errors.New("scraper username and password are required")

// DefaultTimeout bounds one scrape, login included.
const DefaultTimeout = 2 * time.Minute

// TimestampLayout matches what the backend has always stored: local time
// without a zone.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// Scraper reads credit data from the account page.
type Scraper struct {
	cfg     config.ScraperConfig
	timeout time.Duration
	log     zerolog.Logger
	now     func() time.Time
}

// New returns a scraper for cfg.
func New(cfg config.ScraperConfig, log zerolog.Logger) *Scraper {
	return &Scraper{
		cfg:     cfg,
		timeout: DefaultTimeout,
		log:     log.With().Str("component", "scraper").Logger(),
		now:     time.Now,
	}
}

// Scrape runs one browser session and returns the snapshot it read.
func (s *Scraper) Scrape(ctx context.Context) (model.Snapshot, error) {
	if s.cfg.Username == "" || s.cfg.Password == "" {
		return model.Snapshot{}, ErrCredentials
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.cfg.Headless),
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, s.timeout)
	defer cancel()

	s.log.Info().Str("url", s.cfg.URL).Msg("logging in")
	if err := chromedp.Run(browserCtx,
		chromedp.Navigate(s.cfg.URL),
		chromedp.WaitVisible(s.cfg.EmailSelector, chromedp.ByQuery),
		chromedp.SendKeys(s.cfg.EmailSelector, s.cfg.Username, chromedp.ByQuery),
		chromedp.SendKeys(s.cfg.PasswordSelector, s.cfg.Password, chromedp.ByQuery),
		chromedp.Click(s.cfg.SubmitSelector, chromedp.ByQuery),
		waitURLContains("account"),
	); err != nil {
		return model.Snapshot{}, fmt.Errorf("login failed: %w", err)
	}

	var used, limit string
	if err := chromedp.Run(browserCtx,
		chromedp.WaitVisible(s.cfg.UsedSelector, chromedp.ByQuery),
		chromedp.Text(s.cfg.UsedSelector, &used, chromedp.ByQuery),
		chromedp.Text(s.cfg.LimitSelector, &limit, chromedp.ByQuery),
	); err != nil {
		return model.Snapshot{}, fmt.Errorf("extracting credit data: %w", err)
	}

	snap := snapshotFrom(used, limit, s.now())
	s.log.Info().Str("credit_used", snap.CreditUsed.Text()).Str("credit_limit", snap.CreditLimit.Text()).Msg("extracted credit data")
	return snap, nil
}

// waitURLContains polls the page location until it contains substr.
func waitURLContains(substr string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			var loc string
			if err := chromedp.Location(&loc).Do(ctx); err != nil {
				return err
			}
			if strings.Contains(loc, substr) {
				return nil
			}
			select {
			case <-ctx.Done():
				return fmt.Errorf("waiting for URL containing %q: %w", substr, ctx.Err())
			case <-ticker.C:
			}
		}
	})
}

func snapshotFrom(used, limit string, at time.Time) model.Snapshot {
	return model.Snapshot{
		CreditUsed:  model.StringField(strings.TrimSpace(used)),
		CreditLimit: model.StringField(strings.TrimSpace(limit)),
		Timestamp:   model.StringField(at.Format(TimestampLayout)),
	}
}
