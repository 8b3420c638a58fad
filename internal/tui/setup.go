package tui

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/theirongolddev/acumon/internal/config"
	"github.com/theirongolddev/acumon/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues holds the answers of the setup form.
type SetupValues struct {
	BaseURL     string
	IntervalSec string
	Theme       string

	Username string
	Password string

	MQTT   bool
	Broker string
}

// SetupValuesFrom pre-fills the form from cfg.
func SetupValuesFrom(cfg config.Config) SetupValues {
	return SetupValues{
		BaseURL:     cfg.API.BaseURL,
		IntervalSec: strconv.Itoa(cfg.Refresh.IntervalSec),
		Theme:       cfg.Display.Theme,
		Username:    cfg.Scraper.Username,
		Password:    cfg.Scraper.Password,
		MQTT:        cfg.MQTT.Enabled,
		Broker:      cfg.MQTT.Broker,
	}
}

// Apply copies the answers into cfg. Blank credentials keep the stored ones.
func (v SetupValues) Apply(cfg *config.Config) error {
	if err := validateBaseURL(v.BaseURL); err != nil {
		return err
	}
	secs, err := parseInterval(v.IntervalSec)
	if err != nil {
		return err
	}

	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(v.BaseURL), "/")
	cfg.Refresh.IntervalSec = secs
	if v.Theme != "" {
		cfg.Display.Theme = v.Theme
	}
	if u := strings.TrimSpace(v.Username); u != "" {
		cfg.Scraper.Username = u
	}
	if v.Password != "" {
		cfg.Scraper.Password = v.Password
	}
	cfg.MQTT.Enabled = v.MQTT
	if b := strings.TrimSpace(v.Broker); b != "" {
		cfg.MQTT.Broker = b
	}
	return nil
}

// NewSetupForm builds the setup wizard bound to v.
func NewSetupForm(v *SetupValues) *huh.Form {
	themeOpts := huh.NewOptions(theme.Names()...)

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to acumon").
				Description("Point the dashboard at a credit backend.\nRun `acumon setup` anytime to reconfigure."),
			huh.NewInput().
				Title("Backend URL").
				Description("Serves /api/latest-credit-data and /api/usage-history").
				Placeholder("http://localhost:5000").
				Value(&v.BaseURL).
				Validate(validateBaseURL),
			huh.NewInput().
				Title("Refresh interval (seconds)").
				Value(&v.IntervalSec).
				Validate(func(s string) error {
					_, err := parseInterval(s)
					return err
				}),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&v.Theme),
		),
		huh.NewGroup(
			huh.NewNote().
				Title("Scraper login").
				Description("Used by `acumon serve` and `acumon scrape`.\nLeave blank to keep the stored values."),
			huh.NewInput().
				Title("Username").
				Value(&v.Username),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&v.Password),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Publish snapshots over MQTT?").
				Value(&v.MQTT),
			huh.NewInput().
				Title("MQTT broker").
				Placeholder("tcp://localhost:1883").
				Value(&v.Broker),
		),
	).WithTheme(huh.ThemeDracula())
}

func validateBaseURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("backend URL is required")
	}
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("URL must start with http:// or https://")
	}
	if u.Host == "" {
		return errors.New("URL has no host")
	}
	return nil
}

func parseInterval(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, errors.New("interval must be a whole number of seconds, at least 1")
	}
	return n, nil
}
