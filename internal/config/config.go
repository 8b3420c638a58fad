// Package config loads and saves the acumon TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all acumon configuration.
type Config struct {
	API     APIConfig     `toml:"api"`
	Refresh RefreshConfig `toml:"refresh"`
	Display DisplayConfig `toml:"display"`
	Log     LogConfig     `toml:"log"`
	Server  ServerConfig  `toml:"server"`
	Scraper ScraperConfig `toml:"scraper"`
	MQTT    MQTTConfig    `toml:"mqtt"`
}

// APIConfig points the dashboard at a backend.
type APIConfig struct {
	BaseURL     string `toml:"base_url"`
	LatestPath  string `toml:"latest_path"`
	HistoryPath string `toml:"history_path"`
	TimeoutSec  int    `toml:"timeout_sec"`
}

// RefreshConfig holds the polling cadence.
type RefreshConfig struct {
	IntervalSec int `toml:"interval_sec"`
}

// DisplayConfig holds theme and date rendering settings.
type DisplayConfig struct {
	Theme       string `toml:"theme"`
	DateLayout  string `toml:"date_layout,omitempty"`
	LabelLayout string `toml:"label_layout,omitempty"`
}

// LogConfig holds logging settings. An empty File means the platform default.
type LogConfig struct {
	File  string `toml:"file,omitempty"`
	Level string `toml:"level"`
}

// ServerConfig holds settings for the bundled backend.
type ServerConfig struct {
	Addr                string `toml:"addr"`
	DBPath              string `toml:"db_path,omitempty"`
	ScrapeIntervalHours int    `toml:"scrape_interval_hours"`
}

// ScraperConfig holds the headless-browser login details and page selectors.
type ScraperConfig struct {
	URL              string `toml:"url"`
	Username         string `toml:"username,omitempty"`
	Password         string `toml:"password,omitempty"`
	EmailSelector    string `toml:"email_selector"`
	PasswordSelector string `toml:"password_selector"`
	SubmitSelector   string `toml:"submit_selector"`
	UsedSelector     string `toml:"used_selector"`
	LimitSelector    string `toml:"limit_selector"`
	Headless         bool   `toml:"headless"`
}

// MQTTConfig holds the optional snapshot publisher settings.
type MQTTConfig struct {
	Enabled     bool   `toml:"enabled"`
	Broker      string `toml:"broker"`
	TopicPrefix string `toml:"topic_prefix"`
	Username    string `toml:"username,omitempty"`
	Password    string `toml:"password,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:     "http://localhost:5000",
			LatestPath:  "/api/latest-credit-data",
			HistoryPath: "/api/usage-history",
			TimeoutSec:  30,
		},
		Refresh: RefreshConfig{
			IntervalSec: 300,
		},
		Display: DisplayConfig{
			Theme: "flexoki-dark",
		},
		Log: LogConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Addr:                "127.0.0.1:5000",
			ScrapeIntervalHours: 24,
		},
		Scraper: ScraperConfig{
			URL:              "https://app.devin.ai/account",
			EmailSelector:    "#email",
			PasswordSelector: "#password",
			SubmitSelector:   `button[type="submit"]`,
			UsedSelector:     `div[class*="credit-usage"]`,
			LimitSelector:    `div[class*="credit-limit"]`,
			Headless:         true,
		},
		MQTT: MQTTConfig{
			Broker:      "tcp://localhost:1883",
			TopicPrefix: "acumon",
		},
	}
}

// Interval returns the refresh interval, never shorter than one second.
func (c Config) Interval() time.Duration {
	if c.Refresh.IntervalSec < 1 {
		return time.Second
	}
	return time.Duration(c.Refresh.IntervalSec) * time.Second
}

// Timeout returns the per-request timeout.
func (c Config) Timeout() time.Duration {
	if c.API.TimeoutSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.API.TimeoutSec) * time.Second
}

// ScrapeInterval returns the backend scrape cadence, or zero when disabled.
func (c Config) ScrapeInterval() time.Duration {
	if c.Server.ScrapeIntervalHours <= 0 {
		return 0
	}
	return time.Duration(c.Server.ScrapeIntervalHours) * time.Hour
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "acumon")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "acumon")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "acumon")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "acumon")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DBPath returns the backend database path, defaulting under DataDir.
func (c Config) DBPath() string {
	if c.Server.DBPath != "" {
		return c.Server.DBPath
	}
	return filepath.Join(DataDir(), "credit_data.db")
}

// LogPath returns the log file path, defaulting under DataDir.
func (c Config) LogPath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(DataDir(), "acumon.log")
}

// Load reads the config file at the default path.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config file at path, returning defaults if it doesn't
// exist. Environment overrides are applied last.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
	} else if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ACUMON_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("DEVIN_URL"); v != "" {
		cfg.Scraper.URL = v
	}
	if v := os.Getenv("DEVIN_USERNAME"); v != "" {
		cfg.Scraper.Username = v
	}
	if v := os.Getenv("DEVIN_PASSWORD"); v != "" {
		cfg.Scraper.Password = v
	}
	if v := os.Getenv("ACUMON_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Password = v
	}
}

// Save writes the config to the default path.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path. The file may hold credentials, so it is
// created owner-only.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
