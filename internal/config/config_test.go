package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFrom_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Refresh.IntervalSec != 300 {
		t.Errorf("IntervalSec = %d, want 300", cfg.Refresh.IntervalSec)
	}
	if cfg.Interval() != 5*time.Minute {
		t.Errorf("Interval() = %v, want 5m", cfg.Interval())
	}
	if cfg.Timeout() != 30*time.Second {
		t.Errorf("Timeout() = %v, want 30s", cfg.Timeout())
	}
	if cfg.ScrapeInterval() != 24*time.Hour {
		t.Errorf("ScrapeInterval() = %v, want 24h", cfg.ScrapeInterval())
	}
}

func TestLoadFrom_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[api]
base_url = "http://devin.local:8080"

[refresh]
interval_sec = 60
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.API.BaseURL != "http://devin.local:8080" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.LatestPath != "/api/latest-credit-data" {
		t.Errorf("LatestPath default lost: %q", cfg.API.LatestPath)
	}
	if cfg.Interval() != time.Minute {
		t.Errorf("Interval() = %v, want 1m", cfg.Interval())
	}
}

func TestLoadFrom_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[api\nbase_url ="), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	t.Setenv("ACUMON_BASE_URL", "http://env:1234")
	t.Setenv("DEVIN_USERNAME", "me@example.com")
	t.Setenv("DEVIN_PASSWORD", "hunter2")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.API.BaseURL != "http://env:1234" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.Scraper.Username != "me@example.com" || cfg.Scraper.Password != "hunter2" {
		t.Errorf("scraper credentials not applied: %+v", cfg.Scraper)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := DefaultConfig()
	cfg.MQTT.Enabled = true
	cfg.Display.Theme = "catppuccin-mocha"

	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config perm = %o, want 600", perm)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if !got.MQTT.Enabled || got.Display.Theme != "catppuccin-mocha" {
		t.Errorf("round trip lost values: %+v", got)
	}
}

func TestDerivedPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	cfg := DefaultConfig()
	if got := cfg.DBPath(); got != filepath.Join("/data", "acumon", "credit_data.db") {
		t.Errorf("DBPath() = %q", got)
	}
	cfg.Log.File = "/tmp/a.log"
	if got := cfg.LogPath(); got != "/tmp/a.log" {
		t.Errorf("LogPath() = %q", got)
	}
}
