package tui

import (
	"testing"

	"github.com/theirongolddev/acumon/internal/config"
)

func TestSetupValuesApply(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Scraper.Username = "old@example.com"
	cfg.Scraper.Password = "old-secret"

	v := SetupValuesFrom(cfg)
	v.BaseURL = " https://credits.example.com/ "
	v.IntervalSec = "60"
	v.Theme = "tokyo-night"
	v.Username = ""
	v.Password = ""
	v.MQTT = true

	if err := v.Apply(&cfg); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if cfg.API.BaseURL != "https://credits.example.com" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.Refresh.IntervalSec != 60 {
		t.Errorf("IntervalSec = %d, want 60", cfg.Refresh.IntervalSec)
	}
	if cfg.Display.Theme != "tokyo-night" {
		t.Errorf("Theme = %q", cfg.Display.Theme)
	}
	if cfg.Scraper.Username != "old@example.com" || cfg.Scraper.Password != "old-secret" {
		t.Errorf("blank credentials should keep stored ones, got %q/%q", cfg.Scraper.Username, cfg.Scraper.Password)
	}
	if !cfg.MQTT.Enabled {
		t.Error("MQTT should be enabled")
	}
}

func TestSetupValuesApply_Invalid(t *testing.T) {
	cases := []SetupValues{
		{BaseURL: "", IntervalSec: "300"},
		{BaseURL: "localhost:5000", IntervalSec: "300"},
		{BaseURL: "ftp://example.com", IntervalSec: "300"},
		{BaseURL: "http://example.com", IntervalSec: "0"},
		{BaseURL: "http://example.com", IntervalSec: "soon"},
	}
	for _, v := range cases {
		cfg := config.DefaultConfig()
		if err := v.Apply(&cfg); err == nil {
			t.Errorf("Apply(%+v) succeeded, want error", v)
		}
		if cfg.API.BaseURL != config.DefaultConfig().API.BaseURL {
			t.Errorf("failed Apply modified config: %q", cfg.API.BaseURL)
		}
	}
}

func TestNewSetupFormBuilds(t *testing.T) {
	v := SetupValuesFrom(config.DefaultConfig())
	if f := NewSetupForm(&v); f == nil {
		t.Fatal("NewSetupForm returned nil")
	}
}
