package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Display.Width != 800 || cfg.Display.Height != 480 {
		t.Errorf("expected 800x480, got %dx%d", cfg.Display.Width, cfg.Display.Height)
	}
	if cfg.Display.EntryHeight != 48 {
		t.Errorf("EntryHeight should be 48, got %d", cfg.Display.EntryHeight)
	}
	if cfg.Display.StatusBarHeight != 25 {
		t.Errorf("StatusBarHeight should be 25, got %d", cfg.Display.StatusBarHeight)
	}
	if cfg.Text.Until != "until" {
		t.Errorf("Text.Until should be 'until', got %s", cfg.Text.Until)
	}
	if cfg.Data.FetchAttempts != 3 {
		t.Errorf("FetchAttempts should be 3, got %d", cfg.Data.FetchAttempts)
	}
	if !strings.Contains(cfg.Data.File, "epd-display") {
		t.Errorf("data file should live in the config dir, got %s", cfg.Data.File)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_WritesDefaults(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SleepDurationMin != 30 {
		t.Errorf("expected default sleep duration, got %d", cfg.SleepDurationMin)
	}
	if _, err := os.Stat(filepath.Join(tmp, ".config", "epd-display", "config.json")); err != nil {
		t.Errorf("defaults should be written on first load: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := DefaultConfig()
	cfg.Display.Palette = "3c"
	cfg.Display.Accent = "red"
	cfg.Text.Until = "bis"
	cfg.Timezone = "Europe/Berlin"
	if err := SaveTo(path, cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Display.Palette != "3c" || loaded.Text.Until != "bis" {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
	loc, err := loaded.Location()
	if err != nil {
		t.Fatal(err)
	}
	if loc.String() != "Europe/Berlin" {
		t.Errorf("expected Europe/Berlin, got %s", loc)
	}
}

func TestLoadFrom_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	partial := map[string]any{"display": map[string]any{"width": 640, "height": 384, "entry_height": 40, "status_bar_height": 20}}
	data, _ := json.Marshal(partial)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Display.Width != 640 || cfg.Display.EntryHeight != 40 {
		t.Errorf("overrides not applied: %+v", cfg.Display)
	}
	if cfg.Text.TimeFormat != "15:04" {
		t.Errorf("missing keys should keep defaults, got %q", cfg.Text.TimeFormat)
	}
}

func TestLoadFrom_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte("{"), 0644)
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Display.Width = 0 }},
		{"status bar too tall", func(c *Config) { c.Display.StatusBarHeight = 480 }},
		{"zero entry height", func(c *Config) { c.Display.EntryHeight = 0 }},
		{"unknown palette", func(c *Config) { c.Display.Palette = "cmyk" }},
		{"bad accent", func(c *Config) { c.Display.Palette = "3c"; c.Display.Accent = "green" }},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }},
		{"battery range", func(c *Config) { c.Device.MaxBatteryMilliVolts = 1000 }},
	}
	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestDurations(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.FetchTimeout() != 10*time.Second {
		t.Errorf("unexpected fetch timeout %v", cfg.FetchTimeout())
	}
	if cfg.SleepDuration() != 30*time.Minute {
		t.Errorf("unexpected sleep duration %v", cfg.SleepDuration())
	}
}
