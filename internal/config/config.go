package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cedi/meetingroom-display-epd/internal/canvas"
)

type DisplayConfig struct {
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	Palette         string `json:"palette"`
	Accent          string `json:"accent,omitempty"`
	StatusBarHeight int    `json:"status_bar_height"`
	EntryHeight     int    `json:"entry_height"`
}

// TextConfig holds the strings and time layouts shown on the panel.
// Time formats use Go reference-time layouts.
type TextConfig struct {
	TimeFormat        string `json:"time_format"`
	RefreshTimeFormat string `json:"refresh_time_format"`
	Until             string `json:"text_until"`
	Events            string `json:"text_events"`
	Past              string `json:"text_past"`
	Free              string `json:"text_free"`
	AllDay            string `json:"text_all_day"`
}

type DataConfig struct {
	File            string `json:"data_file,omitempty"`
	Endpoint        string `json:"endpoint,omitempty"`
	FetchTimeoutSec int    `json:"fetch_timeout_sec"`
	FetchAttempts   int    `json:"fetch_attempts"`
}

// DeviceConfig describes the battery the status bar reports on.
type DeviceConfig struct {
	MinBatteryMilliVolts int `json:"min_battery_mv"`
	MaxBatteryMilliVolts int `json:"max_battery_mv"`
	// At or below LowBatteryMilliVolts the calendar is replaced by a low
	// battery notice.
	LowBatteryMilliVolts int `json:"low_battery_mv"`
}

type Config struct {
	Display          DisplayConfig `json:"display"`
	Text             TextConfig    `json:"text"`
	Data             DataConfig    `json:"data"`
	Device           DeviceConfig  `json:"device"`
	Timezone         string        `json:"timezone"`
	SleepDurationMin int           `json:"sleep_duration_min"`
	Output           string        `json:"output"`
	LogFile          string        `json:"log_file,omitempty"`
	Debug            bool          `json:"debug,omitempty"`
}

func DefaultText() TextConfig {
	return TextConfig{
		TimeFormat:        "15:04",
		RefreshTimeFormat: "Mon 02 Jan 15:04",
		Until:             "until",
		Events:            "events",
		Past:              "past",
		Free:              "Free",
		AllDay:            "all day",
	}
}

func DefaultConfig() Config {
	return Config{
		Display: DisplayConfig{
			Width:           800,
			Height:          480,
			Palette:         "bw",
			StatusBarHeight: 25,
			EntryHeight:     48,
		},
		Text: DefaultText(),
		Data: DataConfig{
			File:            filepath.Join(ConfigDir(), "calendar.json"),
			FetchTimeoutSec: 10,
			FetchAttempts:   3,
		},
		Device: DeviceConfig{
			MinBatteryMilliVolts: 3000,
			MaxBatteryMilliVolts: 4200,
			LowBatteryMilliVolts: 3300,
		},
		Timezone:         "Local",
		SleepDurationMin: 30,
		Output:           "frame.png",
	}
}

func ConfigDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "epd-display")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

// Load reads the config from the default location, writing the defaults
// there on first run.
func Load() (Config, error) {
	path := ConfigPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if saveErr := Save(cfg); saveErr != nil {
			return cfg, saveErr
		}
		return cfg, nil
	}
	return LoadFrom(path)
}

// LoadFrom reads a config file, keeping defaults for missing keys.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports the first setting the renderer cannot work with.
func (c Config) Validate() error {
	d := c.Display
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("display size %dx%d is invalid", d.Width, d.Height)
	}
	if d.StatusBarHeight < 0 || d.StatusBarHeight >= d.Height {
		return fmt.Errorf("status_bar_height %d does not fit display height %d", d.StatusBarHeight, d.Height)
	}
	if d.EntryHeight <= 0 {
		return fmt.Errorf("entry_height must be positive, got %d", d.EntryHeight)
	}
	if _, err := c.Palette(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Device.MaxBatteryMilliVolts <= c.Device.MinBatteryMilliVolts {
		return fmt.Errorf("max_battery_mv %d must exceed min_battery_mv %d",
			c.Device.MaxBatteryMilliVolts, c.Device.MinBatteryMilliVolts)
	}
	return nil
}

func (c Config) Palette() (canvas.Palette, error) {
	return canvas.PaletteByName(c.Display.Palette, c.Display.Accent)
}

// Location resolves the configured timezone. Empty and "Local" mean the
// host's zone.
func (c Config) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}
	return loc, nil
}

func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Data.FetchTimeoutSec) * time.Second
}

func (c Config) SleepDuration() time.Duration {
	return time.Duration(c.SleepDurationMin) * time.Minute
}
