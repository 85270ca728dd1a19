// Package config handles TOML-based configuration loading and validation.
// TOML is parsed as data only, so a config file can never execute anything.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration.
type Config struct {
	MPVPath      string   `toml:"mpv_path"`
	Quality      string   `toml:"quality"`
	SheetURL     string   `toml:"sheet_url"`
	CatalogFile  string   `toml:"catalog_file"`
	SubsLanguage string   `toml:"subs_language"`
	History      bool     `toml:"history"`
	Debug        bool     `toml:"debug"`
	Controls     Controls `toml:"controls"`
}

// Controls holds the player control-surface tuning. Distances are in pixels;
// the terminal front-end converts cells to pixels with CellWidth/CellHeight.
type Controls struct {
	TapWindowMS      int     `toml:"tap_window_ms"`
	HideDelayMS      int     `toml:"hide_delay_ms"`
	FeedbackMS       int     `toml:"feedback_ms"`
	TimeUpdateMS     int     `toml:"time_update_ms"`
	ZoneFraction     float64 `toml:"zone_fraction"`
	ScrubDeadZone    float64 `toml:"scrub_dead_zone"`
	ScrubPxPerSecond float64 `toml:"scrub_px_per_second"`
	CellWidth        int     `toml:"cell_width"`
	CellHeight       int     `toml:"cell_height"`
	MouseScrub       bool    `toml:"mouse_scrub"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		MPVPath:      "mpv",
		Quality:      "1080",
		SheetURL:     "",
		CatalogFile:  "",
		SubsLanguage: "english",
		History:      true,
		Debug:        false,
		Controls: Controls{
			TapWindowMS:      300,
			HideDelayMS:      3500,
			FeedbackMS:       600,
			TimeUpdateMS:     250,
			ZoneFraction:     0.30,
			ScrubDeadZone:    40,
			ScrubPxPerSecond: 8,
			CellWidth:        8,
			CellHeight:       16,
			MouseScrub:       true,
		},
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cinebox"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "cinebox"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file and merges with defaults.
// If the config file doesn't exist, defaults are returned.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	validQualities := map[string]bool{
		"360": true, "480": true, "720": true, "1080": true, "auto": true,
	}
	if !validQualities[strings.ToLower(c.Quality)] {
		return fmt.Errorf("unsupported quality %q (valid: 360, 480, 720, 1080, auto)", c.Quality)
	}

	if c.MPVPath == "" {
		return fmt.Errorf("mpv path cannot be empty")
	}

	if c.SheetURL != "" && !strings.HasPrefix(c.SheetURL, "https://") {
		return fmt.Errorf("sheet URL must use https, got %q", c.SheetURL)
	}

	return c.Controls.Validate()
}

// Validate checks the control-surface thresholds.
func (c Controls) Validate() error {
	if c.TapWindowMS < 100 || c.TapWindowMS > 1000 {
		return fmt.Errorf("tap_window_ms %d out of range (100-1000)", c.TapWindowMS)
	}
	if c.HideDelayMS < 1000 || c.HideDelayMS > 10000 {
		return fmt.Errorf("hide_delay_ms %d out of range (1000-10000)", c.HideDelayMS)
	}
	if c.FeedbackMS < 100 || c.FeedbackMS > 5000 {
		return fmt.Errorf("feedback_ms %d out of range (100-5000)", c.FeedbackMS)
	}
	if c.TimeUpdateMS < 50 || c.TimeUpdateMS > 2000 {
		return fmt.Errorf("time_update_ms %d out of range (50-2000)", c.TimeUpdateMS)
	}
	if c.ZoneFraction <= 0 || c.ZoneFraction >= 0.5 {
		return fmt.Errorf("zone_fraction %.2f must be between 0 and 0.5", c.ZoneFraction)
	}
	if c.ScrubDeadZone <= 0 {
		return fmt.Errorf("scrub_dead_zone must be positive")
	}
	if c.ScrubPxPerSecond <= 0 {
		return fmt.Errorf("scrub_px_per_second must be positive")
	}
	if c.CellWidth <= 0 || c.CellHeight <= 0 {
		return fmt.Errorf("cell size %dx%d must be positive", c.CellWidth, c.CellHeight)
	}
	return nil
}

// CatalogSource returns the configured catalog location, preferring a local file.
func (c *Config) CatalogSource() (string, error) {
	if c.CatalogFile != "" {
		return expandHome(c.CatalogFile)
	}
	if c.SheetURL != "" {
		return c.SheetURL, nil
	}
	return "", fmt.Errorf("no catalog configured (set catalog_file or sheet_url)")
}

// expandHome resolves ~ in a path.
func expandHome(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding home dir: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	return filepath.Abs(path)
}

// dataDir returns the XDG data directory for cinebox.
func dataDir() (string, error) {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "cinebox"), nil
}

// HistoryPath returns the path to the history database.
func HistoryPath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// LogPath returns the path of the log file used while the player owns the terminal.
func LogPath() (string, error) {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "cinebox", "cinebox.log"), nil
}
