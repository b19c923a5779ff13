// Package config loads fincast settings from config.toml and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"
)

// Config holds all fincast configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Chart      ChartConfig      `toml:"chart"`
	Appearance AppearanceConfig `toml:"appearance"`
	Serve      ServeConfig      `toml:"serve"`
}

// GeneralConfig holds the defaults used before anything has been saved.
type GeneralConfig struct {
	DefaultYear           int    `toml:"default_year,omitempty" env:"FINCAST_YEAR"`
	DefaultInitialBalance string `toml:"default_initial_balance,omitempty" env:"FINCAST_INITIAL_BALANCE"`
	StorePath             string `toml:"store_path,omitempty" env:"FINCAST_STORE"`
}

// ChartConfig controls chart sampling and size.
type ChartConfig struct {
	Stride int `toml:"stride" env:"FINCAST_CHART_STRIDE"`
	Height int `toml:"height" env:"FINCAST_CHART_HEIGHT"`
}

// AppearanceConfig holds theme and amount formatting settings.
type AppearanceConfig struct {
	Theme    string `toml:"theme" env:"FINCAST_THEME"`
	Currency string `toml:"currency" env:"FINCAST_CURRENCY"`
}

// ServeConfig holds feed server settings.
type ServeConfig struct {
	Addr            string `toml:"addr" env:"FINCAST_SERVE_ADDR"`
	PollIntervalSec int    `toml:"poll_interval_sec" env:"FINCAST_POLL_INTERVAL_SEC"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Chart: ChartConfig{
			Stride: 2,
			Height: 12,
		},
		Appearance: AppearanceConfig{
			Theme:    "flexoki-dark",
			Currency: "€",
		},
		Serve: ServeConfig{
			Addr:            "127.0.0.1:8787",
			PollIntervalSec: 2,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fincast")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "fincast")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "fincast")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "fincast")
}

// Load reads the config file, returning defaults if it doesn't exist, then
// applies FINCAST_* environment overrides.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return cfg, fmt.Errorf("reading config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing env: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing config: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing config file: %w", err)
	}
	return nil
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// StorePath returns the configured database path or the default under DataDir.
func (c Config) StorePath() string {
	if c.General.StorePath != "" {
		return c.General.StorePath
	}
	return filepath.Join(DataDir(), "fincast.db")
}

// Year returns the configured default year, or the year of now.
func (c Config) Year(now time.Time) int {
	if c.General.DefaultYear != 0 {
		return c.General.DefaultYear
	}
	return now.Year()
}

// InitialBalance parses the configured default balance. An empty value is 0.
func (c Config) InitialBalance() (decimal.Decimal, error) {
	if c.General.DefaultInitialBalance == "" {
		return decimal.Zero, nil
	}
	b, err := decimal.NewFromString(c.General.DefaultInitialBalance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("default_initial_balance %q: %w", c.General.DefaultInitialBalance, err)
	}
	return b, nil
}

// PollInterval is the feed server's store polling period, at least 100ms.
func (c Config) PollInterval() time.Duration {
	d := time.Duration(c.Serve.PollIntervalSec) * time.Second
	if d < 100*time.Millisecond {
		return 100 * time.Millisecond
	}
	return d
}
