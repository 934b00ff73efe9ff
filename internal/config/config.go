// Package config loads finproj settings, default assumptions and scenario files.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all finproj configuration.
type Config struct {
	General  GeneralConfig `toml:"general"`
	Defaults Scenario      `toml:"defaults"`
	Export   ExportConfig  `toml:"export"`
	Server   ServerConfig  `toml:"server"`
	Log      LogConfig     `toml:"log"`
}

// GeneralConfig holds display preferences.
type GeneralConfig struct {
	Theme      string `toml:"theme"`
	TableEvery int    `toml:"table_every"` // print every Nth month in the CLI table
}

// ExportConfig holds one-shot export settings.
type ExportConfig struct {
	Format string `toml:"format"`
	Dir    string `toml:"dir,omitempty"`
}

// ServerConfig controls the HTTP service.
type ServerConfig struct {
	Addr           string `toml:"addr"             env:"FINPROJ_ADDR"`
	MaxMonths      int    `toml:"max_months"       env:"FINPROJ_MAX_MONTHS"`
	ReadTimeoutSec int    `toml:"read_timeout_sec" env:"FINPROJ_READ_TIMEOUT_SEC"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `toml:"level"  env:"FINPROJ_LOG_LEVEL"`
	Format string `toml:"format" env:"FINPROJ_LOG_FORMAT"`
}

// DefaultConfig returns the default configuration: 50 users, 60 months,
// 8% growth and 2% churn.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Theme:      "flexoki-dark",
			TableEvery: 1,
		},
		Defaults: DefaultScenario(),
		Export: ExportConfig{
			Format: "csv",
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:8787",
			MaxMonths:      1200,
			ReadTimeoutSec: 10,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

var pathOverride string

// SetPath points Load, Save and Exists at an explicit file. An empty path
// restores the XDG default.
func SetPath(p string) {
	pathOverride = p
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "finproj")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "finproj")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	if pathOverride != "" {
		return pathOverride
	}
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	path := ConfigPath()
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
