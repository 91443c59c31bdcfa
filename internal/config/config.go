// Package config loads the server configuration from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API and WebSocket.
	Listen string `yaml:"listen"`

	// DataDir holds the SQLite database file.
	DataDir string `yaml:"data_dir"`

	// StaticDir is served at the root path for the frontend.
	StaticDir string `yaml:"static_dir"`

	// DefaultSyncIntervalMin is used for feeds that do not specify their
	// own sync interval.
	DefaultSyncIntervalMin int `yaml:"default_sync_interval_min"`

	// FetchTimeoutSec bounds a single feed document download.
	FetchTimeoutSec int `yaml:"fetch_timeout_sec"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Listen:                 ":8099",
		DataDir:                "/data",
		StaticDir:              "./static",
		DefaultSyncIntervalMin: 15,
		FetchTimeoutSec:        30,
	}
}

// Load reads the YAML config at path, applying defaults for absent fields.
// A missing file yields the defaults without error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.DefaultSyncIntervalMin <= 0 {
		cfg.DefaultSyncIntervalMin = 15
	}
	if cfg.FetchTimeoutSec <= 0 {
		cfg.FetchTimeoutSec = 30
	}

	return cfg, nil
}
