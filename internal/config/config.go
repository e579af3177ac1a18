// Package config loads server settings from an optional TOML file with
// flag overrides applied by the caller.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration decodes TOML strings like "2s" or "500ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Config is the full server configuration.
type Config struct {
	// Port is the TCP listen port.
	Port int `toml:"port"`
	// DataDir holds users.json, the matches directory and the history index.
	DataDir string `toml:"data_dir"`
	// MatchmakingInterval is the pairing cadence.
	MatchmakingInterval Duration `toml:"matchmaking_interval"`
}

// Default returns the built-in settings: port 8888, data in the working
// directory, 2 second matchmaking ticks.
func Default() *Config {
	return &Config{
		Port:                8888,
		DataDir:             ".",
		MatchmakingInterval: Duration(2 * time.Second),
	}
}

// Load reads the TOML file at path over the defaults. An empty path returns
// the defaults unchanged; a missing file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("config: invalid port %d", cfg.Port)
	}
	if cfg.MatchmakingInterval <= 0 {
		return nil, fmt.Errorf("config: matchmaking_interval must be positive")
	}
	return cfg, nil
}

// UsersPath returns the account file location.
func (c *Config) UsersPath() string {
	return filepath.Join(c.DataDir, "users.json")
}

// MatchesDir returns the completed-match directory.
func (c *Config) MatchesDir() string {
	return filepath.Join(c.DataDir, "matches")
}

// IndexDir returns the history index database directory.
func (c *Config) IndexDir() string {
	return filepath.Join(c.DataDir, "index")
}

// Interval returns the matchmaking cadence as a time.Duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.MatchmakingInterval)
}
