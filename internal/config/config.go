package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the TOML file layer: account identity and surface preferences.
// Credentials and the session snapshot live in the state store; values set
// here act as defaults the CLI flags and store can override.
type Config struct {
	Username       string `koanf:"username"`
	DefaultQuality string `koanf:"default_quality"` // "mp3", "cd", "hires96", "hires192"

	// Log level for the rotating file log: "debug", "info", "warn", "error".
	LogLevel string `koanf:"log_level"`

	Web WebConfig `koanf:"web"`
	TUI TUIConfig `koanf:"tui"`
}

// WebConfig holds the websocket surface configuration.
type WebConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Interface string `koanf:"interface"` // host:port, default "0.0.0.0:9888"
}

// TUIConfig holds terminal surface configuration.
type TUIConfig struct {
	Disabled bool `koanf:"disabled"`
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	configPaths := getConfigPaths()

	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.Username = strings.TrimSpace(cfg.Username)
	if cfg.Web.Interface == "" {
		cfg.Web.Interface = "0.0.0.0:9888"
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/quartz/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "quartz", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}
