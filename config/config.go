package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"stablefun/native/stable"
)

// Config is the top-level TOML configuration for the stabled service.
type Config struct {
	ListenAddress string        `toml:"ListenAddress"`
	DataDir       string        `toml:"DataDir"`
	Environment   string        `toml:"Environment"`
	LogLevel      string        `toml:"LogLevel"`
	Stable        stable.Config `toml:"stable"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ListenAddress: ":8645",
		DataDir:       "./stabled-data",
		Environment:   "dev",
		LogLevel:      "info",
		Stable:        stable.Config{}.Normalise(),
	}
}

// Load reads the TOML file at path, applying defaults for unset fields. A
// missing path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg.Normalise(), nil
}

// Normalise trims and defaults the top-level fields and the stable block.
func (cfg Config) Normalise() Config {
	defaults := Default()
	cfg.ListenAddress = strings.TrimSpace(cfg.ListenAddress)
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = defaults.ListenAddress
	}
	cfg.DataDir = strings.TrimSpace(cfg.DataDir)
	if cfg.DataDir == "" {
		cfg.DataDir = defaults.DataDir
	}
	cfg.Environment = strings.TrimSpace(cfg.Environment)
	if cfg.Environment == "" {
		cfg.Environment = defaults.Environment
	}
	cfg.LogLevel = strings.TrimSpace(cfg.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
	cfg.Stable = cfg.Stable.Normalise()
	return cfg
}
