// Package config loads the palletd configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds the daemon settings.
type Config struct {
	// gRPC listen address of the runtime service.
	ListenAddress string `toml:"ListenAddress"`
	// HTTP address serving /metrics and /healthz. Empty disables it.
	MetricsAddress string `toml:"MetricsAddress"`
	LogLevel       string `toml:"LogLevel"`
	// Rotated log file; stderr when empty.
	LogFile string `toml:"LogFile"`
	// YAML pallet genesis; empty starts from empty state.
	GenesisFile string `toml:"GenesisFile"`
	// Chain id reported before genesis and kept when the genesis
	// document names none.
	ChainID string `toml:"ChainID"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		ListenAddress:  ":26658",
		MetricsAddress: ":9464",
		LogLevel:       "info",
		ChainID:        "pallets-local",
	}
}

// Load reads path. A missing file is created with defaults. Keys the
// Config does not know are an error.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if strings.TrimSpace(cfg.ChainID) == "" {
		cfg.ChainID = "pallets-local"
	}
	return cfg, nil
}

// Save writes cfg to path as TOML, creating parent directories.
func Save(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		_ = f.Close()
		return err
	}
	// Close reports deferred write errors.
	return f.Close()
}
