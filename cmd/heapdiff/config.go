// ABOUTME: Optional TOML config file with defaults for the CLI
// ABOUTME: Flags override config values, config values override built-ins

package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

var (
	configPath string
	noColor    bool
)

// cliConfig holds the tunable defaults. Zero values mean "use built-in".
type cliConfig struct {
	Sort     string `toml:"sort"`      // default sort column for diff output
	Rows     int    `toml:"rows"`      // max rows printed
	MaxPaths int    `toml:"max_paths"` // paths-to-roots cap
}

func defaultConfig() cliConfig {
	return cliConfig{Sort: "delta-retained", Rows: 50, MaxPaths: 5}
}

// loadConfig reads --config, or ~/.config/heapdiff.toml when unset. A
// missing default file is not an error.
func loadConfig() (cliConfig, error) {
	cfg := defaultConfig()

	path := configPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(home, ".config", "heapdiff.toml")
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Rows <= 0 {
		cfg.Rows = defaultConfig().Rows
	}
	if cfg.MaxPaths <= 0 {
		cfg.MaxPaths = defaultConfig().MaxPaths
	}
	if cfg.Sort == "" {
		cfg.Sort = defaultConfig().Sort
	}
	return cfg, nil
}
