package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/yndnr/scratchkeep/internal/infra/confloader"
)

// Load resolves the configuration. An empty path uses DefaultConfigPath
// if that file exists. Overrides are flat koanf keys and win over
// everything else.
func Load(path string, overrides map[string]any) (*Config, string, error) {
	if path == "" {
		if _, err := os.Stat(DefaultConfigPath()); err == nil {
			path = DefaultConfigPath()
		}
	} else if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, "", fmt.Errorf("config file %s: %w", path, err)
	}

	opts := []confloader.Option{confloader.WithDefaults(DefaultMap())}
	if path != "" {
		opts = append(opts, confloader.WithConfigFile(path))
	}
	if len(overrides) > 0 {
		opts = append(opts, confloader.WithOverrides(overrides))
	}

	cfg := Default()
	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, path, err
	}
	if err := Verify(cfg); err != nil {
		return nil, path, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, path, nil
}
