package config

import (
	"fmt"

	"github.com/yndnr/memkv-go/internal/infra/confloader"
)

// EnvPrefix is the environment variable prefix for configuration keys.
const EnvPrefix = "MEMKV_"

// Load builds the configuration from defaults, the optional YAML file at
// path, MEMKV_ environment variables and flag overrides (keyed by
// configuration key), then verifies it.
func Load(path string, overrides map[string]any) (*ServerConfig, error) {
	cfg := Default()

	opts := []confloader.Option{
		confloader.WithEnvPrefix(EnvPrefix),
		confloader.WithEnvKeys(Keys()),
	}
	if path != "" {
		opts = append(opts, confloader.WithConfigFile(path))
	}
	loader := confloader.NewLoader(opts...)

	if err := loader.LoadSources(); err != nil {
		return nil, err
	}
	if len(overrides) > 0 {
		if err := loader.LoadMap(overrides); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}
	if err := loader.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
