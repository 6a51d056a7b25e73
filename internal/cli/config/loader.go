package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/yndnr/memkv-go/internal/cli/output"
	"github.com/yndnr/memkv-go/internal/infra/confloader"
)

// EnvPrefix is the environment variable prefix for CLI defaults.
const EnvPrefix = "MEMKV_CLI_"

// DefaultConfigPath returns the default CLI config file path, or "" when
// the home directory is unknown.
func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".memkv", "cli.yaml")
}

// Load loads CLI configuration from path (DefaultConfigPath when empty)
// and the environment. A missing file yields the defaults.
func Load(path string) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	opts := []confloader.Option{
		confloader.WithEnvPrefix(EnvPrefix),
		confloader.WithEnvKeys(Keys()),
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			opts = append(opts, confloader.WithConfigFile(path))
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg := Default()
	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}
	if err := Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid cli configuration: %w", err)
	}
	return cfg, nil
}

// Verify validates the configuration.
func Verify(cfg *CLIConfig) error {
	if cfg.Server == "" {
		return errors.New("server is required")
	}
	if _, err := output.ParseFormat(cfg.Output); err != nil {
		return err
	}
	if cfg.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	return nil
}

// Save writes cfg to path (DefaultConfigPath when empty) with owner-only
// permissions.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}
	if path == "" {
		return errors.New("no config path: home directory unknown")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(struct {
		Server  string `yaml:"server"`
		HTTP    string `yaml:"http"`
		Output  string `yaml:"output"`
		Timeout string `yaml:"timeout"`
		TLS     bool   `yaml:"tls,omitempty"`
		CAFile  string `yaml:"ca_file,omitempty"`
	}{cfg.Server, cfg.HTTP, cfg.Output, cfg.Timeout.String(), cfg.TLS, cfg.CAFile})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
