package config

import "time"

// CLIConfig is the configuration for memkv-cli.
type CLIConfig struct {
	// Server is the RESP address (host:port).
	Server string `koanf:"server" yaml:"server"`

	// HTTP is the metrics and health address used by status and health.
	HTTP string `koanf:"http" yaml:"http"`

	// Output is table, json or yaml.
	Output string `koanf:"output" yaml:"output"`

	Timeout time.Duration `koanf:"timeout" yaml:"timeout"`

	// TLS dials the RESP address with TLS. A non-empty CAFile implies it.
	TLS    bool   `koanf:"tls" yaml:"tls,omitempty"`
	CAFile string `koanf:"ca_file" yaml:"ca_file,omitempty"`
}

// Keys lists the configuration keys, for environment mapping.
func Keys() []string {
	return []string{"server", "http", "output", "timeout", "tls", "ca_file"}
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server:  "127.0.0.1:6379",
		HTTP:    "127.0.0.1:9121",
		Output:  "table",
		Timeout: 5 * time.Second,
	}
}
