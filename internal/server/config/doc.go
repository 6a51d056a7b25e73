// Package config provides server configuration for memkv.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Validation of addresses, limits and log settings
//   - sanitize.go: Copy suitable for logging
//   - load.go: Loading through internal/infra/confloader
//
// Sources, lowest priority first: defaults, YAML file, MEMKV_ environment
// variables, command-line flags.
package config
