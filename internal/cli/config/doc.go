// Package config holds memkv-cli defaults.
//
// Defaults come from ~/.memkv/cli.yaml and MEMKV_CLI_* environment
// variables; command-line flags override both.
package config
