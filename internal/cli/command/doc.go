// Package command defines the memkv-cli commands using urfave/cli/v2.
//
//   - root.go: application, global flags, default-mode detection
//   - kv.go: ping, echo, get, set, info and exec over RESP
//   - shell.go: interactive mode
//   - system.go: status and health over HTTP
//   - config.go: show and save CLI defaults
//
// Without a subcommand the CLI sends its arguments as one raw command,
// or starts the interactive shell when there are none.
package command
