// Package logger provides structured logging for memkv.
//
// It wraps log/slog:
//
//   - logger.go: handler setup, runtime level changes, package-level helpers
//   - context.go: context propagation of the logger and connection ID
//   - redact.go: masking of stored payloads and secret-looking attributes
package logger
