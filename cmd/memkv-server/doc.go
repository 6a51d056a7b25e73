// Package main provides the entry point for memkv-server.
//
// memkv-server is an in-memory key-value store that speaks a subset of
// the Redis serialization protocol (PING, ECHO, GET, SET with expiry,
// COMMAND, INFO, QUIT). An optional HTTP listener exposes Prometheus
// metrics and health probes.
//
// Usage:
//
//	memkv-server [flags]
//	memkv-server --config /etc/memkv/memkv.yaml --addr 0.0.0.0:6379
//	memkv-server --tls-cert server.crt --tls-key server.key
//
// Settings are layered: built-in defaults, the YAML file, MEMKV_*
// environment variables, then flags.
package main
