// Package main provides the entry point for memkv-cli.
//
// memkv-cli talks to memkv-server over RESP for key-value commands and
// over HTTP for status and health. It runs a single command when given
// arguments and an interactive shell otherwise:
//
//	memkv-cli set --ex 60 session:42 active
//	memkv-cli -o json info keyspace
//	memkv-cli --server 10.0.0.5:6379
//	memkv-cli --server db.internal:6380 --ca-file ca.pem ping
package main
