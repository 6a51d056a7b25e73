// Package httpserver provides the operational HTTP endpoint for memkv.
//
// It serves Prometheus metrics, liveness and readiness probes, and a JSON
// status summary. Client traffic goes through redisserver; nothing here
// reads or writes keys.
package httpserver
