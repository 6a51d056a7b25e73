// Package metric provides Prometheus metrics for memkv.
//
//   - prometheus.go: registry, command/connection instruments and HTTP handler
//   - collector.go: keyspace collector reading live storage statistics
//
// Metrics are exposed at /metrics in Prometheus text format.
package metric
