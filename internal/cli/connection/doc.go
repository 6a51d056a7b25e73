// Package connection provides the memkv-cli transports.
//
//   - client.go: RESP client for the key-value listener
//   - http.go: HTTP client for the metrics and health listener
package connection
