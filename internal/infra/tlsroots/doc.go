// Package tlsroots provides TLS material for the RESP listener and its
// clients.
//
//   - roots.go: trusted CA pools for clients
//   - keypair.go: server key pair with reload on file change
package tlsroots
