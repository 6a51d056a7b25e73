// Package domain defines the core domain models for memkv.
//
// Domain models are pure values without any IO dependencies or
// framework coupling. This package contains:
//
//   - Command: a decoded client request (PING, ECHO, GET, SET, ...)
//   - Reply: the value a command produces, independent of wire encoding
//   - Errors: domain-specific error definitions with stable codes
package domain
