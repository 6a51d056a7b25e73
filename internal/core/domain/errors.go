// Package domain defines the core domain models for memkv.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain error with a structured error code.
//
// Code identifies the error for errors.Is comparison and logging
// (e.g. "MK-PROT-4000"). Prefix and Message form the text sent to
// clients in an error reply.
type DomainError struct {
	Code    string // Error code (e.g., "MK-PROT-4000")
	Prefix  string // Reply prefix (e.g., "ERR"); empty for bare replies
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// ReplyText returns the text carried by an error reply, without the
// leading '-' sigil.
func (e *DomainError) ReplyText() string {
	msg := e.Message
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Prefix == "" {
		return msg
	}
	return e.Prefix + " " + msg
}

// NewDomainError creates a new DomainError with the given code and message.
// The reply prefix defaults to "ERR".
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Prefix:  "ERR",
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Prefix:  e.Prefix,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithDetailsf is WithDetails with fmt.Sprintf formatting.
func (e *DomainError) WithDetailsf(format string, args ...any) *DomainError {
	return e.WithDetails(fmt.Sprintf(format, args...))
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Prefix:  e.Prefix,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Protocol Errors (PROT)
// ============================================================================

var (
	// ErrProtocol indicates a framing violation in the request stream.
	// The offending connection is closed after the reply is sent.
	ErrProtocol = NewDomainError("MK-PROT-4000", "Protocol error")

	// ErrProtocolLimit indicates a frame exceeded a protocol size limit.
	ErrProtocolLimit = NewDomainError("MK-PROT-4130", "Protocol error")
)

// ============================================================================
// Command Errors (CMD)
// ============================================================================

var (
	// ErrUnknownCommand indicates the command name is not recognized.
	ErrUnknownCommand = NewDomainError("MK-CMD-4040", "unknown command")

	// ErrWrongArity indicates the command received the wrong number of arguments.
	ErrWrongArity = NewDomainError("MK-CMD-4000", "wrong number of arguments")

	// ErrNoCommands is replied when a batch of complete frames yielded no
	// runnable command. The reply carries no "ERR" prefix.
	ErrNoCommands = &DomainError{Code: "MK-CMD-4220", Message: "Error processing message"}
)

// ============================================================================
// Connection Errors (CONN)
// ============================================================================

var (
	// ErrRateLimited indicates the client exceeded its command rate.
	ErrRateLimited = NewDomainError("MK-CONN-4290", "rate limit exceeded")

	// ErrMaxClients indicates the server is at its connection limit.
	ErrMaxClients = NewDomainError("MK-CONN-5030", "max number of clients reached")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternal indicates an internal server error.
	ErrInternal = NewDomainError("MK-SYS-5000", "internal server error")
)
