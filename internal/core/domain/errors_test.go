package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name:     "error without details",
			err:      NewDomainError("MK-TEST-1000", "test message"),
			expected: "[MK-TEST-1000] test message",
		},
		{
			name:     "error with details",
			err:      NewDomainError("MK-TEST-1001", "test message").WithDetails("extra info"),
			expected: "[MK-TEST-1001] test message: extra info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDomainError_ReplyText(t *testing.T) {
	tests := []struct {
		name string
		err  *DomainError
		want string
	}{
		{
			name: "protocol error with details",
			err:  ErrProtocol.WithDetails("expected '$', got '+'"),
			want: "ERR Protocol error: expected '$', got '+'",
		},
		{
			name: "plain error",
			err:  ErrRateLimited,
			want: "ERR rate limit exceeded",
		},
		{
			name: "bare reply without prefix",
			err:  ErrNoCommands,
			want: "Error processing message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.ReplyText(); got != tt.want {
				t.Errorf("ReplyText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDomainError_Is(t *testing.T) {
	err1 := NewDomainError("MK-TEST-1000", "message 1")
	err2 := NewDomainError("MK-TEST-1000", "message 2")
	err3 := NewDomainError("MK-TEST-1001", "message 1")

	if !errors.Is(err1, err2) {
		t.Error("errors.Is should return true for same error code")
	}
	if errors.Is(err1, err3) {
		t.Error("errors.Is should return false for different error code")
	}
	if errors.Is(err1, fmt.Errorf("some error")) {
		t.Error("errors.Is should return false for non-DomainError")
	}

	// Protocol and limit errors share a message but not a code.
	if errors.Is(ErrProtocolLimit, ErrProtocol) {
		t.Error("ErrProtocolLimit should not match ErrProtocol")
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying cause")
	err := NewDomainError("MK-TEST-1000", "wrapper").WithCause(cause)

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	errNoCause := NewDomainError("MK-TEST-1000", "no cause")
	if errors.Unwrap(errNoCause) != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestDomainError_WithDetails(t *testing.T) {
	original := NewDomainError("MK-TEST-1000", "original message")
	withDetails := original.WithDetailsf("line %d", 3)

	if original.Details != "" {
		t.Error("WithDetails should not modify original error")
	}
	if withDetails.Details != "line 3" {
		t.Errorf("Details = %q, want %q", withDetails.Details, "line 3")
	}
	if withDetails.Code != original.Code || withDetails.Prefix != original.Prefix {
		t.Errorf("code/prefix not preserved: %+v", withDetails)
	}
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"domain error", ErrMaxClients, "MK-CONN-5030"},
		{"wrapped domain error", fmt.Errorf("wrapped: %w", ErrProtocol), "MK-PROT-4000"},
		{"regular error", fmt.Errorf("regular error"), ""},
		{"nil error", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetErrorCode(tt.err); got != tt.expected {
				t.Errorf("GetErrorCode() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestErrorChaining(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := ErrProtocol.
		WithDetails("invalid bulk length").
		WithCause(cause)

	if err.Code != "MK-PROT-4000" {
		t.Errorf("Code = %q, want %q", err.Code, "MK-PROT-4000")
	}
	if err.Cause != cause {
		t.Error("Cause should be preserved")
	}
	if !errors.Is(err, ErrProtocol) {
		t.Error("errors.Is should work after chaining")
	}
}
