package repl

import (
	"reflect"
	"testing"
)

func TestCompleter_Complete(t *testing.T) {
	c := NewCompleter()

	tests := []struct {
		prefix string
		want   []string
	}{
		{"PI", []string{"PING"}},
		{"ge", []string{"GET"}},
		{"COMMAND", []string{"COMMAND", "COMMAND DOCS"}},
		{"zzz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			if got := c.Complete(tt.prefix); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Complete(%q) = %v, want %v", tt.prefix, got, tt.want)
			}
		})
	}
}

func TestCompleter_EmptyPrefix(t *testing.T) {
	c := NewCompleter()
	if got := c.Complete(""); len(got) != len(c.Commands()) {
		t.Errorf("Complete(\"\") = %d entries, want %d", len(got), len(c.Commands()))
	}
}
