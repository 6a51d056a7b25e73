package repl

import (
	"sort"
	"strings"
)

// Completer provides command completion for the REPL.
type Completer struct {
	commands []string
}

// NewCompleter creates a new Completer.
func NewCompleter() *Completer {
	cmds := []string{
		"PING", "ECHO", "GET", "SET", "COMMAND", "COMMAND DOCS", "INFO", "QUIT",
		"help", "exit",
	}
	sort.Strings(cmds)
	return &Completer{commands: cmds}
}

// Commands returns the known commands.
func (c *Completer) Commands() []string {
	return c.commands
}

// Complete returns completion suggestions for the given prefix. Matching
// ignores case.
func (c *Completer) Complete(prefix string) []string {
	var suggestions []string
	p := strings.ToUpper(prefix)
	for _, cmd := range c.commands {
		if strings.HasPrefix(strings.ToUpper(cmd), p) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}
