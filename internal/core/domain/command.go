package domain

import "time"

// CommandKind identifies the variant of a Command.
type CommandKind uint8

// Command kinds.
const (
	KindPing CommandKind = iota + 1
	KindEcho
	KindCommandDocs
	KindGet
	KindSet
	KindInfo
	KindQuit
)

// String returns the upper-case command name for the kind.
func (k CommandKind) String() string {
	switch k {
	case KindPing:
		return "PING"
	case KindEcho:
		return "ECHO"
	case KindCommandDocs:
		return "COMMAND"
	case KindGet:
		return "GET"
	case KindSet:
		return "SET"
	case KindInfo:
		return "INFO"
	case KindQuit:
		return "QUIT"
	default:
		return "UNKNOWN"
	}
}

// Command is a fully decoded client request.
//
// Only the fields relevant to Kind are set:
//   - Ping: Text (optional message, HasText reports presence)
//   - Echo: Text (arguments joined by a single space)
//   - CommandDocs: Text (arguments joined), Subcommand (first argument, upper-cased)
//   - Get: Key
//   - Set: Key, Value, TTL (zero means no expiry)
//   - Info: Text (requested section, may be empty)
type Command struct {
	Kind       CommandKind
	Key        string
	Value      string
	Text       string
	HasText    bool
	Subcommand string
	TTL        time.Duration
}

// Name returns the command name used for logging and metrics labels.
func (c Command) Name() string {
	return c.Kind.String()
}
