package resp

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/yndnr/memkv-go/internal/core/domain"
)

var (
	// ErrUnknownCommand is returned for a frame whose name is not a command.
	ErrUnknownCommand = domain.ErrUnknownCommand

	// ErrArity is returned for a known command with the wrong argument count.
	ErrArity = domain.ErrWrongArity
)

// BuildCommand turns a command name and its arguments into a Command.
// Name matching is case-insensitive.
func BuildCommand(name string, args []string) (domain.Command, error) {
	cmdName := normalizeCommandName(name)

	switch cmdName {
	case "PING":
		switch len(args) {
		case 0:
			return domain.Command{Kind: domain.KindPing}, nil
		case 1:
			return domain.Command{Kind: domain.KindPing, Text: args[0], HasText: true}, nil
		}
	case "ECHO":
		if len(args) >= 1 {
			return domain.Command{Kind: domain.KindEcho, Text: strings.Join(args, " ")}, nil
		}
	case "GET":
		if len(args) == 1 {
			return domain.Command{Kind: domain.KindGet, Key: args[0]}, nil
		}
	case "SET":
		switch len(args) {
		case 2:
			return domain.Command{Kind: domain.KindSet, Key: args[0], Value: args[1]}, nil
		case 4:
			return domain.Command{
				Kind:  domain.KindSet,
				Key:   args[0],
				Value: args[1],
				TTL:   parseTTL(args[3]),
			}, nil
		}
	case "COMMAND":
		cmd := domain.Command{Kind: domain.KindCommandDocs, Text: strings.Join(args, " ")}
		if len(args) > 0 {
			cmd.Subcommand = strings.ToUpper(args[0])
		}
		return cmd, nil
	case "INFO":
		switch len(args) {
		case 0:
			return domain.Command{Kind: domain.KindInfo}, nil
		case 1:
			return domain.Command{Kind: domain.KindInfo, Text: strings.ToLower(args[0])}, nil
		}
	case "QUIT":
		return domain.Command{Kind: domain.KindQuit}, nil
	default:
		return domain.Command{}, ErrUnknownCommand.WithDetailsf("'%s'", name)
	}

	return domain.Command{}, ErrArity.WithDetailsf("for '%s' command", strings.ToLower(cmdName))
}

// parseTTL reads the expiry argument of SET as milliseconds, whatever
// the unit keyword before it says. A value that does not parse as an
// unsigned integer, is zero, or overflows a time.Duration yields no
// expiry.
func parseTTL(value string) time.Duration {
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil || n == 0 {
		return 0
	}
	if n > uint64(math.MaxInt64/int64(time.Millisecond)) {
		return 0
	}
	return time.Duration(n) * time.Millisecond
}

// normalizeCommandName upper-cases ASCII without allocating for names
// that are already upper case.
func normalizeCommandName(name string) string {
	if strings.ContainsAny(name, "abcdefghijklmnopqrstuvwxyz") {
		return strings.ToUpper(name)
	}
	return name
}
