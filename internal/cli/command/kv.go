package command

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	tresp "github.com/tidwall/resp"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/memkv-go/internal/cli/connection"
	"github.com/yndnr/memkv-go/internal/cli/output"
)

// PingCommand returns the ping command.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:      "ping",
		Usage:     "Check the server answers (PONG, or echo the message)",
		ArgsUsage: "[message]",
		Action: func(c *cli.Context) error {
			if c.NArg() > 1 {
				return fmt.Errorf("ping takes at most one argument")
			}
			return runRaw(c, append([]string{"PING"}, c.Args().Slice()...))
		},
	}
}

// EchoCommand returns the echo command.
func EchoCommand() *cli.Command {
	return &cli.Command{
		Name:      "echo",
		Usage:     "Echo a message",
		ArgsUsage: "<message>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("echo requires exactly one argument")
			}
			return runRaw(c, []string{"ECHO", c.Args().First()})
		},
	}
}

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Get the value of a key",
		ArgsUsage: "<key>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("get requires exactly one key")
			}
			return runRaw(c, []string{"GET", c.Args().First()})
		},
	}
}

// SetCommand returns the set command.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Set a key, optionally with an expiry",
		ArgsUsage: "<key> <value>",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:  "ex",
				Usage: "Expire after this many seconds",
			},
			&cli.Int64Flag{
				Name:  "px",
				Usage: "Expire after this many milliseconds",
			},
		},
		Action: func(c *cli.Context) error {
			args, err := setArgs(c.Args().Slice(), c.Int64("ex"), c.Int64("px"))
			if err != nil {
				return err
			}
			return runRaw(c, args)
		},
	}
}

// setArgs builds a SET request. At most one of ex and px may be set. The
// server reads every expiry as milliseconds, so seconds are converted.
func setArgs(pos []string, ex, px int64) ([]string, error) {
	if len(pos) != 2 {
		return nil, fmt.Errorf("set requires a key and a value")
	}
	if ex != 0 && px != 0 {
		return nil, fmt.Errorf("--ex and --px are mutually exclusive")
	}
	if ex < 0 || px < 0 {
		return nil, fmt.Errorf("expiry must be positive")
	}
	if ex > math.MaxInt64/1000 {
		return nil, fmt.Errorf("--ex %d is too large", ex)
	}

	args := []string{"SET", pos[0], pos[1]}
	switch {
	case ex > 0:
		args = append(args, "PX", strconv.FormatInt(ex*1000, 10))
	case px > 0:
		args = append(args, "PX", strconv.FormatInt(px, 10))
	}
	return args, nil
}

// InfoCommand returns the info command.
func InfoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Show server information (server, keyspace, stats or all)",
		ArgsUsage: "[section]",
		Action: func(c *cli.Context) error {
			args := []string{"INFO"}
			if c.NArg() > 0 {
				args = append(args, c.Args().First())
			}

			flags, err := ParseGlobalFlags(c)
			if err != nil {
				return err
			}
			v, err := do(c, flags, args)
			if err != nil {
				return err
			}
			return output.NewFormatter(flags.Output).Format(c.App.Writer, output.ParseSections(v.String()))
		},
	}
}

// ExecCommand returns the exec command, which sends its arguments as one
// raw command.
func ExecCommand() *cli.Command {
	return &cli.Command{
		Name:      "exec",
		Usage:     "Send a raw command",
		ArgsUsage: "<command> [args...]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("exec requires a command")
			}
			return runRaw(c, c.Args().Slice())
		},
	}
}

// runRaw sends args and prints the reply in the selected format.
func runRaw(c *cli.Context, args []string) error {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}

	v, err := do(c, flags, args)
	if err != nil {
		return err
	}

	if flags.Output == output.FormatTable {
		_, err := fmt.Fprintln(c.App.Writer, connection.FormatValue(v))
		return err
	}
	return output.NewFormatter(flags.Output).Format(c.App.Writer, replyToAny(v))
}

// do dials, sends one command and closes.
func do(c *cli.Context, flags *GlobalFlags, args []string) (tresp.Value, error) {
	ctx, cancel := context.WithTimeout(c.Context, flags.Timeout)
	defer cancel()

	client, err := connection.Dial(ctx, flags.Server, flags.Timeout, flags.DialOptions()...)
	if err != nil {
		return tresp.Value{}, err
	}
	defer client.Close()

	v, err := client.Do(ctx, args...)
	var se *connection.ServerError
	if errors.As(err, &se) {
		return v, fmt.Errorf("server: %s", se.Message)
	}
	return v, err
}

// replyToAny converts a reply for JSON and YAML output.
func replyToAny(v tresp.Value) any {
	switch v.Type() {
	case tresp.Integer:
		return v.Integer()
	case tresp.BulkString:
		if v.IsNull() {
			return nil
		}
		return v.String()
	case tresp.Array:
		if v.IsNull() {
			return nil
		}
		items := v.Array()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = replyToAny(item)
		}
		return out
	default:
		return v.String()
	}
}
