package command

import (
	"context"
	"errors"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/memkv-go/internal/cli/connection"
	"github.com/yndnr/memkv-go/internal/cli/repl"
)

// ShellCommand returns the interactive shell command.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:   "shell",
		Usage:  "Start an interactive session",
		Action: runShell,
	}
}

func runShell(c *cli.Context) error {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}

	s := &session{addr: flags.Server, timeout: flags.Timeout, opts: flags.DialOptions()}
	defer s.close()

	r := repl.New(flags.Server, s.exec, repl.WithIO(c.App.Reader, c.App.Writer))
	return r.Run(c.Context)
}

// session keeps one connection across shell commands and redials after
// a transport error.
type session struct {
	addr    string
	timeout time.Duration
	opts    []connection.DialOption
	client  *connection.Client
}

func (s *session) exec(ctx context.Context, args []string) (string, error) {
	if s.client == nil {
		client, err := connection.Dial(ctx, s.addr, s.timeout, s.opts...)
		if err != nil {
			return "", err
		}
		s.client = client
	}

	v, err := s.client.Do(ctx, args...)
	var se *connection.ServerError
	switch {
	case errors.As(err, &se):
		return connection.FormatValue(v), nil
	case err != nil:
		s.close()
		return "", err
	}
	return connection.FormatValue(v), nil
}

func (s *session) close() {
	if s.client != nil {
		_ = s.client.Close()
		s.client = nil
	}
}
