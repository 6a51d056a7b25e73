package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/memkv-go/internal/cli/connection"
	"github.com/yndnr/memkv-go/internal/cli/output"
)

// SystemCommand returns the system subcommand group.
func SystemCommand() *cli.Command {
	return &cli.Command{
		Name:    "system",
		Aliases: []string{"sys"},
		Usage:   "Server status over the HTTP listener",
		Subcommands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show the server status summary",
				Action: systemStatus,
			},
			{
				Name:   "health",
				Usage:  "Check liveness and readiness",
				Action: systemHealth,
			},
		},
	}
}

func systemStatus(c *cli.Context) error {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}
	client := connection.NewHTTPClient(flags.HTTP, flags.Timeout)

	ctx, cancel := context.WithTimeout(c.Context, flags.Timeout)
	defer cancel()

	resp, err := client.Get(ctx, "/status")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result map[string]any
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	return output.NewFormatter(flags.Output).Format(c.App.Writer, result)
}

type probeResult struct {
	Target string `json:"target"`
	Live   bool   `json:"live"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

func systemHealth(c *cli.Context) error {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}
	client := connection.NewHTTPClient(flags.HTTP, flags.Timeout)

	ctx, cancel := context.WithTimeout(c.Context, flags.Timeout)
	defer cancel()

	res := probeResult{Target: client.BaseURL()}
	if res.Live, err = probe(ctx, client, "/healthz"); err != nil {
		res.Detail = err.Error()
	} else if res.Ready, err = probe(ctx, client, "/readyz"); err != nil {
		res.Detail = err.Error()
	}

	if flags.Output == output.FormatTable {
		switch {
		case res.Ready:
			fmt.Fprintf(c.App.Writer, "server is healthy and ready\n  target: %s\n", res.Target)
		case res.Live:
			fmt.Fprintf(c.App.Writer, "server is live but not ready: %s\n", res.Detail)
		default:
			fmt.Fprintf(c.App.Writer, "server is unhealthy: %s\n", res.Detail)
		}
	} else if err := output.NewFormatter(flags.Output).Format(c.App.Writer, res); err != nil {
		return err
	}

	if !res.Ready {
		return cli.Exit("", 1)
	}
	return nil
}

func probe(ctx context.Context, client *connection.HTTPClient, path string) (bool, error) {
	resp, err := client.Get(ctx, path)
	if err != nil {
		return false, err
	}
	if err := connection.ParseResponse(resp, nil); err != nil {
		return false, err
	}
	return true, nil
}
