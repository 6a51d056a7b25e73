package command

import (
	"crypto/tls"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/memkv-go/internal/cli/config"
	"github.com/yndnr/memkv-go/internal/cli/connection"
	"github.com/yndnr/memkv-go/internal/cli/output"
	"github.com/yndnr/memkv-go/internal/infra/buildinfo"
	"github.com/yndnr/memkv-go/internal/infra/tlsroots"
)

const metaConfig = "cliConfig"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "memkv-cli",
		Usage:   "Command-line client for memkv-server",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			PingCommand(),
			EchoCommand(),
			GetCommand(),
			SetCommand(),
			InfoCommand(),
			ExecCommand(),
			ShellCommand(),
			SystemCommand(),
			ConfigCommand(),
		},
		Before: loadDefaults,
		Action: func(c *cli.Context) error {
			if c.NArg() > 0 {
				return runRaw(c, c.Args().Slice())
			}
			return runShell(c)
		},
	}
}

// globalFlags returns the global CLI flags. Unset flags fall back to the
// CLI config file.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "memkv-server RESP address (default 127.0.0.1:6379)",
			EnvVars: []string{"MEMKV_SERVER"},
		},
		&cli.StringFlag{
			Name:    "http",
			Usage:   "memkv-server HTTP address for status and health (default 127.0.0.1:9121)",
			EnvVars: []string{"MEMKV_HTTP"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Aliases: []string{"t"},
			Usage:   "Dial and request timeout (default 5s)",
		},
		&cli.BoolFlag{
			Name:    "tls",
			Usage:   "Dial the RESP address with TLS",
			EnvVars: []string{"MEMKV_TLS"},
		},
		&cli.StringFlag{
			Name:    "ca-file",
			Usage:   "PEM CA bundle to trust in addition to system roots (implies --tls)",
			EnvVars: []string{"MEMKV_CA_FILE"},
		},
		&cli.StringFlag{
			Name:  "cli-config",
			Usage: "Path to the CLI defaults file (default ~/.memkv/cli.yaml)",
		},
	}
}

func loadDefaults(c *cli.Context) error {
	cfg, err := config.Load(c.String("cli-config"))
	if err != nil {
		return err
	}
	c.App.Metadata[metaConfig] = cfg
	return nil
}

// GlobalFlags are the resolved connection and output settings.
type GlobalFlags struct {
	Server  string
	HTTP    string
	Output  output.Format
	Timeout time.Duration

	// TLS is nil for plaintext connections.
	TLS    *tls.Config
	CAFile string
}

// DialOptions returns the connection options for the resolved flags.
func (g *GlobalFlags) DialOptions() []connection.DialOption {
	if g.TLS == nil {
		return nil
	}
	return []connection.DialOption{connection.WithTLS(g.TLS)}
}

// ParseGlobalFlags merges flags over the CLI config.
func ParseGlobalFlags(c *cli.Context) (*GlobalFlags, error) {
	cfg, ok := c.App.Metadata[metaConfig].(*config.CLIConfig)
	if !ok {
		cfg = config.Default()
	}

	g := &GlobalFlags{
		Server:  cfg.Server,
		HTTP:    cfg.HTTP,
		Timeout: cfg.Timeout,
	}
	if v := c.String("server"); v != "" {
		g.Server = v
	}
	if v := c.String("http"); v != "" {
		g.HTTP = v
	}
	if v := c.Duration("timeout"); v > 0 {
		g.Timeout = v
	}
	if g.Timeout <= 0 {
		g.Timeout = connection.DefaultTimeout
	}

	format := cfg.Output
	if v := c.String("output"); v != "" {
		format = v
	}
	f, err := output.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	g.Output = f

	useTLS := cfg.TLS || c.Bool("tls")
	caFile := cfg.CAFile
	if v := c.String("ca-file"); v != "" {
		caFile = v
	}
	if useTLS || caFile != "" {
		tc, err := tlsroots.ClientTLS(caFile, "")
		if err != nil {
			return nil, err
		}
		g.TLS = tc
		g.CAFile = caFile
	}

	return g, nil
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
