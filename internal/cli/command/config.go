package command

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/memkv-go/internal/cli/config"
	"github.com/yndnr/memkv-go/internal/cli/output"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage CLI defaults",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective settings",
				Action: configShow,
			},
			{
				Name:   "save",
				Usage:  "Save the effective settings as defaults",
				Action: configSave,
			},
		},
	}
}

func effectiveConfig(c *cli.Context) (*config.CLIConfig, *GlobalFlags, error) {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return nil, nil, err
	}
	return &config.CLIConfig{
		Server:  flags.Server,
		HTTP:    flags.HTTP,
		Output:  string(flags.Output),
		Timeout: flags.Timeout,
		TLS:     flags.TLS != nil,
		CAFile:  flags.CAFile,
	}, flags, nil
}

func configShow(c *cli.Context) error {
	cfg, flags, err := effectiveConfig(c)
	if err != nil {
		return err
	}
	return output.NewFormatter(flags.Output).Format(c.App.Writer, map[string]any{
		"server":  cfg.Server,
		"http":    cfg.HTTP,
		"output":  cfg.Output,
		"timeout": cfg.Timeout.String(),
		"tls":     strconv.FormatBool(cfg.TLS),
		"ca_file": cfg.CAFile,
	})
}

func configSave(c *cli.Context) error {
	cfg, _, err := effectiveConfig(c)
	if err != nil {
		return err
	}

	path := c.String("cli-config")
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if err := config.Save(cfg, path); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "saved %s\n", path)
	return nil
}
