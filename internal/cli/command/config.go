package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/scratchkeep/internal/cli/output"
	"github.com/yndnr/scratchkeep/internal/config"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the resolved configuration",
				Action: configShow,
			},
			{
				Name:   "path",
				Usage:  "Show which configuration file is in use",
				Action: configPath,
			},
			{
				Name:      "validate",
				Usage:     "Validate a configuration file",
				ArgsUsage: "FILE",
				Action:    configValidate,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	rt := GetRuntime(c)
	if rt.Format == output.FormatTable {
		// The struct is nested; YAML reads better than a FIELD/VALUE table.
		return (&output.YAMLFormatter{}).Format(rt.Out, rt.Config)
	}
	return rt.Print(rt.Config)
}

func configPath(c *cli.Context) error {
	rt := GetRuntime(c)
	path := rt.ConfigPath
	if path == "" {
		path = "(none, defaults and environment only)"
	}
	_, err := fmt.Fprintln(rt.Out, path)
	return err
}

func configValidate(c *cli.Context) error {
	rt := GetRuntime(c)
	path, err := requireArg(c, "FILE")
	if err != nil {
		return err
	}
	if _, _, err := config.Load(path, nil); err != nil {
		return err
	}
	_, err = fmt.Fprintf(rt.Out, "%s: ok\n", path)
	return err
}
