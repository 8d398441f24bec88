package command

import (
	"fmt"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/hashguard/internal/cli/config"
	"github.com/yndnr/hashguard/internal/cli/output"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage saved server profiles",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the CLI configuration",
				Action: configShow,
			},
			{
				Name:      "add",
				Usage:     "Save a server profile",
				ArgsUsage: "NAME SERVER",
				Action:    configAdd,
			},
			{
				Name:      "use",
				Usage:     "Select a profile; an empty NAME selects the default server",
				ArgsUsage: "NAME",
				Action:    configUse,
			},
			{
				Name:      "remove",
				Usage:     "Delete a server profile",
				ArgsUsage: "NAME",
				Action:    configRemove,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	cfg := cliConfig(c)
	if s.format != output.FormatTable {
		return s.print(cfg)
	}

	fmt.Fprintf(s.out, "server:  %s\n", cfg.ServerAddr())
	fmt.Fprintf(s.out, "output:  %s\n", cfg.Output)
	fmt.Fprintf(s.out, "timeout: %s\n", cfg.Timeout)
	if len(cfg.Profiles) == 0 {
		return nil
	}
	fmt.Fprintln(s.out)

	names := make([]string, 0, len(cfg.Profiles))
	for name := range cfg.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	t := output.NewTable("CURRENT", "NAME", "SERVER")
	for _, name := range names {
		mark := ""
		if name == cfg.Current {
			mark = "*"
		}
		t.AddRow(mark, name, cfg.Profiles[name].Server)
	}
	return s.print(t)
}

func configAdd(c *cli.Context) error {
	if err := requireArgs(c, 2, "NAME SERVER"); err != nil {
		return err
	}
	cfg := cliConfig(c)
	cfg.Profiles[c.Args().Get(0)] = config.Profile{Server: c.Args().Get(1)}
	return saveConfig(c, cfg)
}

func configUse(c *cli.Context) error {
	if err := requireArgs(c, 1, "NAME"); err != nil {
		return err
	}
	cfg := cliConfig(c)
	name := c.Args().First()
	if _, ok := cfg.Profiles[name]; !ok && name != "" {
		return fmt.Errorf("unknown profile %q", name)
	}
	cfg.Current = name
	return saveConfig(c, cfg)
}

func configRemove(c *cli.Context) error {
	if err := requireArgs(c, 1, "NAME"); err != nil {
		return err
	}
	cfg := cliConfig(c)
	name := c.Args().First()
	if _, ok := cfg.Profiles[name]; !ok {
		return fmt.Errorf("unknown profile %q", name)
	}
	delete(cfg.Profiles, name)
	if cfg.Current == name {
		cfg.Current = ""
	}
	return saveConfig(c, cfg)
}

func saveConfig(c *cli.Context, cfg *config.CLIConfig) error {
	if err := config.Save(cfg, c.String("config")); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	_, err := fmt.Fprintln(c.App.Writer, "OK")
	return err
}
