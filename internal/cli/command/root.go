package command

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/hashguard/internal/cli/config"
	"github.com/yndnr/hashguard/internal/cli/connection"
	"github.com/yndnr/hashguard/internal/cli/output"
	"github.com/yndnr/hashguard/internal/infra/buildinfo"
)

const configKey = "config"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "hashguard-cli",
		Usage:   "HashGuard key/value store client",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			GetCommand(),
			SetCommand(),
			DeleteCommand(),
			ExistsCommand(),
			StatsCommand(),
			RehashCommand(),
			HealthCommand(),
			ConfigCommand(),
			ShellCommand(),
		},
		Before: loadConfig,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "CLI configuration file",
			EnvVars: []string{"HASHGUARD_CLI_CONFIG"},
			Value:   config.DefaultConfigPath(),
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Server address (e.g., http://127.0.0.1:5080)",
			EnvVars: []string{"HASHGUARD_SERVER"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Request timeout",
		},
		&cli.BoolFlag{
			Name:  "no-headers",
			Usage: "Omit table headers",
		},
	}
}

func loadConfig(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]any{}
	}
	c.App.Metadata[configKey] = cfg
	return nil
}

// cliConfig returns the loaded configuration, or the defaults.
func cliConfig(c *cli.Context) *config.CLIConfig {
	if cfg, ok := c.App.Metadata[configKey].(*config.CLIConfig); ok {
		return cfg
	}
	return config.Default()
}

// GlobalFlags holds the effective global settings: flags first, then the
// configuration file.
type GlobalFlags struct {
	ConfigPath string
	Server     string
	Output     output.Format
	Timeout    time.Duration
	NoHeaders  bool
}

// ParseGlobalFlags resolves the global settings for c.
func ParseGlobalFlags(c *cli.Context) (*GlobalFlags, error) {
	cfg := cliConfig(c)
	g := &GlobalFlags{
		ConfigPath: c.String("config"),
		Server:     cfg.ServerAddr(),
		Timeout:    cfg.Timeout,
		NoHeaders:  c.Bool("no-headers"),
	}
	if c.IsSet("server") {
		g.Server = c.String("server")
	}
	if c.IsSet("timeout") {
		g.Timeout = c.Duration("timeout")
	}

	format := cfg.Output
	if c.IsSet("output") {
		format = c.String("output")
	}
	f, err := output.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	g.Output = f
	return g, nil
}

// session bundles what a command needs to talk to the server.
type session struct {
	client    *connection.HTTPClient
	formatter output.Formatter
	format    output.Format
	out       io.Writer
	timeout   time.Duration
}

func newSession(c *cli.Context) (*session, error) {
	g, err := ParseGlobalFlags(c)
	if err != nil {
		return nil, err
	}
	formatter := output.NewFormatter(g.Output)
	if tf, ok := formatter.(*output.TableFormatter); ok {
		tf.NoHeaders = g.NoHeaders
	}
	return &session{
		client:    connection.NewHTTPClient(g.Server, g.Timeout),
		formatter: formatter,
		format:    g.Output,
		out:       c.App.Writer,
		timeout:   g.Timeout,
	}, nil
}

func (s *session) context(c *cli.Context) (context.Context, context.CancelFunc) {
	timeout := s.timeout
	if timeout <= 0 {
		timeout = connection.DefaultTimeout
	}
	return context.WithTimeout(c.Context, timeout)
}

func (s *session) print(data any) error {
	return s.formatter.Format(s.out, data)
}

// keyPath builds an endpoint path with key as its last segment.
func keyPath(prefix, key string) string {
	return prefix + url.PathEscape(key)
}

func requireArgs(c *cli.Context, n int, usage string) error {
	if c.Args().Len() != n {
		return fmt.Errorf("usage: %s %s", c.Command.Name, usage)
	}
	return nil
}
