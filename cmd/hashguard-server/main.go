package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/hashguard/internal/infra/buildinfo"
)

func main() {
	if err := app().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func app() *cli.App {
	return &cli.App{
		Name:    "hashguard-server",
		Usage:   "Flood-resistant key/value store",
		Version: buildinfo.String(),
		Flags:   serveFlags(),
		Action:  serveAction,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the server (default)",
				Flags:  serveFlags(),
				Action: serveAction,
			},
			auditCommand(),
			{
				Name:  "version",
				Usage: "Print build information",
				Action: func(c *cli.Context) error {
					_, err := fmt.Fprintln(c.App.Writer, buildinfo.String())
					return err
				},
			},
		},
	}
}
