package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/hashguard/internal/cli/repl"
)

// ShellCommand returns the interactive shell command.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:   "shell",
		Usage:  "Start an interactive session",
		Flags:  []cli.Flag{&cli.BoolFlag{Name: "no-history", Usage: "Do not read or write the history file"}},
		Action: shellAction,
	}
}

func shellAction(c *cli.Context) error {
	g, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}

	// Each line runs in a fresh App carrying the resolved global settings.
	base := []string{c.App.Name,
		"--config", g.ConfigPath,
		"--server", g.Server,
		"--output", string(g.Output),
		"--timeout", g.Timeout.String(),
	}
	if g.NoHeaders {
		base = append(base, "--no-headers")
	}
	exec := func(args []string) error {
		if len(args) > 0 && args[0] == "shell" {
			return fmt.Errorf("already in a shell")
		}
		app := App()
		app.Reader = c.App.Reader
		app.Writer = c.App.Writer
		app.ErrWriter = c.App.ErrWriter
		app.ExitErrHandler = func(*cli.Context, error) {}
		return app.RunContext(c.Context, append(append([]string(nil), base...), args...))
	}

	historyPath := repl.DefaultHistoryPath()
	if c.Bool("no-history") {
		historyPath = ""
	}
	fmt.Fprintf(c.App.Writer, "connected to %s, type exit to leave\n", g.Server)
	return repl.New(c.App.Reader, c.App.Writer, "hashguard> ", exec, repl.NewHistory(historyPath)).Run()
}
