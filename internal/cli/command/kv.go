package command

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/hashguard/internal/cli/connection"
	"github.com/yndnr/hashguard/internal/cli/output"
)

// entry is how a key/value pair is printed in structured formats.
type entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Print the value stored under KEY",
		ArgsUsage: "KEY",
		Action:    getAction,
	}
}

func getAction(c *cli.Context) error {
	if err := requireArgs(c, 1, "KEY"); err != nil {
		return err
	}
	s, err := newSession(c)
	if err != nil {
		return err
	}
	ctx, cancel := s.context(c)
	defer cancel()

	key := c.Args().First()
	var resp struct {
		Value string `json:"value"`
	}
	if err := s.client.Get(ctx, keyPath("/get/", key), &resp); err != nil {
		return err
	}
	if s.format == output.FormatTable {
		_, err := fmt.Fprintln(s.out, resp.Value)
		return err
	}
	return s.print(entry{Key: key, Value: resp.Value})
}

// SetCommand returns the set command.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Store VALUE under KEY",
		ArgsUsage: "KEY [VALUE]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "stdin",
				Usage: "Read the value from standard input",
			},
		},
		Action: setAction,
	}
}

func setAction(c *cli.Context) error {
	var key, value string
	switch {
	case c.Bool("stdin") && c.Args().Len() == 1:
		data, err := io.ReadAll(c.App.Reader)
		if err != nil {
			return fmt.Errorf("read value: %w", err)
		}
		key, value = c.Args().First(), string(data)
	case !c.Bool("stdin") && c.Args().Len() == 2:
		key, value = c.Args().Get(0), c.Args().Get(1)
	default:
		return fmt.Errorf("usage: set KEY VALUE | set --stdin KEY")
	}

	s, err := newSession(c)
	if err != nil {
		return err
	}
	ctx, cancel := s.context(c)
	defer cancel()

	body := struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}{key, value}
	if err := s.client.Post(ctx, "/set", body, nil); err != nil {
		return err
	}
	if s.format == output.FormatTable {
		_, err := fmt.Fprintln(s.out, "OK")
		return err
	}
	return s.print(entry{Key: key, Value: value})
}

// DeleteCommand returns the delete command.
func DeleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"del"},
		Usage:     "Remove one or more keys and print how many existed",
		ArgsUsage: "KEY [KEY...]",
		Action:    deleteAction,
	}
}

func deleteAction(c *cli.Context) error {
	if c.Args().Len() == 0 {
		return fmt.Errorf("usage: delete KEY [KEY...]")
	}
	s, err := newSession(c)
	if err != nil {
		return err
	}
	ctx, cancel := s.context(c)
	defer cancel()

	deleted := 0
	for _, key := range c.Args().Slice() {
		err := s.client.Delete(ctx, keyPath("/delete/", key), nil)
		switch {
		case err == nil:
			deleted++
		case isNotFound(err):
		default:
			return fmt.Errorf("delete %q: %w", key, err)
		}
	}
	if s.format == output.FormatTable {
		_, err := fmt.Fprintln(s.out, deleted)
		return err
	}
	return s.print(map[string]int{"deleted": deleted})
}

// ExistsCommand returns the exists command.
func ExistsCommand() *cli.Command {
	return &cli.Command{
		Name:      "exists",
		Usage:     "Report whether KEY is stored",
		ArgsUsage: "KEY",
		Action:    existsAction,
	}
}

func existsAction(c *cli.Context) error {
	if err := requireArgs(c, 1, "KEY"); err != nil {
		return err
	}
	s, err := newSession(c)
	if err != nil {
		return err
	}
	ctx, cancel := s.context(c)
	defer cancel()

	exists := true
	if err := s.client.Get(ctx, keyPath("/get/", c.Args().First()), nil); err != nil {
		if !isNotFound(err) {
			return err
		}
		exists = false
	}
	if s.format == output.FormatTable {
		_, err := fmt.Fprintln(s.out, exists)
		return err
	}
	return s.print(map[string]bool{"exists": exists})
}

func isNotFound(err error) bool {
	var apiErr *connection.APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}
