package command

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/hashguard/internal/cli/output"
	"github.com/yndnr/hashguard/internal/core/service"
)

// StatsCommand returns the stats command.
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show table statistics",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "shards",
				Usage: "Include per-shard statistics",
			},
		},
		Action: statsAction,
	}
}

func statsAction(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	ctx, cancel := s.context(c)
	defer cancel()

	path := "/stats"
	if c.Bool("shards") {
		path += "?shards=true"
	}
	var report service.StatsReport
	if err := s.client.Get(ctx, path, &report); err != nil {
		return err
	}
	if s.format != output.FormatTable {
		return s.print(report)
	}

	if err := s.print(report.Totals); err != nil {
		return err
	}
	if len(report.Shards) == 0 {
		return nil
	}
	fmt.Fprintln(s.out)
	t := output.NewTable("SHARD", "SIZE", "CAPACITY", "LOAD", "MAX_CHAIN", "COLLISIONS", "ATTACKS", "REHASHES")
	for _, sh := range report.Shards {
		t.AddRow(
			strconv.Itoa(sh.Index),
			strconv.Itoa(sh.Size),
			strconv.Itoa(sh.Capacity),
			strconv.FormatFloat(sh.LoadFactor, 'f', 3, 64),
			strconv.Itoa(sh.MaxChain),
			strconv.FormatUint(sh.CollisionsTotal, 10),
			strconv.FormatUint(sh.AttacksDetected, 10),
			strconv.Itoa(sh.RehashCount),
		)
	}
	return s.print(t)
}

// RehashCommand returns the rehash command.
func RehashCommand() *cli.Command {
	return &cli.Command{
		Name:   "rehash",
		Usage:  "Rebuild every shard under a fresh seed (admin)",
		Action: rehashAction,
	}
}

func rehashAction(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	ctx, cancel := s.context(c)
	defer cancel()

	var resp struct {
		RehashCount int   `json:"rehash_count"`
		DurationMs  int64 `json:"duration_ms"`
	}
	if err := s.client.Post(ctx, "/admin/v1/rehash", nil, &resp); err != nil {
		return err
	}
	if s.format == output.FormatTable {
		_, err := fmt.Fprintf(s.out, "rehashed (total rehashes %d, %d ms)\n", resp.RehashCount, resp.DurationMs)
		return err
	}
	return s.print(resp)
}

// HealthCommand returns the health command.
func HealthCommand() *cli.Command {
	return &cli.Command{
		Name:   "health",
		Usage:  "Check server liveness and readiness",
		Action: healthAction,
	}
}

func healthAction(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	ctx, cancel := s.context(c)
	defer cancel()

	var health struct {
		Status string `json:"status"`
	}
	if err := s.client.Get(ctx, "/health", &health); err != nil {
		return err
	}
	var ready struct {
		Status string `json:"status"`
		Keys   int    `json:"keys"`
	}
	if err := s.client.Get(ctx, "/ready", &ready); err != nil {
		return err
	}
	return s.print(map[string]any{
		"server": s.client.BaseURL(),
		"health": health.Status,
		"ready":  ready.Status,
		"keys":   ready.Keys,
	})
}
