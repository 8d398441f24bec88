package main

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/hashguard/internal/audit"
	"github.com/yndnr/hashguard/internal/cli/output"
	"github.com/yndnr/hashguard/pkg/securemap"
)

func auditCommand() *cli.Command {
	return &cli.Command{
		Name:  "audit",
		Usage: "Run an in-process timing audit of the map operations",
		Description: "Measures get, set and delete of a present key against an absent key " +
			"in a shared bucket and reports Welch's t-test per operation. " +
			"With --attack, simulates a collision flood instead.",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "samples", Value: audit.DefaultSamples, Usage: "Measurements per variant"},
			&cli.IntFlag{Name: "warmup", Value: audit.DefaultWarmup, Usage: "Discarded warmup runs"},
			&cli.IntFlag{Name: "population", Value: audit.DefaultPopulation, Usage: "Entries in the audited bucket"},
			&cli.Float64Flag{Name: "alpha", Value: audit.DefaultAlpha, Usage: "Significance level"},
			&cli.Float64Flag{Name: "min-effect", Value: audit.DefaultMinEffect, Usage: "Smallest relative mean difference reported as a leak"},
			&cli.StringFlag{Name: "digest", Value: "sha256", Usage: "Comparator digest: sha256 or blake2b"},
			&cli.BoolFlag{Name: "attack", Usage: "Simulate a collision flood with a leaked seed"},
			&cli.IntFlag{Name: "keys", Value: audit.DefaultAttackKeys, Usage: "Keys inserted by --attack"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "table", Usage: "Output format: table, json, yaml"},
		},
		Action: auditAction,
	}
}

func auditAction(c *cli.Context) error {
	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		return err
	}
	formatter := output.NewFormatter(format)

	digest := securemap.DigestByName(c.String("digest"))
	if digest == nil {
		return fmt.Errorf("unknown digest %q", c.String("digest"))
	}

	if c.Bool("attack") {
		report, err := audit.Simulate(c.Context, c.Int("keys"), securemap.WithDigest(digest))
		if err != nil {
			return err
		}
		return formatter.Format(c.App.Writer, report)
	}

	cases, err := audit.MapCases(c.Int("population"), securemap.WithDigest(digest))
	if err != nil {
		return err
	}
	cfg := audit.DefaultConfig()
	cfg.Samples = c.Int("samples")
	cfg.Warmup = c.Int("warmup")
	cfg.Alpha = c.Float64("alpha")
	cfg.MinEffect = c.Float64("min-effect")

	results, err := audit.RunAll(c.Context, cfg, cases)
	if err != nil {
		return err
	}
	if format != output.FormatTable {
		return formatter.Format(c.App.Writer, results)
	}

	t := output.NewTable("OP", "SAMPLES", "HIT_NS", "MISS_NS", "T", "DF", "P", "EFFECT", "LEAK")
	leaks := 0
	for _, r := range results {
		if r.Leak {
			leaks++
		}
		t.AddRow(r.Name,
			strconv.Itoa(r.Samples),
			strconv.FormatFloat(r.HitNs, 'f', 1, 64),
			strconv.FormatFloat(r.MissNs, 'f', 1, 64),
			strconv.FormatFloat(r.T, 'f', 3, 64),
			strconv.FormatFloat(r.DF, 'f', 1, 64),
			strconv.FormatFloat(r.P, 'f', 4, 64),
			strconv.FormatFloat(r.Effect, 'f', 4, 64),
			strconv.FormatBool(r.Leak),
		)
	}
	if err := t.Render(c.App.Writer); err != nil {
		return err
	}
	if leaks > 0 {
		return cli.Exit(fmt.Sprintf("%d operation(s) show a timing difference at alpha %.3g", leaks, cfg.Alpha), 2)
	}
	return nil
}
