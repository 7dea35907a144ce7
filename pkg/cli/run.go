/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/stk5800/cliharness/pkg/cases"
	"github.com/stk5800/cliharness/pkg/history"
	"github.com/stk5800/cliharness/pkg/serializer"
	"github.com/stk5800/cliharness/pkg/suite"
)

func runCmd() *cli.Command {
	return &cli.Command{
		Name:                  "run",
		EnableShellCompletion: true,
		Usage:                 "Run acceptance cases against the hive",
		Description: `Runs the selected cases one at a time and writes a report.

Destructive cases (reboot, wipe) are skipped unless --allow-destructive is set
or the config enables allowDestructive.

# Examples

Run every case and print a table:
  cliharness run --format table

Run two cases and keep the result in the history database:
  cliharness run --case sysstat --case df --history ./cliharness.db

Try the harness without an appliance:
  cliharness run --simulate --allow-destructive`,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "case",
				Usage: "case to run, can be repeated (default: all registered cases)",
			},
			&cli.BoolFlag{
				Name:  "allow-destructive",
				Usage: "run cases that reboot or wipe the hive",
			},
			&cli.StringFlag{
				Name:  "history",
				Usage: "SQLite database to record the run into",
			},
			outputFlag(),
			formatFlag(serializer.FormatYAML),
			failOnErrorFlag(),
			simulateFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if _, err := parseOutputFormat(cmd); err != nil {
				return err
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			s := suite.New(cfg, newRunner(cfg, cmd.Bool("simulate")))
			if err := s.Init(ctx); err != nil {
				return fmt.Errorf("failed to initialize suite: %w", err)
			}

			rep, err := cases.Execute(ctx, s, cases.NewRegistry(), cases.Options{
				Cases:            cmd.StringSlice("case"),
				AllowDestructive: cmd.Bool("allow-destructive") || cfg.AllowDestructive,
				Version:          version,
			})
			if err != nil {
				return err
			}

			if path := cmd.String("history"); path != "" {
				if err := recordHistory(ctx, path, rep); err != nil {
					return err
				}
			}

			if err := writeOutput(ctx, cmd, rep); err != nil {
				return err
			}

			if err := ctx.Err(); err != nil {
				return fmt.Errorf("run interrupted: %w", err)
			}
			if cmd.Bool("fail-on-error") && rep.Failed() {
				return fmt.Errorf("%d of %d cases failed", rep.Summary.Failed, rep.Summary.Total)
			}
			return nil
		},
	}
}

func recordHistory(ctx context.Context, path string, rep *cases.Report) error {
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("failed to close history", "error", err)
		}
	}()

	// Record even when the run was interrupted.
	if err := store.Record(context.WithoutCancel(ctx), rep); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	slog.Info("run recorded", "runID", rep.RunID, "path", path)
	return nil
}
