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

	"github.com/stk5800/cliharness/pkg/serializer"
	"github.com/stk5800/cliharness/pkg/snapshotter"
	"github.com/stk5800/cliharness/pkg/validator"
)

func validateCmd() *cli.Command {
	return &cli.Command{
		Name:                  "validate",
		EnableShellCompletion: true,
		Usage:                 "Check a snapshot against expected values",
		Description: `Evaluates each constraint of an expectations file against a snapshot.
Without --snapshot a live snapshot is collected first.

Constraint names are Type.Subtype.Key paths; the subtype may be * to check
every cell. Values are exact strings or expressions using >=, <=, >, <, ==, !=.

  constraints:
    - name: SysStat.*.online
      value: "true"
    - name: DF.cell-0.usagePercent
      value: "< 80"

# Examples

  cliharness validate --expectations hive.yaml --snapshot snapshot.yaml
  cliharness validate -e hive.yaml --fail-on-error`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "expectations",
				Aliases:  []string{"e"},
				Required: true,
				Usage:    "expectations file path or ConfigMap URI (cm://namespace/name)",
			},
			&cli.StringFlag{
				Name:    "snapshot",
				Aliases: []string{"s"},
				Usage:   "snapshot file path or ConfigMap URI; collected live when empty",
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

			exp, err := validator.ExpectationsFromFile(ctx, cmd.String("expectations"))
			if err != nil {
				return err
			}

			snap, err := loadOrCollectSnapshot(ctx, cmd)
			if err != nil {
				return err
			}

			res, err := validator.New(validator.WithVersion(version)).Validate(ctx, exp, snap)
			if err != nil {
				return fmt.Errorf("failed to validate snapshot: %w", err)
			}

			if err := writeOutput(ctx, cmd, res); err != nil {
				return err
			}

			if cmd.Bool("fail-on-error") && res.Summary.Failed > 0 {
				return fmt.Errorf("%d of %d constraints failed", res.Summary.Failed, res.Summary.Total)
			}
			return nil
		},
	}
}

func loadOrCollectSnapshot(ctx context.Context, cmd *cli.Command) (*snapshotter.Snapshot, error) {
	if path := cmd.String("snapshot"); path != "" {
		slog.Debug("loading snapshot", "path", path)
		return snapshotter.SnapshotFromFile(ctx, path)
	}

	s, err := initSuite(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return newSnapshotter(s, nil, nil, nil).Collect(ctx)
}
