/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/stk5800/cliharness/pkg/serializer"
	"github.com/stk5800/cliharness/pkg/state"
)

// CycleState is the data doctor configuration as printed by the state command.
type CycleState struct {
	Cycles map[state.Cycle]int64 `json:"cycles" yaml:"cycles"`
}

// Table implements serializer.Tabler.
func (s CycleState) Table() ([]string, [][]string) {
	rows := make([][]string, 0, len(s.Cycles))
	for _, c := range state.Cycles() {
		v, ok := s.Cycles[c]
		if !ok {
			continue
		}
		rows = append(rows, []string{c.String(), strconv.FormatInt(v, 10)})
	}
	return []string{"cycle", "seconds"}, rows
}

// dataDoctorAction builds a data doctor for the configured hive, applies
// fn, then rereads and prints the configuration.
func dataDoctorAction(fn func(ctx context.Context, cmd *cli.Command, dd *state.DataDoctor) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if _, err := parseOutputFormat(cmd); err != nil {
			return err
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		r := newRunner(cfg, cmd.Bool("simulate"))
		dd := state.NewDataDoctor(r, cfg.AdminHost, state.WithMultiCell(len(cfg.Cells) > 1))

		if fn != nil {
			if err := fn(ctx, cmd, dd); err != nil {
				return err
			}
		}
		if err := dd.Sync(ctx); err != nil {
			return fmt.Errorf("failed to read data doctor configuration: %w", err)
		}
		return writeOutput(ctx, cmd, CycleState{Cycles: dd.Snapshot().Cycles})
	}
}

func stateFlags() []cli.Flag {
	return []cli.Flag{
		outputFlag(),
		formatFlag(serializer.FormatTable),
		simulateFlag(),
	}
}

func stateCmd() *cli.Command {
	return &cli.Command{
		Name:  "state",
		Usage: "Inspect and change the data doctor cycle configuration",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print every cycle interval",
				Flags:  stateFlags(),
				Action: dataDoctorAction(nil),
			},
			{
				Name:      "set",
				Usage:     "Set one cycle interval in seconds, 0 disables it",
				ArgsUsage: "CYCLE SECONDS",
				Flags:     stateFlags(),
				Action: dataDoctorAction(func(ctx context.Context, cmd *cli.Command, dd *state.DataDoctor) error {
					if cmd.Args().Len() != 2 {
						return fmt.Errorf("expected CYCLE SECONDS, got %d arguments", cmd.Args().Len())
					}
					c, err := state.ParseCycle(cmd.Args().Get(0))
					if err != nil {
						return err
					}
					seconds, err := strconv.ParseInt(cmd.Args().Get(1), 10, 64)
					if err != nil {
						return fmt.Errorf("invalid interval %q: %w", cmd.Args().Get(1), err)
					}
					return dd.Set(ctx, c, seconds)
				}),
			},
			{
				Name:  "default",
				Usage: "Restore the factory interval of every cycle",
				Flags: stateFlags(),
				Action: dataDoctorAction(func(ctx context.Context, _ *cli.Command, dd *state.DataDoctor) error {
					return dd.Default(ctx)
				}),
			},
			{
				Name:  "off",
				Usage: "Disable every cycle",
				Flags: stateFlags(),
				Action: dataDoctorAction(func(ctx context.Context, _ *cli.Command, dd *state.DataDoctor) error {
					return dd.Off(ctx)
				}),
			},
		},
	}
}
