/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/stk5800/cliharness/pkg/collector"
	"github.com/stk5800/cliharness/pkg/measurement"
	"github.com/stk5800/cliharness/pkg/serializer"
	"github.com/stk5800/cliharness/pkg/snapshotter"
	"github.com/stk5800/cliharness/pkg/suite"
)

// initSuite loads the config and discovers the hive.
func initSuite(ctx context.Context, cmd *cli.Command) (*suite.Suite, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	s := suite.New(cfg, newRunner(cfg, cmd.Bool("simulate")))
	if err := s.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize suite: %w", err)
	}
	return s, nil
}

func parseTypes(names []string) ([]measurement.Type, error) {
	types := make([]measurement.Type, 0, len(names))
	for _, n := range names {
		t, ok := measurement.ParseType(n)
		if !ok {
			valid := make([]string, 0, len(measurement.Types))
			for _, t := range measurement.Types {
				valid = append(valid, t.String())
			}
			return nil, fmt.Errorf("unknown measurement type %q, valid types are: %s", n, strings.Join(valid, ", "))
		}
		types = append(types, t)
	}
	return types, nil
}

// newSnapshotter builds a snapshotter over the discovered cells of s.
func newSnapshotter(s *suite.Suite, types []measurement.Type, exclude []string, ser serializer.Serializer) *snapshotter.HiveSnapshotter {
	cells := s.Cells()
	ids := make([]int, 0, len(cells))
	for _, c := range cells {
		ids = append(ids, c.ID)
	}
	return &snapshotter.HiveSnapshotter{
		Version: version,
		Host:    s.Config.AdminHost,
		Factory: collector.NewDefaultFactory(collector.Target{
			Runner:  s.Runner,
			Host:    s.Config.AdminHost,
			Cells:   ids,
			Exclude: exclude,
		}),
		Types:      types,
		Serializer: ser,
	}
}

func typeFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:  "type",
		Usage: "measurement type to collect, can be repeated (default: all)",
	}
}

func excludeFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:  "exclude",
		Usage: "reading name pattern to drop from the snapshot, * matches any run of characters",
	}
}

func snapshotCmd() *cli.Command {
	return &cli.Command{
		Name:                  "snapshot",
		EnableShellCompletion: true,
		Usage:                 "Capture the configuration and health of the hive",
		Description: `Collects sysstat, hwstat, df, cellcfg, hivecfg and ddcfg from every cell
in parallel and writes them as a ClusterSnapshot document.

# Examples

  cliharness snapshot --output snapshot.yaml
  cliharness snapshot --type DF --type SysStat --format table
  cliharness snapshot -o cm://storage/hive-snapshot`,
		Flags: []cli.Flag{
			typeFlag(),
			excludeFlag(),
			outputFlag(),
			formatFlag(serializer.FormatYAML),
			simulateFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}
			types, err := parseTypes(cmd.StringSlice("type"))
			if err != nil {
				return err
			}

			s, err := initSuite(ctx, cmd)
			if err != nil {
				return err
			}

			ser, err := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			if err != nil {
				return fmt.Errorf("failed to create output writer: %w", err)
			}
			if c, ok := ser.(serializer.Closer); ok {
				defer func() { _ = c.Close() }()
			}

			return newSnapshotter(s, types, cmd.StringSlice("exclude"), ser).Measure(ctx)
		},
	}
}
