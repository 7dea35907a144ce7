/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cases

import (
	"context"
	"fmt"

	"github.com/stk5800/cliharness/pkg/command"
	cerrors "github.com/stk5800/cliharness/pkg/errors"
	"github.com/stk5800/cliharness/pkg/parser"
	"github.com/stk5800/cliharness/pkg/suite"
)

type perfStatsCase struct{ meta }

func newPerfStats() Case {
	return &perfStatsCase{meta{
		name:        "perfstats",
		description: "performance statistics are reported for every cell and none is negative",
	}}
}

func (c *perfStatsCase) Run(ctx context.Context, s *suite.Suite) error {
	return eachCell(ctx, s, func(ctx context.Context, cell *suite.Cell) error {
		res, err := s.MustSucceed(ctx, cell.ID, command.PerfStatsSample(cell.ID, s.MultiCell(), 1))
		if err != nil {
			return err
		}
		p, err := parser.ParsePerfStats(res.Stdout)
		if err != nil {
			return err
		}
		if p.CellID != cell.ID {
			return cerrors.New(cerrors.ErrCodeMismatch, fmt.Sprintf("perfstats reported cell %d", p.CellID))
		}
		for _, name := range p.Order {
			if v := p.Readings[name]; v < 0 {
				return cerrors.New(cerrors.ErrCodeMismatch, fmt.Sprintf("%s is negative: %g", name, v))
			}
		}
		if _, err := s.MustFail(ctx, cell.ID, command.Cell(command.Build(command.PerfStats, "-t", "0"), cell.ID, s.MultiCell()), "invalid"); err != nil {
			return err
		}
		return nil
	})
}
