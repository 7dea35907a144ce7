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

type hwStatCase struct{ meta }

func newHwStat() Case {
	return &hwStatCase{meta{
		name:        "hwstat",
		description: "component table matches the expected node and disk counts and FRU detail agrees with it",
	}}
}

func (c *hwStatCase) Run(ctx context.Context, s *suite.Suite) error {
	return eachCell(ctx, s, func(ctx context.Context, cell *suite.Cell) error {
		hw, err := s.HwStat(ctx, cell.ID)
		if err != nil {
			return err
		}

		if len(hw.Nodes) != cell.ExpectedNodes {
			return cerrors.New(cerrors.ErrCodeMismatch, fmt.Sprintf("%d nodes listed, expected %d", len(hw.Nodes), cell.ExpectedNodes))
		}
		if got := hw.NodesOnline(); got != cell.ExpectedNodes {
			return cerrors.New(cerrors.ErrCodeMismatch, fmt.Sprintf("%d nodes online, expected %d", got, cell.ExpectedNodes))
		}
		if got := hw.DisksOnline(); got != cell.ExpectedDisks {
			return cerrors.New(cerrors.ErrCodeMismatch, fmt.Sprintf("%d disks enabled, expected %d", got, cell.ExpectedDisks))
		}

		nodes := make(map[int]bool, len(hw.Nodes))
		for _, n := range hw.Nodes {
			nodes[n.ID] = true
		}
		for _, d := range hw.Disks {
			if !nodes[d.NodeID] {
				return cerrors.New(cerrors.ErrCodeMismatch, fmt.Sprintf("%s belongs to unknown node %d", d.Name, d.NodeID))
			}
		}

		if len(hw.Nodes) > 0 {
			if err := checkFruDetail(ctx, s, cell.ID, hw.Nodes[0].FruInfo); err != nil {
				return err
			}
		}
		if disk, ok := hw.FirstDisk(); ok {
			if err := checkFruDetail(ctx, s, cell.ID, disk.FruInfo); err != nil {
				return err
			}
		}
		return nil
	})
}

func checkFruDetail(ctx context.Context, s *suite.Suite, cell int, row parser.FruInfo) error {
	res, err := s.MustSucceed(ctx, cell, command.HwStatFru(cell, s.MultiCell(), row.Name))
	if err != nil {
		return err
	}
	d, err := parser.ParseFruDetail(res.Stdout)
	if err != nil {
		return err
	}
	if d.FruInfo != row {
		return cerrors.New(cerrors.ErrCodeMismatch, fmt.Sprintf("hwstat -f %s reports %+v, table has %+v", row.Name, d.FruInfo, row))
	}
	return nil
}
