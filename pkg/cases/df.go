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

// dfTolerance is how far, in percentage points, printed usage may drift
// from the totals after rounding.
const dfTolerance = 0.1

type dfCase struct{ meta }

func newDF() Case {
	return &dfCase{meta{
		name:        "df",
		description: "capacity totals are consistent and df -p covers every disk hwstat lists",
	}}
}

func (c *dfCase) Run(ctx context.Context, s *suite.Suite) error {
	return eachCell(ctx, s, func(ctx context.Context, cell *suite.Cell) error {
		res, err := s.MustSucceed(ctx, cell.ID, command.DFShow(cell.ID, s.MultiCell()))
		if err != nil {
			return err
		}
		total, err := parser.ParseDF(res.Stdout)
		if err != nil {
			return err
		}
		if !total.Consistent(dfTolerance) {
			return cerrors.New(cerrors.ErrCodeMismatch, fmt.Sprintf("inconsistent df totals %+v", *total))
		}

		res, err = s.MustSucceed(ctx, cell.ID, command.DFPhysical(cell.ID, s.MultiCell()))
		if err != nil {
			return err
		}
		disks, err := parser.ParseDFPhysical(res.Stdout)
		if err != nil {
			return err
		}

		hw, err := s.HwStat(ctx, cell.ID)
		if err != nil {
			return err
		}
		if len(disks) != len(hw.Disks) {
			return cerrors.New(cerrors.ErrCodeMismatch,
				fmt.Sprintf("df -p lists %d disks, hwstat lists %d", len(disks), len(hw.Disks)))
		}

		var onlineTotal int64
		for _, d := range disks {
			if !d.Consistent(dfTolerance) {
				return cerrors.New(cerrors.ErrCodeMismatch, fmt.Sprintf("inconsistent df -p row for %s: %+v", d.Disk, d.DF))
			}
			fru, ok := hw.FindFRU(d.Disk)
			if !ok {
				return cerrors.New(cerrors.ErrCodeMismatch, fmt.Sprintf("df -p lists %s which hwstat does not", d.Disk))
			}
			if fru.Online() {
				onlineTotal += d.Total
			}
		}
		if onlineTotal != total.Total {
			return cerrors.New(cerrors.ErrCodeMismatch,
				fmt.Sprintf("online disks hold %d blocks, df reports %d", onlineTotal, total.Total))
		}
		return nil
	})
}
