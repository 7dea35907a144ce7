/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cases

import (
	"context"
	"fmt"
	"regexp"

	"github.com/stk5800/cliharness/pkg/command"
	cerrors "github.com/stk5800/cliharness/pkg/errors"
	"github.com/stk5800/cliharness/pkg/parser"
	"github.com/stk5800/cliharness/pkg/suite"
)

type hwCfgCase struct{ meta }

func newHwCfg() Case {
	return &hwCfgCase{meta{
		name:        "hwcfg",
		description: "disable a disk, check hwstat and the audit log, then re-enable it",
	}}
}

func (c *hwCfgCase) Run(ctx context.Context, s *suite.Suite) error {
	cells := s.Cells()
	if len(cells) == 0 {
		return Skip("no cells")
	}
	cell := cells[0]
	multi := s.MultiCell()

	hw, err := s.HwStat(ctx, cell.ID)
	if err != nil {
		return err
	}
	disk, ok := hw.FirstDisk()
	if !ok {
		return Skip("cell %d has no enabled disk", cell.ID)
	}
	onlineBefore := hw.DisksOnline()

	mark, err := s.AuditMark(ctx)
	if err != nil {
		return err
	}

	if _, err := s.MustSucceed(ctx, cell.ID, command.HwCfgDisable(cell.ID, multi, disk.Name)); err != nil {
		return err
	}
	s.AddCleanup("hwcfg enable "+disk.Name, func(ctx context.Context) error {
		_, err := s.MustSucceed(ctx, cell.ID, command.HwCfgEnable(cell.ID, multi, disk.Name))
		return err
	})

	if err := waitDisk(ctx, s, cell.ID, disk.Name, parser.StatusDisabled, func(f parser.FruInfo) bool { return f.Status == parser.StatusDisabled }); err != nil {
		return err
	}
	if _, err := s.VerifyAudit(ctx, mark, regexp.QuoteMeta(disk.Name)+".*disabled"); err != nil {
		return err
	}

	if _, err := s.MustSucceed(ctx, cell.ID, command.HwCfgEnable(cell.ID, multi, disk.Name)); err != nil {
		return err
	}
	if err := waitDisk(ctx, s, cell.ID, disk.Name, "online", parser.FruInfo.Online); err != nil {
		return err
	}
	if _, err := s.VerifyAudit(ctx, mark, regexp.QuoteMeta(disk.Name)+".*enabled"); err != nil {
		return err
	}

	hw, err = s.HwStat(ctx, cell.ID)
	if err != nil {
		return err
	}
	if got := hw.DisksOnline(); got != onlineBefore {
		return cerrors.New(cerrors.ErrCodeMismatch, fmt.Sprintf("%d disks online after re-enable, was %d", got, onlineBefore))
	}

	if _, err := s.MustFail(ctx, cell.ID, command.HwCfgDisable(cell.ID, multi, "DISK-999:99"), "no such"); err != nil {
		return err
	}
	return nil
}

func waitDisk(ctx context.Context, s *suite.Suite, cell int, name, state string, want func(parser.FruInfo) bool) error {
	return s.WaitFor(ctx, fmt.Sprintf("%s %s", name, state), s.Config.CommandTimeout.Std(),
		func(ctx context.Context) (bool, error) {
			hw, err := s.HwStat(ctx, cell)
			if err != nil {
				return false, nil
			}
			fru, ok := hw.FindFRU(name)
			return ok && want(fru), nil
		})
}
