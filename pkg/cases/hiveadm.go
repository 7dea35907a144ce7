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

type hiveAdmCase struct{ meta }

func newHiveAdm() Case {
	return &hiveAdmCase{meta{
		name:        "hiveadm",
		description: "hive status lists every cell with the VIPs cellcfg reports and rejects non-admin options",
	}}
}

func (c *hiveAdmCase) Run(ctx context.Context, s *suite.Suite) error {
	res, err := s.MustSucceedHive(ctx, command.HiveAdmStatus())
	if err != nil {
		return err
	}
	listed, err := parser.ParseHiveAdm(res.Stdout)
	if err != nil {
		return err
	}
	byID := make(map[int]parser.HiveCell, len(listed))
	for _, h := range listed {
		byID[h.ID] = h
	}

	for _, cell := range s.Cells() {
		h, ok := byID[cell.ID]
		if !ok {
			return cerrors.New(cerrors.ErrCodeMismatch, fmt.Sprintf("cell %d missing from hiveadm", cell.ID))
		}
		if h.AdminVIP != cell.AdminIP || h.DataVIP != cell.DataIP {
			return cerrors.New(cerrors.ErrCodeMismatch,
				fmt.Sprintf("cell %d: hiveadm has admin %s data %s, cellcfg has admin %s data %s",
					cell.ID, h.AdminVIP, h.DataVIP, cell.AdminIP, cell.DataIP))
		}
	}
	for _, cfg := range s.Config.Cells {
		if _, ok := byID[cfg.ID]; !ok {
			return cerrors.New(cerrors.ErrCodeMismatch, fmt.Sprintf("configured cell %d is not in the hive", cfg.ID))
		}
	}

	if _, err := s.MustFailHive(ctx, command.Build(command.HiveAdm, "-a", "10.0.0.1")); err != nil {
		return err
	}
	if _, err := s.MustFailHive(ctx, command.Build(command.HiveAdm, "-r", "0")); err != nil {
		return err
	}
	return nil
}
