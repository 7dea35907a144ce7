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

// wipeMaxUsage is the highest usage, in percent, accepted after a wipe;
// system metadata is recreated on restart.
const wipeMaxUsage = 1.0

type wipeCase struct{ meta }

func newWipe() Case {
	return &wipeCase{meta{
		name:        "wipe",
		description: "wipe each cell, wait for it to return empty and resync the data doctor",
		destructive: true,
	}}
}

func (c *wipeCase) Run(ctx context.Context, s *suite.Suite) error {
	return eachCell(ctx, s, func(ctx context.Context, cell *suite.Cell) error {
		if _, err := s.MustSucceed(ctx, cell.ID, command.WipeCell(cell.ID, s.MultiCell())); err != nil {
			return err
		}
		s.InvalidateState()

		if err := s.WaitCellOffline(ctx, cell.ID); err != nil {
			return err
		}
		if err := s.WaitCellOnline(ctx, cell.ID); err != nil {
			return err
		}

		res, err := s.MustSucceed(ctx, cell.ID, command.DFShow(cell.ID, s.MultiCell()))
		if err != nil {
			return err
		}
		df, err := parser.ParseDF(res.Stdout)
		if err != nil {
			return err
		}
		if df.UsagePercent > wipeMaxUsage {
			return cerrors.New(cerrors.ErrCodeMismatch, fmt.Sprintf("usage %.1f%% after wipe", df.UsagePercent))
		}

		if err := s.DataDoctor.Sync(ctx); err != nil {
			return fmt.Errorf("failed to resync data doctor after wipe: %w", err)
		}
		return s.VerifyHealth(ctx, cell.ID)
	})
}
