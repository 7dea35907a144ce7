/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cases

import (
	"context"
	"log/slog"

	"github.com/stk5800/cliharness/pkg/command"
	"github.com/stk5800/cliharness/pkg/suite"
)

type rebootCase struct{ meta }

func newReboot() Case {
	return &rebootCase{meta{
		name:        "reboot",
		description: "reboot each cell and wait for it to come back healthy",
		destructive: true,
	}}
}

func (c *rebootCase) Run(ctx context.Context, s *suite.Suite) error {
	return eachCell(ctx, s, func(ctx context.Context, cell *suite.Cell) error {
		if _, err := s.MustSucceed(ctx, cell.ID, command.RebootCell(cell.ID, s.MultiCell())); err != nil {
			return err
		}
		s.InvalidateState()

		if err := s.WaitCellOffline(ctx, cell.ID); err != nil {
			return err
		}
		slog.Info("cell went down", "cell", cell.ID)
		if err := s.WaitCellOnline(ctx, cell.ID); err != nil {
			return err
		}
		slog.Info("cell back online", "cell", cell.ID)
		return s.VerifyHealth(ctx, cell.ID)
	})
}
