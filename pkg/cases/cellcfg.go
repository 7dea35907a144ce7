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
	"github.com/stk5800/cliharness/pkg/state"
	"github.com/stk5800/cliharness/pkg/suite"
)

type cellCfgCase struct{ meta }

func newCellCfg() Case {
	return &cellCfgCase{meta{
		name:        "cellcfg",
		description: "read cell network settings, rewrite the admin VIP unchanged and reject an invalid address",
	}}
}

func readCellCfg(ctx context.Context, s *suite.Suite, cell int) (*parser.CellCfg, error) {
	res, err := s.MustSucceed(ctx, cell, command.CellCfgShow(cell, s.MultiCell()))
	if err != nil {
		return nil, err
	}
	return parser.ParseCellCfg(res.Stdout)
}

func (c *cellCfgCase) Run(ctx context.Context, s *suite.Suite) error {
	return eachCell(ctx, s, func(ctx context.Context, cell *suite.Cell) error {
		cfg, err := readCellCfg(ctx, s, cell.ID)
		if err != nil {
			return err
		}

		got := state.VIPs{Admin: cfg.AdminIP, Data: cfg.DataIP, SP: cfg.SPIP}
		want := state.VIPs{Admin: cell.AdminIP, Data: cell.DataIP, SP: cell.SPIP}
		if got != want {
			return cerrors.New(cerrors.ErrCodeMismatch, fmt.Sprintf("cellcfg reports %+v, suite has %+v", got, want))
		}

		s.State.InvalidateCell(cell.ID)
		cached, err := s.State.VIPs(ctx, cell.ID)
		if err != nil {
			return err
		}
		if cached != got {
			return cerrors.New(cerrors.ErrCodeMismatch, fmt.Sprintf("state cache has %+v, cellcfg reports %+v", cached, got))
		}

		// Same value: the cache must not issue a write.
		if err := s.State.SetAdminVIP(ctx, cell.ID, cfg.AdminIP); err != nil {
			return err
		}

		if _, err := s.MustFail(ctx, cell.ID, command.CellCfgSetAdminIP(cell.ID, s.MultiCell(), "256.1.1.1"), "invalid"); err != nil {
			return err
		}

		after, err := readCellCfg(ctx, s, cell.ID)
		if err != nil {
			return err
		}
		if *after != *cfg {
			return cerrors.New(cerrors.ErrCodeMismatch, fmt.Sprintf("rejected change altered the cell: %+v -> %+v", cfg, after))
		}
		return nil
	})
}
