/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cases

import (
	"context"
	"fmt"

	cerrors "github.com/stk5800/cliharness/pkg/errors"
	"github.com/stk5800/cliharness/pkg/suite"
)

type sysStatCase struct{ meta }

func newSysStat() Case {
	return &sysStatCase{meta{
		name:        "sysstat",
		description: "every cell is online with quorum, full hardware and the configured VIPs",
	}}
}

func (c *sysStatCase) Run(ctx context.Context, s *suite.Suite) error {
	return eachCell(ctx, s, func(ctx context.Context, cell *suite.Cell) error {
		st, err := s.SysStat(ctx, cell.ID)
		if err != nil {
			return err
		}
		if st.CellID != cell.ID {
			return cerrors.New(cerrors.ErrCodeMismatch, fmt.Sprintf("sysstat reported cell %d", st.CellID))
		}
		if !st.DataServicesOnline {
			return cerrors.New(cerrors.ErrCodeMismatch, "data services offline")
		}
		return s.VerifyHealth(ctx, cell.ID)
	})
}
