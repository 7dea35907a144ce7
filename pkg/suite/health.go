/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package suite

import (
	"context"
	"fmt"
	"strings"

	cerrors "github.com/stk5800/cliharness/pkg/errors"
)

// VerifyHealth checks that the cell is online with quorum, every expected
// node and disk is up, and sysstat reports the VIPs cellcfg configured.
func (s *Suite) VerifyHealth(ctx context.Context, cellID int) error {
	cell, err := s.Cell(cellID)
	if err != nil {
		return err
	}
	st, err := s.SysStat(ctx, cellID)
	if err != nil {
		return fmt.Errorf("failed to read health of cell %d: %w", cellID, err)
	}

	var problems []string
	if !st.Online {
		problems = append(problems, "cell is offline")
	}
	if !st.HasQuorum(cell.ExpectedNodes) {
		problems = append(problems, fmt.Sprintf("no quorum: %d of %d nodes online", st.NodesOnline, cell.ExpectedNodes))
	}
	if st.NodesOnline != cell.ExpectedNodes {
		problems = append(problems, fmt.Sprintf("%d nodes online, expected %d", st.NodesOnline, cell.ExpectedNodes))
	}
	if st.DisksOnline != cell.ExpectedDisks {
		problems = append(problems, fmt.Sprintf("%d disks online, expected %d", st.DisksOnline, cell.ExpectedDisks))
	}
	if cell.AdminIP != "" && st.AdminVIP != "" && st.AdminVIP != cell.AdminIP {
		problems = append(problems, fmt.Sprintf("admin VIP %s, cellcfg has %s", st.AdminVIP, cell.AdminIP))
	}
	if cell.DataIP != "" && st.DataVIP != "" && st.DataVIP != cell.DataIP {
		problems = append(problems, fmt.Sprintf("data VIP %s, cellcfg has %s", st.DataVIP, cell.DataIP))
	}

	if len(problems) > 0 {
		return cerrors.New(cerrors.ErrCodeMismatch, fmt.Sprintf("cell %d unhealthy: %s", cellID, strings.Join(problems, "; ")))
	}
	return nil
}
