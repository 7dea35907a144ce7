/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package suite

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/stk5800/cliharness/pkg/command"
	cerrors "github.com/stk5800/cliharness/pkg/errors"
	"github.com/stk5800/cliharness/pkg/parser"
)

// Condition is polled by WaitFor until it reports done or fails.
type Condition func(ctx context.Context) (bool, error)

// WaitFor polls cond every PollInterval, starting immediately, until it
// reports done, returns an error or timeout elapses.
func (s *Suite) WaitFor(ctx context.Context, what string, timeout time.Duration, cond Condition) error {
	start := time.Now()
	err := wait.PollUntilContextTimeout(ctx, s.Config.PollInterval.Std(), timeout, true, wait.ConditionWithContextFunc(cond))
	if err == nil {
		slog.Debug("wait satisfied", "what", what, "elapsed", time.Since(start))
		return nil
	}
	if wait.Interrupted(err) {
		if ctx.Err() != nil {
			return fmt.Errorf("waiting for %s: %w", what, ctx.Err())
		}
		return cerrors.Wrap(cerrors.ErrCodeTimeout, fmt.Sprintf("timed out after %s waiting for %s", timeout, what), err)
	}
	return fmt.Errorf("waiting for %s: %w", what, err)
}

// WaitCellOnline waits until the cell reports online with quorum.
// Unreachable hosts and failing commands count as not yet online.
func (s *Suite) WaitCellOnline(ctx context.Context, cellID int) error {
	cell, err := s.Cell(cellID)
	if err != nil {
		return err
	}
	return s.WaitFor(ctx, fmt.Sprintf("cell %d online", cellID), s.Config.RebootTimeout.Std(),
		func(ctx context.Context) (bool, error) {
			st, ok := s.pollSysStat(ctx, cellID)
			return ok && st.HasQuorum(cell.ExpectedNodes), nil
		})
}

// WaitCellOffline waits until the cell stops answering or reports offline.
func (s *Suite) WaitCellOffline(ctx context.Context, cellID int) error {
	if _, err := s.Cell(cellID); err != nil {
		return err
	}
	return s.WaitFor(ctx, fmt.Sprintf("cell %d offline", cellID), s.Config.RebootTimeout.Std(),
		func(ctx context.Context) (bool, error) {
			st, ok := s.pollSysStat(ctx, cellID)
			return !ok || !st.Online, nil
		})
}

func (s *Suite) pollSysStat(ctx context.Context, cellID int) (*parser.SysStat, bool) {
	res, err := s.CLI(ctx, cellID, command.SysStatShow(cellID, s.MultiCell()))
	if err != nil || !res.Success() {
		return nil, false
	}
	st, err := parser.ParseSysStat(res.Stdout)
	if err != nil {
		return nil, false
	}
	return st, true
}
