/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package state

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/stk5800/cliharness/pkg/defaults"
	cerrors "github.com/stk5800/cliharness/pkg/errors"
	"github.com/stk5800/cliharness/pkg/runner"
)

// runOK runs command and turns a non-zero exit into an error.
func runOK(ctx context.Context, r runner.Runner, host, command string) (*runner.Result, error) {
	res, err := r.Run(ctx, host, command)
	if err != nil {
		return nil, fmt.Errorf("failed to run %q: %w", command, err)
	}
	if !res.Success() {
		return nil, cerrors.New(cerrors.ErrCodeCommandFailed,
			fmt.Sprintf("%q exited %d: %s", command, res.ExitCode, strings.TrimSpace(res.Output()))).
			WithContext("host", host)
	}
	return res, nil
}

// shared runs fn once for all concurrent callers of key. fn runs detached
// from any single caller's cancellation, bounded by StateWriteTimeout, and
// each caller stops waiting when its own ctx is done.
func shared(ctx context.Context, g *singleflight.Group, key string, fn func(context.Context) error) error {
	ch := g.DoChan(key, func() (any, error) {
		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaults.StateWriteTimeout)
		defer cancel()
		return nil, fn(wctx)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}
