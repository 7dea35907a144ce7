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
	"github.com/stk5800/cliharness/pkg/state"
	"github.com/stk5800/cliharness/pkg/suite"
)

// ddcfgTestValue is written to every cycle; two hours is never a default.
const ddcfgTestValue = 7200

type ddCfgCase struct{ meta }

func newDDCfg() Case {
	return &ddCfgCase{meta{
		name:        "ddcfg",
		description: "set every data doctor cycle, read it back, restore defaults and the original values",
	}}
}

func (c *ddCfgCase) Run(ctx context.Context, s *suite.Suite) error {
	dd := s.DataDoctor
	if err := dd.Sync(ctx); err != nil {
		return err
	}
	original := dd.Snapshot().Cycles
	s.AddCleanup("ddcfg restore", func(ctx context.Context) error {
		return dd.SetAll(ctx, original)
	})

	mark, err := s.AuditMark(ctx)
	if err != nil {
		return err
	}

	for _, cy := range state.Cycles() {
		want := int64(ddcfgTestValue)
		if original[cy] == want {
			want += 3600
		}
		if err := dd.Set(ctx, cy, want); err != nil {
			return err
		}
		got, err := dd.Get(ctx, cy)
		if err != nil {
			return err
		}
		if got != want {
			return cerrors.New(cerrors.ErrCodeMismatch, fmt.Sprintf("%s is %d, want %d", cy, got, want))
		}
	}
	if _, err := s.VerifyAudit(ctx, mark, string(state.PopulateExtCache)); err != nil {
		return err
	}

	if _, err := s.MustFailHive(ctx, command.DDCfgSet("no_such_cycle", 60), "unknown"); err != nil {
		return err
	}
	if _, err := s.MustFailHive(ctx, command.DDCfgSet(string(state.ScanFrags), -5), "invalid"); err != nil {
		return err
	}

	if err := dd.Default(ctx); err != nil {
		return err
	}
	defaults := state.Defaults()
	for _, cy := range state.Cycles() {
		got, err := dd.Get(ctx, cy)
		if err != nil {
			return err
		}
		if got != defaults[cy] {
			return cerrors.New(cerrors.ErrCodeMismatch, fmt.Sprintf("%s is %d after default, want %d", cy, got, defaults[cy]))
		}
	}
	return nil
}
