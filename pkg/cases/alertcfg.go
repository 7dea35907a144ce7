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

type alertCfgCase struct{ meta }

func newAlertCfg() Case {
	return &alertCfgCase{meta{
		name:        "alertcfg",
		description: "add and remove an alert recipient, checking the listing and the audit log",
	}}
}

func readAlertCfg(ctx context.Context, s *suite.Suite) (*parser.AlertCfg, error) {
	res, err := s.MustSucceedHive(ctx, command.AlertCfgShow())
	if err != nil {
		return nil, err
	}
	return parser.ParseAlertCfg(res.Stdout)
}

func (c *alertCfgCase) Run(ctx context.Context, s *suite.Suite) error {
	addr := s.Config.TestEmail

	before, err := readAlertCfg(ctx, s)
	if err != nil {
		return err
	}
	if before.Has("to", addr) {
		return Skip("%s is already an alert recipient", addr)
	}

	mark, err := s.AuditMark(ctx)
	if err != nil {
		return err
	}

	if _, err := s.MustSucceedHive(ctx, command.AlertCfgAdd("to", addr)); err != nil {
		return err
	}
	s.AddCleanup("alertcfg remove "+addr, func(ctx context.Context) error {
		cur, err := readAlertCfg(ctx, s)
		if err != nil {
			return err
		}
		if !cur.Has("to", addr) {
			return nil
		}
		_, err = s.MustSucceedHive(ctx, command.AlertCfgDel("to", addr))
		return err
	})

	after, err := readAlertCfg(ctx, s)
	if err != nil {
		return err
	}
	if !after.Has("to", addr) {
		return cerrors.New(cerrors.ErrCodeMismatch, fmt.Sprintf("%s not listed after add", addr))
	}
	if _, err := s.VerifyAudit(ctx, mark, regexp.QuoteMeta(addr)); err != nil {
		return err
	}

	if _, err := s.MustFailHive(ctx, command.AlertCfgAdd("to", "not-an-address"), "invalid"); err != nil {
		return err
	}

	if _, err := s.MustSucceedHive(ctx, command.AlertCfgDel("to", addr)); err != nil {
		return err
	}
	final, err := readAlertCfg(ctx, s)
	if err != nil {
		return err
	}
	if final.Has("to", addr) {
		return cerrors.New(cerrors.ErrCodeMismatch, fmt.Sprintf("%s still listed after delete", addr))
	}
	return nil
}
