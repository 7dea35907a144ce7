/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cases

import (
	"context"
	"fmt"

	"github.com/google/go-cmp/cmp"

	"github.com/stk5800/cliharness/pkg/command"
	cerrors "github.com/stk5800/cliharness/pkg/errors"
	"github.com/stk5800/cliharness/pkg/parser"
	"github.com/stk5800/cliharness/pkg/suite"
)

type hiveCfgCase struct{ meta }

func newHiveCfg() Case {
	return &hiveCfgCase{meta{
		name:        "hivecfg",
		description: "hive settings parse, NTP round trips unchanged and invalid input is rejected",
	}}
}

func readHiveCfg(ctx context.Context, s *suite.Suite) (*parser.HiveCfg, error) {
	res, err := s.MustSucceedHive(ctx, command.HiveCfgShow())
	if err != nil {
		return nil, err
	}
	return parser.ParseHiveCfg(res.Stdout)
}

func (c *hiveCfgCase) Run(ctx context.Context, s *suite.Suite) error {
	before, err := readHiveCfg(ctx, s)
	if err != nil {
		return err
	}
	if len(before.NTPServers) == 0 {
		return cerrors.New(cerrors.ErrCodeUnexpectedOutput, "no NTP server configured")
	}

	s.State.Invalidate()
	cached, err := s.State.HiveConfig(ctx)
	if err != nil {
		return err
	}
	if diff := cmp.Diff(before, cached); diff != "" {
		return cerrors.New(cerrors.ErrCodeMismatch, "state cache disagrees with hivecfg (-hivecfg +cache):\n"+diff)
	}

	if err := s.State.SetNTPServer(ctx, before.NTPServers...); err != nil {
		return err
	}

	if _, err := s.MustFailHive(ctx, command.HiveCfgSetNTP([]string{"not a host!"}), "invalid"); err != nil {
		return err
	}
	if _, err := s.MustFailHive(ctx, command.HiveCfgSetSMTPPort(70000), "invalid"); err != nil {
		return err
	}

	after, err := readHiveCfg(ctx, s)
	if err != nil {
		return err
	}
	if diff := cmp.Diff(before, after); diff != "" {
		return cerrors.New(cerrors.ErrCodeMismatch, fmt.Sprintf("hive settings changed (-before +after):\n%s", diff))
	}
	return nil
}
