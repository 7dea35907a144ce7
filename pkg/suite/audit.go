/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package suite

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/stk5800/cliharness/pkg/command"
	cerrors "github.com/stk5800/cliharness/pkg/errors"
	"github.com/stk5800/cliharness/pkg/parser"
)

// AuditMark returns the current line count of the audit log. Pass it to
// VerifyAudit to only look at entries written after the mark.
func (s *Suite) AuditMark(ctx context.Context) (int, error) {
	host := s.Config.AuditHost()
	res, err := s.Runner.Run(ctx, host, command.AuditLineCount(s.Config.AuditLogPath))
	if err != nil {
		return 0, fmt.Errorf("failed to read audit log size: %w", err)
	}
	if !res.Success() {
		return 0, cerrors.New(cerrors.ErrCodeCommandFailed,
			fmt.Sprintf("failed to read audit log size on %s: %s", host, strings.TrimSpace(res.Output())))
	}
	fields := strings.Fields(res.Stdout)
	if len(fields) == 0 {
		return 0, cerrors.New(cerrors.ErrCodeUnexpectedOutput, "empty wc output")
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 {
		return 0, cerrors.New(cerrors.ErrCodeUnexpectedOutput, fmt.Sprintf("invalid line count %q", fields[0]))
	}
	return n, nil
}

// VerifyAudit polls the audit log until, for every pattern, an entry
// written after mark has a message matching it. Patterns are regular
// expressions matched case-insensitively. The matching entries are
// returned in pattern order.
func (s *Suite) VerifyAudit(ctx context.Context, mark int, patterns ...string) ([]parser.AuditEntry, error) {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, cerrors.Wrap(cerrors.ErrCodeInvalidRequest, fmt.Sprintf("invalid audit pattern %q", p), err)
		}
		res = append(res, re)
	}

	found := make([]*parser.AuditEntry, len(res))
	host := s.Config.AuditHost()
	cmd := command.AuditSince(s.Config.AuditLogPath, mark)

	err := s.WaitFor(ctx, "audit entries", s.Config.AuditTimeout.Std(), func(ctx context.Context) (bool, error) {
		out, err := s.Runner.Run(ctx, host, cmd)
		if err != nil || !out.Success() {
			return false, nil
		}
		entries := parser.ParseAuditLog(out.Stdout)
		done := true
		for i, re := range res {
			if found[i] != nil {
				continue
			}
			for j := range entries {
				if re.MatchString(entries[j].Message) {
					found[i] = &entries[j]
					break
				}
			}
			if found[i] == nil {
				done = false
			}
		}
		return done, nil
	})
	if err != nil {
		var missing []string
		for i, f := range found {
			if f == nil {
				missing = append(missing, patterns[i])
			}
		}
		if cerrors.HasCode(err, cerrors.ErrCodeTimeout) {
			return nil, cerrors.Wrap(cerrors.ErrCodeAuditEntryNotFound,
				fmt.Sprintf("no audit entry matching %q after line %d", missing, mark), err)
		}
		return nil, err
	}

	out := make([]parser.AuditEntry, len(found))
	for i, f := range found {
		out[i] = *f
	}
	return out, nil
}
