/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package parser

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	cerrors "github.com/stk5800/cliharness/pkg/errors"
)

// ErrUnexpectedOutput is matched (errors.Is) by every parse failure.
var ErrUnexpectedOutput = cerrors.New(cerrors.ErrCodeUnexpectedOutput, "")

func unexpected(command, format string, args ...any) error {
	return cerrors.New(cerrors.ErrCodeUnexpectedOutput, fmt.Sprintf(format, args...)).
		WithContext("command", command)
}

// atoi parses a decimal field matched by a regexp. The digits are already
// validated, so only out-of-range values fail.
func atoi(command, field, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, unexpected(command, "%s %q out of range", field, s)
	}
	return n, nil
}

// SplitLines splits s into trimmed, non-empty lines.
func SplitLines(s string) []string {
	raw := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// IsValidIPv4 reports whether s is a dotted-quad IPv4 address.
func IsValidIPv4(s string) bool {
	addr, err := netip.ParseAddr(s)
	return err == nil && addr.Is4()
}
