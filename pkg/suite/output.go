/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package suite

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	cerrors "github.com/stk5800/cliharness/pkg/errors"
)

// normalize trims lines, collapses runs of whitespace and drops blank lines.
func normalize(s string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if f := strings.Fields(line); len(f) > 0 {
			out = append(out, strings.Join(f, " "))
		}
	}
	return out
}

// CompareOutput checks that actual matches expected line by line, ignoring
// whitespace differences. On a mismatch the error names the closest
// expected line.
func CompareOutput(actual, expected string) error {
	got, want := normalize(actual), normalize(expected)

	for i := 0; i < len(got) && i < len(want); i++ {
		if got[i] == want[i] {
			continue
		}
		idx, dist := nearest(got[i], want)
		return cerrors.New(cerrors.ErrCodeUnexpectedOutput,
			fmt.Sprintf("line %d: got %q, want %q (closest expected line %d: %q, distance %d)",
				i+1, got[i], want[i], idx+1, want[idx], dist))
	}

	switch {
	case len(got) > len(want):
		return cerrors.New(cerrors.ErrCodeUnexpectedOutput,
			fmt.Sprintf("%d extra lines, first: %q", len(got)-len(want), got[len(want)]))
	case len(got) < len(want):
		return cerrors.New(cerrors.ErrCodeUnexpectedOutput,
			fmt.Sprintf("%d missing lines, first: %q", len(want)-len(got), want[len(got)]))
	}
	return nil
}

// nearest returns the index and edit distance of the candidate closest to line.
func nearest(line string, candidates []string) (int, int) {
	best, bestDist := 0, -1
	for i, c := range candidates {
		d := levenshtein.ComputeDistance(line, c)
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}

// ContainsAll checks that output contains every fragment, ignoring case and
// whitespace differences.
func ContainsAll(output string, fragments ...string) error {
	hay := strings.ToLower(strings.Join(strings.Fields(output), " "))
	var missing []string
	for _, f := range fragments {
		needle := strings.ToLower(strings.Join(strings.Fields(f), " "))
		if !strings.Contains(hay, needle) {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return cerrors.New(cerrors.ErrCodeUnexpectedOutput,
			fmt.Sprintf("output is missing %q", missing)).
			WithContext("output", truncate(output, 512))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
