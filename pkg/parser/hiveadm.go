/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package parser

import (
	"regexp"
)

var (
	hiveadmCountRe = regexp.MustCompile(`^There (?:is|are) (\d+) cells? in the hive:?$`)
	hiveadmCellRe  = regexp.MustCompile(`^-?\s*Cell (\d+): adminVIP = (\S+), dataVIP = (\S+)$`)
)

// HiveCell is one cell listed by hiveadm -s.
type HiveCell struct {
	ID       int    `json:"id" yaml:"id"`
	AdminVIP string `json:"adminVip" yaml:"adminVip"`
	DataVIP  string `json:"dataVip" yaml:"dataVip"`
}

// ParseHiveAdm parses hiveadm -s. The cell count in the header must match
// the number of cell lines.
func ParseHiveAdm(out string) ([]HiveCell, error) {
	lines := SplitLines(out)
	if len(lines) == 0 {
		return nil, unexpected("hiveadm", "empty output")
	}

	m := hiveadmCountRe.FindStringSubmatch(lines[0])
	if m == nil {
		return nil, unexpected("hiveadm", "missing cell count header, got %q", lines[0])
	}
	want, err := atoi("hiveadm", "cell count", m[1])
	if err != nil {
		return nil, err
	}

	cells := make([]HiveCell, 0, want)
	seen := make(map[int]bool, want)
	for _, line := range lines[1:] {
		cm := hiveadmCellRe.FindStringSubmatch(line)
		if cm == nil {
			return nil, unexpected("hiveadm", "malformed cell line %q", line)
		}
		id, err := atoi("hiveadm", "cell id", cm[1])
		if err != nil {
			return nil, err
		}
		if seen[id] {
			return nil, unexpected("hiveadm", "cell %d listed twice", id)
		}
		seen[id] = true
		if !IsValidIPv4(cm[2]) || !IsValidIPv4(cm[3]) {
			return nil, unexpected("hiveadm", "invalid VIP in %q", line)
		}
		cells = append(cells, HiveCell{ID: id, AdminVIP: cm[2], DataVIP: cm[3]})
	}

	if len(cells) != want {
		return nil, unexpected("hiveadm", "header says %d cells, listed %d", want, len(cells))
	}
	return cells, nil
}
