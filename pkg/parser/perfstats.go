/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package parser

import (
	"regexp"
	"strconv"
)

var (
	perfstatsHeaderRe  = regexp.MustCompile(`^Cell (\d+) Performance Statistics`)
	perfstatsReadingRe = regexp.MustCompile(`([A-Za-z][A-Za-z0-9 /]*?):\s+(-?\d+(?:\.\d+)?)%?`)
)

// PerfStats holds the named readings printed by perfstats.
type PerfStats struct {
	CellID   int                `json:"cellId" yaml:"cellId"`
	Readings map[string]float64 `json:"readings" yaml:"readings"`
	// Order is the order readings were printed in.
	Order []string `json:"-" yaml:"-"`
}

// Get returns the named reading.
func (p *PerfStats) Get(name string) (float64, bool) {
	v, ok := p.Readings[name]
	return v, ok
}

// ParsePerfStats parses perfstats output. Several "Label: number" pairs
// may share one line.
func ParsePerfStats(out string) (*PerfStats, error) {
	lines := SplitLines(out)
	if len(lines) == 0 {
		return nil, unexpected("perfstats", "empty output")
	}

	m := perfstatsHeaderRe.FindStringSubmatch(lines[0])
	if m == nil {
		return nil, unexpected("perfstats", "missing header, got %q", lines[0])
	}
	id, err := atoi("perfstats", "cell id", m[1])
	if err != nil {
		return nil, err
	}

	p := &PerfStats{CellID: id, Readings: make(map[string]float64)}
	for _, line := range lines[1:] {
		matches := perfstatsReadingRe.FindAllStringSubmatch(line, -1)
		if matches == nil {
			return nil, unexpected("perfstats", "line without readings %q", line)
		}
		for _, rm := range matches {
			v, err := strconv.ParseFloat(rm[2], 64)
			if err != nil {
				return nil, unexpected("perfstats", "bad number in %q", line)
			}
			if _, dup := p.Readings[rm[1]]; !dup {
				p.Order = append(p.Order, rm[1])
			}
			p.Readings[rm[1]] = v
		}
	}

	if len(p.Readings) == 0 {
		return nil, unexpected("perfstats", "no readings")
	}
	return p, nil
}
