/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var dfRe = regexp.MustCompile(`Total:\s*(\d+);\s*Avail:\s*(\d+);\s*Used:\s*(\d+);\s*Usage:\s*([\d.]+)%`)

// DF is a capacity line from df. Sizes are in 1K blocks.
type DF struct {
	Total        int64   `json:"total" yaml:"total"`
	Avail        int64   `json:"avail" yaml:"avail"`
	Used         int64   `json:"used" yaml:"used"`
	UsagePercent float64 `json:"usagePercent" yaml:"usagePercent"`
}

// Consistent checks that Total is Avail+Used and that the printed usage
// matches Used/Total, both within tolerance percentage points.
func (d DF) Consistent(tolerance float64) bool {
	if d.Total == 0 {
		return d.Used == 0 && d.Avail == 0 && d.UsagePercent <= tolerance
	}
	sumDiff := math.Abs(float64(d.Total-(d.Avail+d.Used))) / float64(d.Total) * 100
	if sumDiff > tolerance {
		return false
	}
	computed := float64(d.Used) / float64(d.Total) * 100
	return math.Abs(computed-d.UsagePercent) <= tolerance
}

// DiskUsage is one df -p row.
type DiskUsage struct {
	Disk string `json:"disk" yaml:"disk"`
	DF   `json:",inline" yaml:",inline"`
}

// ParseDF parses the cell-wide df line.
func ParseDF(out string) (*DF, error) {
	for _, line := range SplitLines(out) {
		if strings.HasPrefix(line, "DISK-") {
			continue
		}
		if d, ok := parseDFLine(line); ok {
			return d, nil
		}
	}
	return nil, unexpected("df", "capacity line not found")
}

// ParseDFPhysical parses df -p, one "DISK-n:s: Total: ..." line per disk.
func ParseDFPhysical(out string) ([]DiskUsage, error) {
	var disks []DiskUsage
	for _, line := range SplitLines(out) {
		if !strings.HasPrefix(line, "DISK-") {
			continue
		}
		idx := strings.Index(line, ": Total:")
		if idx < 0 {
			return nil, unexpected("df -p", "malformed disk row %q", line)
		}
		d, ok := parseDFLine(line[idx+2:])
		if !ok {
			return nil, unexpected("df -p", "malformed disk row %q", line)
		}
		disks = append(disks, DiskUsage{Disk: line[:idx], DF: *d})
	}
	if len(disks) == 0 {
		return nil, unexpected("df -p", "no disk rows")
	}
	return disks, nil
}

func parseDFLine(line string) (*DF, bool) {
	m := dfRe.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	total, err1 := strconv.ParseInt(m[1], 10, 64)
	avail, err2 := strconv.ParseInt(m[2], 10, 64)
	used, err3 := strconv.ParseInt(m[3], 10, 64)
	usage, err4 := strconv.ParseFloat(m[4], 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return nil, false
	}
	return &DF{Total: total, Avail: avail, Used: used, UsagePercent: usage}, true
}
