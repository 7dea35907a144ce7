/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package parser

import (
	"regexp"
	"strings"
)

var (
	sysstatCellRe     = regexp.MustCompile(`^Cell (\d+): (Online|Offline)\.?(?:\s+Estimated Free Space:\s+(.+?))?$`)
	sysstatCountsRe   = regexp.MustCompile(`^(\d+) nodes? online, (\d+) disks? online\.?$`)
	sysstatVIPRe      = regexp.MustCompile(`^Data VIP (\S+), Admin VIP (\S+)$`)
	sysstatServicesRe = regexp.MustCompile(`^Data services (Online|Offline)(?:, Query Engine Status: (\S+))?$`)
)

// SysStat is the parsed sysstat output for one cell.
type SysStat struct {
	CellID             int    `json:"cellId" yaml:"cellId"`
	Online             bool   `json:"online" yaml:"online"`
	FreeSpace          string `json:"freeSpace,omitempty" yaml:"freeSpace,omitempty"`
	NodesOnline        int    `json:"nodesOnline" yaml:"nodesOnline"`
	DisksOnline        int    `json:"disksOnline" yaml:"disksOnline"`
	DataVIP            string `json:"dataVip,omitempty" yaml:"dataVip,omitempty"`
	AdminVIP           string `json:"adminVip,omitempty" yaml:"adminVip,omitempty"`
	DataServicesOnline bool   `json:"dataServicesOnline" yaml:"dataServicesOnline"`
	QueryEngineStatus  string `json:"queryEngineStatus,omitempty" yaml:"queryEngineStatus,omitempty"`
	IntegrityCheck     string `json:"integrityCheck,omitempty" yaml:"integrityCheck,omitempty"`
	ReliabilityCheck   string `json:"reliabilityCheck,omitempty" yaml:"reliabilityCheck,omitempty"`
}

// HasQuorum reports whether the cell is online with a strict majority of
// its expected nodes.
func (s *SysStat) HasQuorum(expectedNodes int) bool {
	if !s.Online || expectedNodes <= 0 {
		return false
	}
	return s.NodesOnline > expectedNodes/2
}

// ParseSysStat parses sysstat output for a single cell.
func ParseSysStat(out string) (*SysStat, error) {
	all, err := ParseSysStatAll(out)
	if err != nil {
		return nil, err
	}
	if len(all) != 1 {
		return nil, unexpected("sysstat", "expected one cell, got %d", len(all))
	}
	return all[0], nil
}

// ParseSysStatAll parses sysstat output for one or more cells; each cell
// block starts with a "Cell N:" line.
func ParseSysStatAll(out string) ([]*SysStat, error) {
	var (
		cells []*SysStat
		cur   *SysStat
		seen  = map[*SysStat]bool{}
	)

	for _, line := range SplitLines(out) {
		if m := sysstatCellRe.FindStringSubmatch(line); m != nil {
			id, err := atoi("sysstat", "cell id", m[1])
			if err != nil {
				return nil, err
			}
			cur = &SysStat{
				CellID:    id,
				Online:    m[2] == "Online",
				FreeSpace: m[3],
			}
			cells = append(cells, cur)
			continue
		}

		if cur == nil {
			return nil, unexpected("sysstat", "data before cell header: %q", line)
		}

		switch {
		case sysstatCountsRe.MatchString(line):
			m := sysstatCountsRe.FindStringSubmatch(line)
			nodes, err := atoi("sysstat", "node count", m[1])
			if err != nil {
				return nil, err
			}
			disks, err := atoi("sysstat", "disk count", m[2])
			if err != nil {
				return nil, err
			}
			cur.NodesOnline, cur.DisksOnline = nodes, disks
			seen[cur] = true
		case sysstatVIPRe.MatchString(line):
			m := sysstatVIPRe.FindStringSubmatch(line)
			if !IsValidIPv4(m[1]) || !IsValidIPv4(m[2]) {
				return nil, unexpected("sysstat", "invalid VIP in %q", line)
			}
			cur.DataVIP, cur.AdminVIP = m[1], m[2]
		case sysstatServicesRe.MatchString(line):
			m := sysstatServicesRe.FindStringSubmatch(line)
			cur.DataServicesOnline = m[1] == "Online"
			cur.QueryEngineStatus = m[2]
		case strings.HasPrefix(line, "Data Integrity check "):
			cur.IntegrityCheck = strings.TrimPrefix(line, "Data Integrity check ")
		case strings.HasPrefix(line, "Data Reliability check "):
			cur.ReliabilityCheck = strings.TrimPrefix(line, "Data Reliability check ")
		default:
			// Informational lines ("Undetected failures can be found...") carry no state.
		}
	}

	if len(cells) == 0 {
		return nil, unexpected("sysstat", "no cell header")
	}
	for _, c := range cells {
		if c.Online && !seen[c] {
			return nil, unexpected("sysstat", "cell %d online but node/disk counts missing", c.CellID)
		}
	}
	return cells, nil
}
