/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package parser

import (
	"strconv"
	"strings"
)

// FruType is the Type column of hwstat.
type FruType string

const (
	FruNode   FruType = "NODE"
	FruDisk   FruType = "DISK"
	FruSwitch FruType = "SWITCH"
	FruSP     FruType = "SP"
)

// FRU statuses reported by hwstat.
const (
	StatusOnline   = "ONLINE"
	StatusOffline  = "OFFLINE"
	StatusEnabled  = "ENABLED"
	StatusDisabled = "DISABLED"
	StatusMissing  = "MISSING"
	StatusActive   = "ACTIVE"
	StatusStandby  = "STANDBY"
)

// FruInfo is one row of the hwstat table.
type FruInfo struct {
	Name   string  `json:"name" yaml:"name"`
	Type   FruType `json:"type" yaml:"type"`
	FruID  string  `json:"fruId" yaml:"fruId"`
	Status string  `json:"status" yaml:"status"`
}

// Up reports whether the status counts as in service.
func (f FruInfo) Up() bool {
	switch f.Status {
	case StatusOnline, StatusEnabled, StatusActive, StatusStandby:
		return true
	default:
		return false
	}
}

// Online reports whether a disk row is serving data. Firmware reports
// either ONLINE or ENABLED.
func (f FruInfo) Online() bool {
	return f.Status == StatusOnline || f.Status == StatusEnabled
}

// NodeStat is a NODE-<id> row.
type NodeStat struct {
	FruInfo `json:",inline" yaml:",inline"`
	ID      int `json:"id" yaml:"id"`
}

// DiskStat is a DISK-<node>:<slot> row.
type DiskStat struct {
	FruInfo `json:",inline" yaml:",inline"`
	NodeID  int `json:"nodeId" yaml:"nodeId"`
	Slot    int `json:"slot" yaml:"slot"`
}

// SwitchFru is a SWITCH-<n> row.
type SwitchFru struct {
	FruInfo `json:",inline" yaml:",inline"`
	Index   int `json:"index" yaml:"index"`
}

// Active reports whether this switch is carrying traffic.
func (s SwitchFru) Active() bool {
	return s.Status == StatusActive
}

// SPFru is the service processor row.
type SPFru struct {
	FruInfo `json:",inline" yaml:",inline"`
}

// HwStat is the parsed hwstat table.
type HwStat struct {
	Nodes    []NodeStat  `json:"nodes" yaml:"nodes"`
	Disks    []DiskStat  `json:"disks" yaml:"disks"`
	Switches []SwitchFru `json:"switches" yaml:"switches"`
	SPs      []SPFru     `json:"sps" yaml:"sps"`
	// FRUs holds every row in output order.
	FRUs []FruInfo `json:"frus" yaml:"frus"`
}

// NodesOnline counts nodes reporting ONLINE.
func (h *HwStat) NodesOnline() int {
	n := 0
	for _, node := range h.Nodes {
		if node.Status == StatusOnline {
			n++
		}
	}
	return n
}

// DisksOnline counts disks reporting ONLINE or ENABLED.
func (h *HwStat) DisksOnline() int {
	n := 0
	for _, d := range h.Disks {
		if d.Online() {
			n++
		}
	}
	return n
}

// DisksOnNode returns the disks attached to node id.
func (h *HwStat) DisksOnNode(id int) []DiskStat {
	var out []DiskStat
	for _, d := range h.Disks {
		if d.NodeID == id {
			out = append(out, d)
		}
	}
	return out
}

// FindFRU returns the row named name.
func (h *HwStat) FindFRU(name string) (FruInfo, bool) {
	for _, f := range h.FRUs {
		if f.Name == name {
			return f, true
		}
	}
	return FruInfo{}, false
}

// FirstDisk returns the first online disk.
func (h *HwStat) FirstDisk() (DiskStat, bool) {
	for _, d := range h.Disks {
		if d.Online() {
			return d, true
		}
	}
	return DiskStat{}, false
}

// ParseHwStat parses the hwstat component table.
func ParseHwStat(out string) (*HwStat, error) {
	lines := SplitLines(out)

	start := -1
	for i, l := range lines {
		if strings.HasPrefix(l, "Component") && strings.Contains(l, "Status") {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil, unexpected("hwstat", "table header not found")
	}

	hw := &HwStat{}
	for _, line := range lines[start:] {
		if strings.Trim(line, "- ") == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, unexpected("hwstat", "short row %q", line)
		}

		fru := FruInfo{
			Name:   fields[0],
			Type:   FruType(fields[1]),
			Status: fields[len(fields)-1],
		}
		if len(fields) > 3 {
			fru.FruID = strings.Join(fields[2:len(fields)-1], " ")
		}
		hw.FRUs = append(hw.FRUs, fru)

		switch fru.Type {
		case FruNode:
			id, err := nodeID(fru.Name)
			if err != nil {
				return nil, err
			}
			hw.Nodes = append(hw.Nodes, NodeStat{FruInfo: fru, ID: id})
		case FruDisk:
			node, slot, err := diskID(fru.Name)
			if err != nil {
				return nil, err
			}
			hw.Disks = append(hw.Disks, DiskStat{FruInfo: fru, NodeID: node, Slot: slot})
		case FruSwitch:
			idx, err := suffixInt(fru.Name, "SWITCH-")
			if err != nil {
				return nil, err
			}
			hw.Switches = append(hw.Switches, SwitchFru{FruInfo: fru, Index: idx})
		case FruSP:
			hw.SPs = append(hw.SPs, SPFru{FruInfo: fru})
		default:
			return nil, unexpected("hwstat", "unknown FRU type %q in row %q", fru.Type, line)
		}
	}

	if len(hw.FRUs) == 0 {
		return nil, unexpected("hwstat", "no components listed")
	}
	return hw, nil
}

// NodeName formats a node id the way hwstat prints it.
func NodeName(id int) string {
	return "NODE-" + strconv.Itoa(id)
}

// DiskName formats a disk the way hwstat prints it.
func DiskName(node, slot int) string {
	return "DISK-" + strconv.Itoa(node) + ":" + strconv.Itoa(slot)
}

func nodeID(name string) (int, error) {
	return suffixInt(name, "NODE-")
}

func diskID(name string) (int, int, error) {
	rest, ok := strings.CutPrefix(name, "DISK-")
	if !ok {
		return 0, 0, unexpected("hwstat", "bad disk name %q", name)
	}
	nodePart, slotPart, ok := strings.Cut(rest, ":")
	if !ok {
		return 0, 0, unexpected("hwstat", "bad disk name %q", name)
	}
	node, err := strconv.Atoi(nodePart)
	if err != nil {
		return 0, 0, unexpected("hwstat", "bad node in disk name %q", name)
	}
	slot, err := strconv.Atoi(slotPart)
	if err != nil {
		return 0, 0, unexpected("hwstat", "bad slot in disk name %q", name)
	}
	return node, slot, nil
}

func suffixInt(name, prefix string) (int, error) {
	rest, ok := strings.CutPrefix(name, prefix)
	if !ok {
		return 0, unexpected("hwstat", "expected %s<n>, got %q", prefix, name)
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, unexpected("hwstat", "expected %s<n>, got %q", prefix, name)
	}
	return n, nil
}

// FruDetail is the output of hwstat -f <fru>.
type FruDetail struct {
	FruInfo    `json:",inline" yaml:",inline"`
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// ParseFruDetail parses "Key: value" lines from hwstat -f.
func ParseFruDetail(out string) (*FruDetail, error) {
	d := &FruDetail{Attributes: make(map[string]string)}

	for _, line := range SplitLines(out) {
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			return nil, unexpected("hwstat -f", "line without key %q", line)
		}
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)

		switch key {
		case "Component":
			d.Name = val
		case "Type":
			d.Type = FruType(val)
		case "FRU ID":
			d.FruID = val
		case "Status":
			d.Status = val
		default:
			d.Attributes[key] = val
		}
	}

	if d.Name == "" || d.Status == "" {
		return nil, unexpected("hwstat -f", "component or status missing")
	}
	return d, nil
}
