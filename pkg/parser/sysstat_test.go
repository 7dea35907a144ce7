/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sysstatOnline = `Cell 0: Online. Estimated Free Space: 9.88 TB
16 nodes online, 64 disks online.
Data VIP 10.7.224.42, Admin VIP 10.7.224.41
Data services Online, Query Engine Status: HAFaultTolerant
Data Integrity check last completed at Tue Jan 15 10:12:01 UTC 2008
Data Reliability check last completed at Tue Jan 15 09:01:44 UTC 2008
Undetected failures can be found by the next Data Integrity check
`

func TestParseSysStat(t *testing.T) {
	s, err := ParseSysStat(sysstatOnline)
	require.NoError(t, err)

	assert.Equal(t, &SysStat{
		CellID:             0,
		Online:             true,
		FreeSpace:          "9.88 TB",
		NodesOnline:        16,
		DisksOnline:        64,
		DataVIP:            "10.7.224.42",
		AdminVIP:           "10.7.224.41",
		DataServicesOnline: true,
		QueryEngineStatus:  "HAFaultTolerant",
		IntegrityCheck:     "last completed at Tue Jan 15 10:12:01 UTC 2008",
		ReliabilityCheck:   "last completed at Tue Jan 15 09:01:44 UTC 2008",
	}, s)
}

func TestParseSysStat_Offline(t *testing.T) {
	s, err := ParseSysStat("Cell 3: Offline.\n")
	require.NoError(t, err)
	assert.Equal(t, 3, s.CellID)
	assert.False(t, s.Online)
	assert.False(t, s.HasQuorum(16))
}

func TestParseSysStatAll(t *testing.T) {
	out := sysstatOnline + `
Cell 5: Online. Estimated Free Space: 10.1 TB
8 nodes online, 31 disks online.
Data VIP 10.7.225.42, Admin VIP 10.7.225.41
Data services Offline
`
	cells, err := ParseSysStatAll(out)
	require.NoError(t, err)
	require.Len(t, cells, 2)

	assert.Equal(t, 5, cells[1].CellID)
	assert.Equal(t, 31, cells[1].DisksOnline)
	assert.False(t, cells[1].DataServicesOnline)
	assert.Empty(t, cells[1].QueryEngineStatus)

	_, err = ParseSysStat(out)
	assert.Error(t, err, "single-cell parser rejects two cells")
}

func TestSysStat_HasQuorum(t *testing.T) {
	tests := []struct {
		online   bool
		nodes    int
		expected int
		want     bool
	}{
		{true, 16, 16, true},
		{true, 9, 16, true},
		{true, 8, 16, false},
		{true, 5, 8, true},
		{true, 4, 8, false},
		{false, 16, 16, false},
		{true, 1, 0, false},
	}

	for _, tt := range tests {
		s := &SysStat{Online: tt.online, NodesOnline: tt.nodes}
		assert.Equal(t, tt.want, s.HasQuorum(tt.expected), "online=%v nodes=%d/%d", tt.online, tt.nodes, tt.expected)
	}
}

func TestParseSysStat_Errors(t *testing.T) {
	tests := []struct {
		name string
		out  string
	}{
		{"empty", ""},
		{"no cell header", "16 nodes online, 64 disks online.\n"},
		{"online without counts", "Cell 0: Online.\n"},
		{"bad vip", "Cell 0: Online.\n16 nodes online, 64 disks online.\nData VIP 10.7.224, Admin VIP 10.7.224.41\n"},
		{"cell id out of range", "Cell 99999999999999999999: Online.\n16 nodes online, 64 disks online.\n"},
		{"disk count out of range", "Cell 0: Online.\n16 nodes online, 99999999999999999999 disks online.\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSysStat(tt.out)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnexpectedOutput))
		})
	}
}
