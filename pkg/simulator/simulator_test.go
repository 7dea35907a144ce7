/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package simulator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/stk5800/cliharness/pkg/command"
	"github.com/stk5800/cliharness/pkg/parser"
	"github.com/stk5800/cliharness/pkg/state"
)

func run(t *testing.T, h *Hive, cmd string) string {
	t.Helper()
	res, err := h.Run(context.Background(), "hive-admin", cmd)
	require.NoError(t, err)
	require.Zero(t, res.ExitCode, "%s: %s", cmd, res.Output())
	return res.Stdout
}

func runFail(t *testing.T, h *Hive, cmd string) string {
	t.Helper()
	res, err := h.Run(context.Background(), "hive-admin", cmd)
	require.NoError(t, err)
	require.NotZero(t, res.ExitCode, cmd)
	return res.Output()
}

func TestOutputsParse(t *testing.T) {
	h := New(WithNodes(4, 2))

	hw, err := parser.ParseHwStat(run(t, h, command.HwStatShow(0, false)))
	require.NoError(t, err)
	assert.Equal(t, 4, hw.NodesOnline())
	assert.Equal(t, 8, hw.DisksOnline())
	assert.Len(t, hw.Switches, 2)
	assert.Len(t, hw.SPs, 1)

	st, err := parser.ParseSysStat(run(t, h, command.SysStatShow(0, false)))
	require.NoError(t, err)
	assert.True(t, st.Online)
	assert.True(t, st.HasQuorum(4))
	assert.Equal(t, "10.7.224.41", st.AdminVIP)

	cc, err := parser.ParseCellCfg(run(t, h, command.CellCfgShow(0, false)))
	require.NoError(t, err)
	assert.Equal(t, st.DataVIP, cc.DataIP)

	_, err = parser.ParseHiveCfg(run(t, h, command.HiveCfgShow()))
	require.NoError(t, err)

	dd, err := parser.ParseDDCfg(run(t, h, command.DDCfgList()))
	require.NoError(t, err)
	assert.Len(t, dd, len(state.Cycles()))

	df, err := parser.ParseDF(run(t, h, command.DFShow(0, false)))
	require.NoError(t, err)
	assert.True(t, df.Consistent(0.1))

	disks, err := parser.ParseDFPhysical(run(t, h, command.DFPhysical(0, false)))
	require.NoError(t, err)
	assert.Len(t, disks, 8)

	ps, err := parser.ParsePerfStats(run(t, h, command.PerfStatsSample(0, false, 1)))
	require.NoError(t, err)
	assert.Contains(t, ps.Readings, "Store Ops/sec")

	_, err = parser.ParseAlertCfg(run(t, h, command.AlertCfgShow()))
	require.NoError(t, err)

	v, err := parser.ParseVersion(run(t, h, command.VersionShow()))
	require.NoError(t, err)
	assert.Equal(t, Release, v.Release)

	d, err := parser.ParseFruDetail(run(t, h, command.HwStatFru(0, false, "DISK-101:0")))
	require.NoError(t, err)
	assert.Equal(t, parser.StatusEnabled, d.Status)
}

func TestMultiCell(t *testing.T) {
	h := New(WithCells(0, 5), WithNodes(2, 1))

	cells, err := parser.ParseHiveAdm(run(t, h, command.HiveAdmStatus()))
	require.NoError(t, err)
	require.Len(t, cells, 2)
	assert.Equal(t, 5, cells[1].ID)

	cc, err := parser.ParseCellCfg(run(t, h, command.CellCfgShow(5, true)))
	require.NoError(t, err)
	assert.Equal(t, cells[1].AdminVIP, cc.AdminIP)

	runFail(t, h, command.CellCfgShow(3, true))
	runFail(t, h, "hiveadm -a 10.0.0.1")
}

func TestConfigChangesAreAudited(t *testing.T) {
	clk := clocktesting.NewFakePassiveClock(time.Date(2025, 3, 1, 9, 5, 0, 0, time.UTC))
	h := New(WithClock(clk))

	mark := len(h.AuditLog())
	run(t, h, command.CellCfgSetAdminIP(0, false, "10.7.224.99"))
	run(t, h, command.DDCfgSet(string(state.ScanFrags), 60))
	run(t, h, command.AlertCfgAdd("to", "qa@example.com"))
	run(t, h, command.HwCfgDisable(0, false, "DISK-101:0"))

	entries := parser.ParseAuditLog(run(t, h, command.AuditSince("/var/adm/messages", mark)))
	require.Len(t, entries, 4)
	assert.Equal(t, "cell 0 admin IP set to 10.7.224.99", entries[0].Message)
	assert.Equal(t, parser.AuditWarning, entries[3].Level)
	assert.Equal(t, 5, entries[0].Time.Minute())

	assert.Contains(t, run(t, h, command.AuditLineCount("/var/adm/messages")), "5 /var/adm/messages")
}

func TestRejectsInvalidInput(t *testing.T) {
	h := New()
	assert.Contains(t, runFail(t, h, command.CellCfgSetAdminIP(0, false, "300.1.1.1")), "Invalid IP address")
	assert.Contains(t, runFail(t, h, command.DDCfgSet("bogus_cycle", 1)), "Unknown cycle")
	assert.Contains(t, runFail(t, h, command.AlertCfgAdd("to", "not-an-address")), "Invalid email")
	assert.Contains(t, runFail(t, h, command.AlertCfgDel("to", "nobody@example.com")), "not a recipient")
	assert.Contains(t, runFail(t, h, command.HiveCfgSetNTP([]string{"bad host!"})), "Invalid NTP server")
	assert.Contains(t, runFail(t, h, command.HwCfgDisable(0, false, "DISK-999:0")), "No such disk")
	assert.Contains(t, runFail(t, h, "ddcfg"), "use -F")

	res, err := h.Run(context.Background(), "hive-admin", "rm -rf /")
	require.NoError(t, err)
	assert.Equal(t, 127, res.ExitCode)
}

func TestRebootAndWipe(t *testing.T) {
	h := New(WithNodes(2, 1), WithRebootPolls(1))
	run(t, h, command.DDCfgOff())

	run(t, h, command.WipeCell(0, false))
	st, err := parser.ParseSysStat(run(t, h, command.SysStatShow(0, false)))
	require.NoError(t, err)
	assert.False(t, st.Online)

	st, err = parser.ParseSysStat(run(t, h, command.SysStatShow(0, false)))
	require.NoError(t, err)
	assert.True(t, st.Online)

	df, err := parser.ParseDF(run(t, h, command.DFShow(0, false)))
	require.NoError(t, err)
	assert.Zero(t, df.Used)

	dd, err := parser.ParseDDCfg(run(t, h, command.DDCfgList()))
	require.NoError(t, err)
	assert.Equal(t, state.Defaults()[state.ScanFrags], dd[string(state.ScanFrags)])
}

func TestSplitArgs(t *testing.T) {
	args, err := splitArgs(`alertcfg add to 'it'\''s@example.com'`)
	require.NoError(t, err)
	assert.Equal(t, []string{"alertcfg", "add", "to", "it's@example.com"}, args)

	_, err = splitArgs("echo 'open")
	assert.Error(t, err)
}
