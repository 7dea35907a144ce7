/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package collector_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stk5800/cliharness/pkg/collector"
	"github.com/stk5800/cliharness/pkg/command"
	cerrors "github.com/stk5800/cliharness/pkg/errors"
	"github.com/stk5800/cliharness/pkg/measurement"
	"github.com/stk5800/cliharness/pkg/runner"
	"github.com/stk5800/cliharness/pkg/simulator"
	"github.com/stk5800/cliharness/pkg/state"
)

const adminHost = "hive-admin"

func target(h *simulator.Hive, cells ...int) collector.Target {
	return collector.Target{Runner: h, Host: adminHost, Cells: cells}
}

func TestDefaultFactory_AllTypes(t *testing.T) {
	h := simulator.New(simulator.WithCells(0, 1), simulator.WithNodes(4, 2))
	f := collector.NewDefaultFactory(target(h, 0, 1))

	for _, typ := range measurement.Types {
		t.Run(typ.String(), func(t *testing.T) {
			c, err := collector.ForType(f, typ)
			require.NoError(t, err)

			m, err := c.Collect(context.Background())
			require.NoError(t, err)
			assert.Equal(t, typ, m.Type)
			assert.NotEmpty(t, m.Subtypes)
		})
	}
}

func TestForType_Unknown(t *testing.T) {
	_, err := collector.ForType(collector.NewDefaultFactory(collector.Target{}), "GPU")
	assert.True(t, cerrors.HasCode(err, cerrors.ErrCodeInvalidRequest))
}

func TestSysStatCollector_PerCell(t *testing.T) {
	h := simulator.New(simulator.WithCells(0, 1), simulator.WithNodes(4, 2))
	m, err := (&collector.SysStatCollector{Target: target(h, 0, 1)}).Collect(context.Background())
	require.NoError(t, err)

	require.Len(t, m.Subtypes, 2)
	c1 := m.GetSubtype("cell-1")
	require.NotNil(t, c1)
	assert.Equal(t, "true", c1.Data["online"].String())
	assert.Equal(t, "4", c1.Data["nodesOnline"].String())
	assert.Equal(t, "10.7.225.41", c1.Data["adminVip"].String())
}

func TestHwStatCollector(t *testing.T) {
	h := simulator.New(simulator.WithNodes(4, 2))
	_, err := h.Run(context.Background(), adminHost, command.HwCfgDisable(0, false, "DISK-101:0"))
	require.NoError(t, err)

	m, err := (&collector.HwStatCollector{Target: target(h, 0)}).Collect(context.Background())
	require.NoError(t, err)

	c0 := m.GetSubtype(collector.CellSubtype(0))
	require.NotNil(t, c0)
	assert.Equal(t, int64(8), c0.Data["disks"].Any())
	assert.Equal(t, int64(7), c0.Data["disksOnline"].Any())
	assert.Equal(t, "DISABLED", c0.Data["DISK-101:0"].String())
	assert.NotEmpty(t, c0.Data["activeSwitch"].String())
}

func TestDFCollector(t *testing.T) {
	h := simulator.New(simulator.WithNodes(2, 2))
	m, err := (&collector.DFCollector{Target: target(h, 0)}).Collect(context.Background())
	require.NoError(t, err)

	c0 := m.GetSubtype("cell-0")
	require.NotNil(t, c0)
	assert.Equal(t, int64(4*simulator.DiskKB), c0.Data["total"].Any())
	assert.Equal(t, true, c0.Data["consistent"].Any())
}

func TestHiveCfgCollector_Exclude(t *testing.T) {
	h := simulator.New()
	tg := target(h, 0)
	tg.Exclude = []string{"smtp*", "alert*"}

	m, err := (&collector.HiveCfgCollector{Target: tg}).Collect(context.Background())
	require.NoError(t, err)

	hive := m.GetSubtype(collector.HiveSubtype)
	require.NotNil(t, hive)
	assert.Equal(t, "10.7.224.10", hive.Data["ntpServers"].String())
	assert.NotContains(t, hive.Data, "smtpPort")
	assert.NotContains(t, hive.Data, "alertTo")
}

func TestDataDoctorCollector(t *testing.T) {
	h := simulator.New()
	m, err := (&collector.DataDoctorCollector{Target: target(h, 0)}).Collect(context.Background())
	require.NoError(t, err)

	cycles := m.GetSubtype(collector.CyclesSubtype)
	require.NotNil(t, cycles)
	for c, v := range state.Defaults() {
		assert.Equal(t, v, cycles.Data[c.String()].Any(), c)
	}
}

func TestCollector_CommandFailure(t *testing.T) {
	f := runner.NewFake()
	f.OnResponse(command.SysStatShow(0, false), runner.Response{Stderr: "sysstat: internal error", ExitCode: 1})

	_, err := (&collector.SysStatCollector{Target: collector.Target{Runner: f, Host: adminHost, Cells: []int{0}}}).
		Collect(context.Background())
	assert.True(t, cerrors.HasCode(err, cerrors.ErrCodeCommandFailed))
}

func TestCollector_BadOutput(t *testing.T) {
	f := runner.NewFake()
	f.On(command.DFShow(0, false), "garbage")

	_, err := (&collector.DFCollector{Target: collector.Target{Runner: f, Host: adminHost, Cells: []int{0}}}).
		Collect(context.Background())
	assert.True(t, cerrors.HasCode(err, cerrors.ErrCodeUnexpectedOutput))
}
