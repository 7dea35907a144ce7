/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package collector turns appliance command output into measurements.
//
// Each collector runs one read-only command (sysstat, hwstat, df, cellcfg,
// hivecfg with alertcfg, ddcfg) and maps the parsed result to readings.
// Cell scoped collectors produce one subtype per cell, named "cell-<id>";
// hive wide collectors produce a single subtype.
//
// Collectors are created through a Factory so snapshotter tests can swap
// in stubs:
//
//	f := collector.NewDefaultFactory(collector.Target{
//		Runner: r,
//		Host:   cfg.AdminHost,
//		Cells:  []int{0, 1},
//	})
//	m, err := f.CreateSysStatCollector().Collect(ctx)
package collector
