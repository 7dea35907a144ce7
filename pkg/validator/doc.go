/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package validator checks a hive snapshot against an expectations file.
//
// # Constraint Format
//
// Constraints name a measurement path {Type}.{Subtype}.{Key} and an
// expression:
//
//	constraints:
//	  - name: SysStat.*.online
//	    value: "true"
//	  - name: HwStat.cell-0.disksOnline
//	    value: ">= 60"
//	  - name: DataDoctor.cycles.scan_frags_cycle
//	    value: "== 1209600"
//	  - name: HiveCfg.hive.ntpServers
//	    value: 10.7.224.10
//
// A "*" subtype applies the expression to every subtype, which for cell
// measurements means every cell.
//
// # Supported Operators
//
//   - ">=", "<=", ">", "<" compare numerically
//   - "==", "!=" compare numerically when both sides are numbers,
//     as strings otherwise
//   - no operator is an exact string match
//
// # Usage
//
//	exp, err := validator.ExpectationsFromFile(ctx, "expectations.yaml")
//	snap, err := snapshotter.SnapshotFromFile(ctx, "snapshot.json")
//	result, err := validator.New(validator.WithVersion(version)).Validate(ctx, exp, snap)
//
// Constraints whose path or expression cannot be resolved are skipped and
// make the overall status "partial"; any failed constraint makes it "fail".
package validator
