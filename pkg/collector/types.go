/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package collector

import (
	"context"
	"fmt"
	"strconv"

	cerrors "github.com/stk5800/cliharness/pkg/errors"
	"github.com/stk5800/cliharness/pkg/measurement"
	"github.com/stk5800/cliharness/pkg/runner"
)

// Collector gathers one measurement from the appliance.
// All collectors must support context-based cancellation.
type Collector interface {
	Collect(ctx context.Context) (*measurement.Measurement, error)
}

// Target is the hive a collector talks to. Cell scoped commands are sent
// to Host with a cell selector when the hive has more than one cell.
type Target struct {
	Runner runner.Runner
	Host   string
	Cells  []int

	// Exclude drops matching readings from every subtype.
	Exclude []string
}

func (t Target) multiCell() bool {
	return len(t.Cells) > 1
}

func (t Target) run(ctx context.Context, cmd string) (string, error) {
	res, err := t.Runner.Run(ctx, t.Host, cmd)
	if err != nil {
		return "", fmt.Errorf("failed to run %q: %w", cmd, err)
	}
	if !res.Success() {
		return "", cerrors.New(cerrors.ErrCodeCommandFailed,
			fmt.Sprintf("%q exited %d", cmd, res.ExitCode)).
			WithContext("host", t.Host)
	}
	return res.Stdout, nil
}

// perCell runs cmd against every cell and turns each output into a
// subtype named after the cell.
func (t Target) perCell(ctx context.Context, typ measurement.Type, cmd func(cell int, multi bool) string,
	read func(out string) (map[string]measurement.Reading, error)) (*measurement.Measurement, error) {
	m := measurement.NewMeasurement(typ)
	for _, cell := range t.Cells {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := t.run(ctx, cmd(cell, t.multiCell()))
		if err != nil {
			return nil, err
		}
		data, err := read(out)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s for cell %d: %w", typ, cell, err)
		}
		m.Subtypes = append(m.Subtypes, measurement.Subtype{Name: CellSubtype(cell), Data: data})
	}
	m.Filter(t.Exclude)
	return m, nil
}

// CellSubtype names the subtype holding a cell's readings.
func CellSubtype(cell int) string {
	return "cell-" + strconv.Itoa(cell)
}
