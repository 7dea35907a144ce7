/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package snapshotter

import (
	"context"

	"github.com/stk5800/cliharness/pkg/header"
	"github.com/stk5800/cliharness/pkg/measurement"
)

// Snapshotter is the interface that wraps the Measure method.
// Measure collects a snapshot and writes it out.
type Snapshotter interface {
	Measure(ctx context.Context) error
}

// Snapshot is the collected state of a hive.
type Snapshot struct {
	header.Header `json:",inline" yaml:",inline"`

	Measurements []*measurement.Measurement `json:"measurements" yaml:"measurements"`
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{Measurements: make([]*measurement.Measurement, 0)}
}

// Get returns the measurement of type t, or nil.
func (s *Snapshot) Get(t measurement.Type) *measurement.Measurement {
	for _, m := range s.Measurements {
		if m.Type == t {
			return m
		}
	}
	return nil
}
