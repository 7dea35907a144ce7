/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package snapshotter

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stk5800/cliharness/pkg/collector"
	"github.com/stk5800/cliharness/pkg/header"
	"github.com/stk5800/cliharness/pkg/measurement"
	"github.com/stk5800/cliharness/pkg/serializer"
)

// HiveSnapshotter collects measurements from every collector in parallel
// and serializes the result.
type HiveSnapshotter struct {
	// Version is the harness version stamped into the snapshot.
	Version string

	// Host is the admin host the snapshot was taken from.
	Host string

	// Factory creates the collectors. Required.
	Factory collector.Factory

	// Types limits collection to these measurement types. Empty means all.
	Types []measurement.Type

	// Serializer is the output. If nil, JSON is written to stdout.
	Serializer serializer.Serializer
}

// Measure collects a snapshot and serializes it.
func (n *HiveSnapshotter) Measure(ctx context.Context) error {
	snap, err := n.Collect(ctx)
	if err != nil {
		return err
	}

	if n.Serializer == nil {
		n.Serializer = serializer.NewStdoutWriter(serializer.FormatJSON)
	}
	if err := n.Serializer.Serialize(ctx, snap); err != nil {
		slog.Error("failed to serialize", slog.String("error", err.Error()))
		return fmt.Errorf("failed to serialize: %w", err)
	}
	return nil
}

// Collect runs the collectors concurrently. If any collector fails the
// whole snapshot fails.
func (n *HiveSnapshotter) Collect(ctx context.Context) (*Snapshot, error) {
	if n.Factory == nil {
		return nil, fmt.Errorf("snapshotter has no collector factory")
	}

	types := n.Types
	if len(types) == 0 {
		types = measurement.Types
	}

	slog.Debug("starting hive snapshot", slog.Int("collectors", len(types)))

	start := time.Now()
	defer func() {
		snapshotCollectionDuration.Observe(time.Since(start).Seconds())
	}()

	results := make([]*measurement.Measurement, len(types))
	g, gctx := errgroup.WithContext(ctx)

	for i, t := range types {
		c, err := collector.ForType(n.Factory, t)
		if err != nil {
			return nil, err
		}
		g.Go(func() error {
			collectorStart := time.Now()
			defer func() {
				snapshotCollectorDuration.WithLabelValues(t.String()).Observe(time.Since(collectorStart).Seconds())
			}()

			slog.Debug("collecting", slog.String("type", t.String()))
			m, err := c.Collect(gctx)
			if err != nil {
				slog.Error("collector failed", slog.String("type", t.String()), slog.String("error", err.Error()))
				return fmt.Errorf("failed to collect %s: %w", t, err)
			}
			results[i] = m
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		snapshotCollectionTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	snap := NewSnapshot()
	snap.Init(header.KindClusterSnapshot, n.Version)
	if n.Host != "" {
		snap.Metadata[header.MetaHost] = n.Host
	}
	snap.Measurements = slices.DeleteFunc(results, func(m *measurement.Measurement) bool { return m == nil })

	snapshotCollectionTotal.WithLabelValues("success").Inc()
	snapshotMeasurementCount.Set(float64(len(snap.Measurements)))

	slog.Debug("snapshot collection complete", slog.Int("measurements", len(snap.Measurements)))
	return snap, nil
}

// SnapshotFromFile loads a Snapshot from a file path or cm:// URI.
func SnapshotFromFile(ctx context.Context, path string) (*Snapshot, error) {
	snap, err := serializer.FromFile[Snapshot](ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	if snap.Kind != header.KindClusterSnapshot {
		return nil, fmt.Errorf("%q is a %q document, not a %s", path, snap.Kind, header.KindClusterSnapshot)
	}

	slog.Debug("loaded snapshot",
		slog.String("path", path),
		slog.String("apiVersion", snap.APIVersion),
		slog.Int("measurements", len(snap.Measurements)),
	)
	return snap, nil
}
