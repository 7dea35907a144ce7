/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package snapshotter

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stk5800/cliharness/pkg/collector"
	"github.com/stk5800/cliharness/pkg/header"
	"github.com/stk5800/cliharness/pkg/measurement"
	"github.com/stk5800/cliharness/pkg/serializer"
	"github.com/stk5800/cliharness/pkg/simulator"
)

func simFactory() collector.Factory {
	h := simulator.New(simulator.WithCells(0, 1), simulator.WithNodes(4, 2))
	return collector.NewDefaultFactory(collector.Target{Runner: h, Host: "hive-admin", Cells: []int{0, 1}})
}

func TestHiveSnapshotter_Collect(t *testing.T) {
	s := &HiveSnapshotter{Version: "v1.2.3", Host: "hive-admin", Factory: simFactory()}
	snap, err := s.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, header.KindClusterSnapshot, snap.Kind)
	assert.Equal(t, "clustersnapshot.cliharness.io/v1", snap.APIVersion)
	assert.Equal(t, "v1.2.3", snap.Metadata[header.MetaVersion])
	assert.Equal(t, "hive-admin", snap.Metadata[header.MetaHost])

	require.Len(t, snap.Measurements, len(measurement.Types))
	for i, typ := range measurement.Types {
		assert.Equal(t, typ, snap.Measurements[i].Type)
	}
	require.NotNil(t, snap.Get(measurement.TypeSysStat))
	assert.Len(t, snap.Get(measurement.TypeSysStat).Subtypes, 2)
}

func TestHiveSnapshotter_Types(t *testing.T) {
	s := &HiveSnapshotter{Factory: simFactory(), Types: []measurement.Type{measurement.TypeDF}}
	snap, err := s.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Measurements, 1)
	assert.Nil(t, snap.Get(measurement.TypeHwStat))
}

type failingCollector struct{}

func (failingCollector) Collect(context.Context) (*measurement.Measurement, error) {
	return nil, errors.New("ssh: connection refused")
}

type failingFactory struct {
	collector.Factory
}

func (failingFactory) CreateHwStatCollector() collector.Collector {
	return failingCollector{}
}

func TestHiveSnapshotter_CollectorFailure(t *testing.T) {
	s := &HiveSnapshotter{Factory: failingFactory{Factory: simFactory()}}
	_, err := s.Collect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HwStat")
}

func TestHiveSnapshotter_NoFactory(t *testing.T) {
	_, err := (&HiveSnapshotter{}).Collect(context.Background())
	assert.Error(t, err)
}

func TestHiveSnapshotter_MeasureAndLoad(t *testing.T) {
	for _, format := range []serializer.Format{serializer.FormatJSON, serializer.FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "snapshot."+format.Ext())
			w, err := serializer.NewFileWriterOrStdout(format, path)
			require.NoError(t, err)

			s := &HiveSnapshotter{Version: "dev", Factory: simFactory(), Serializer: w}
			require.NoError(t, s.Measure(context.Background()))
			require.NoError(t, w.(serializer.Closer).Close())

			snap, err := SnapshotFromFile(context.Background(), path)
			require.NoError(t, err)
			assert.Len(t, snap.Measurements, len(measurement.Types))

			df := snap.Get(measurement.TypeDF).GetSubtype("cell-1")
			require.NotNil(t, df)
			assert.Equal(t, true, df.Data["consistent"].Any())
			assert.IsType(t, int64(0), df.Data["total"].Any())
		})
	}
}

func TestSnapshotFromFile_WrongKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	var buf bytes.Buffer
	h := header.New(header.WithKind(header.KindCLIAcceptanceReport))
	require.NoError(t, serializer.NewWriter(serializer.FormatJSON, &buf).Serialize(context.Background(), h))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	_, err := SnapshotFromFile(context.Background(), path)
	assert.ErrorContains(t, err, "not a ClusterSnapshot")
}
