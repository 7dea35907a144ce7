/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package serializer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func TestParseConfigMapURI(t *testing.T) {
	ns, name, err := ParseConfigMapURI("cm://qa/hive-snapshot")
	require.NoError(t, err)
	assert.Equal(t, "qa", ns)
	assert.Equal(t, "hive-snapshot", name)
}

func TestConfigMapWriter_CreateThenUpdate(t *testing.T) {
	ctx := context.Background()
	cs := fake.NewClientset()
	w := NewConfigMapWriter(cs, "qa", "report", FormatJSON)

	require.NoError(t, w.Serialize(ctx, testConfig{Name: "first", Value: 1}))
	require.NoError(t, w.Serialize(ctx, testConfig{Name: "second", Value: 2}))

	cm, err := cs.CoreV1().ConfigMaps("qa").Get(ctx, "report", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "cliharness", cm.Labels[managedByLabel])
	assert.Contains(t, cm.Data["document.json"], "second")

	var got testConfig
	require.NoError(t, ReadConfigMap(ctx, cs, "qa", "report", &got))
	assert.Equal(t, testConfig{Name: "second", Value: 2}, got)
}

func TestConfigMapWriter_TableStoredAsYAML(t *testing.T) {
	ctx := context.Background()
	cs := fake.NewClientset()
	require.NoError(t, NewConfigMapWriter(cs, "qa", "snap", FormatTable).Serialize(ctx, testConfig{Name: "t"}))

	cm, err := cs.CoreV1().ConfigMaps("qa").Get(ctx, "snap", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Contains(t, cm.Data, "document.yaml")
}

func TestReadConfigMap_Missing(t *testing.T) {
	var got testConfig
	assert.Error(t, ReadConfigMap(context.Background(), fake.NewClientset(), "qa", "none", &got))
}
