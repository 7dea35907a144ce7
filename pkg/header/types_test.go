/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package header

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	h := New(
		WithKind(KindClusterSnapshot),
		WithAPIVersion("custom/v2"),
		WithMetadata(MetaRunID, "abc"),
	)
	assert.Equal(t, KindClusterSnapshot, h.Kind)
	assert.Equal(t, "custom/v2", h.APIVersion)
	assert.Equal(t, "abc", h.Metadata[MetaRunID])
}

func TestWithMetadata_NilMap(t *testing.T) {
	h := &Header{}
	WithMetadata("k", "v")(h)
	assert.Equal(t, "v", h.Metadata["k"])
}

func TestInit(t *testing.T) {
	h := New(WithMetadata(MetaRunID, "abc"))
	h.Init(KindCLIAcceptanceReport, "v1.2.3")

	assert.Equal(t, KindCLIAcceptanceReport, h.Kind)
	assert.Equal(t, "cliacceptancereport.cliharness.io/v1", h.APIVersion)
	assert.Equal(t, "abc", h.Metadata[MetaRunID], "existing metadata is kept")
	assert.Equal(t, "v1.2.3", h.Metadata[MetaVersion])

	ts, err := time.Parse(time.RFC3339, h.Metadata[MetaTimestamp])
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)
}

func TestInit_NoVersion(t *testing.T) {
	var h Header
	h.Init(KindValidationResult, "")
	_, ok := h.Metadata[MetaVersion]
	assert.False(t, ok)
}
