/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/stk5800/cliharness/pkg/cases"
)

func TestNegotiateAPIVersion(t *testing.T) {
	tests := []struct {
		accept string
		want   string
	}{
		{"", DefaultAPIVersion},
		{"application/json", DefaultAPIVersion},
		{"application/vnd.cliharness.v1+json", "v1"},
		{"application/vnd.cliharness.v1+yaml", "v1"},
		{"text/plain, application/vnd.cliharness.v1+yaml;q=0.9", "v1"},
		{"application/vnd.cliharness.v7+json", DefaultAPIVersion},
		{"application/vnd.cliharness.v1+xml", DefaultAPIVersion},
		{"application/vnd.other.v1+json", DefaultAPIVersion},
	}

	for _, tt := range tests {
		t.Run(tt.accept, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/report", nil)
			req.Header.Set("Accept", tt.accept)
			assert.Equal(t, tt.want, negotiateAPIVersion(req))
		})
	}
}

func TestAPIVersionHeader(t *testing.T) {
	rep := sampleReport()
	h := New(WithReport(func() *cases.Report { return rep })).Handler()

	w := get(t, h, "/v1/report", "Accept", "application/vnd.cliharness.v1+yaml")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "v1", w.Header().Get(APIVersionHeader))

	var got cases.Report
	require.NoError(t, yaml.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, rep.RunID, got.RunID)

	// Unversioned routes do not negotiate.
	w = get(t, h, "/health", "Accept", "application/vnd.cliharness.v1+json")
	assert.Empty(t, w.Header().Get(APIVersionHeader))
}
