/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/stk5800/cliharness/pkg/cases"
	"github.com/stk5800/cliharness/pkg/collector"
	cerrors "github.com/stk5800/cliharness/pkg/errors"
	"github.com/stk5800/cliharness/pkg/header"
	"github.com/stk5800/cliharness/pkg/history"
	"github.com/stk5800/cliharness/pkg/measurement"
	"github.com/stk5800/cliharness/pkg/simulator"
	"github.com/stk5800/cliharness/pkg/snapshotter"
	"github.com/stk5800/cliharness/pkg/state"
)

const adminHost = "hive-admin"

func get(t *testing.T, h http.Handler, target string, hdr ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func sampleReport() *cases.Report {
	rep := &cases.Report{
		RunID: "run-1",
		Results: []cases.CaseResult{
			{Name: "sysstat", Status: cases.CaseStatusPassed, Started: time.Now()},
			{Name: "ntp", Status: cases.CaseStatusFailed, Message: "ntp server not updated", Started: time.Now()},
		},
		Summary: cases.Summary{Total: 2, Passed: 1, Failed: 1, Status: cases.ReportStatusFail},
	}
	rep.Init(header.KindCLIAcceptanceReport, "v0.1.0")
	rep.Metadata[header.MetaHost] = adminHost
	return rep
}

func TestHealthAndReady(t *testing.T) {
	s := New()
	h := s.Handler()

	w := get(t, h, "/health")
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(t, h, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	s.SetReady(true)
	w = get(t, h, "/ready")
	require.Equal(t, http.StatusOK, w.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ready", resp.Status)

	w = get(t, h, "/ready?format=yaml")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, yaml.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ready", resp.Status)

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))
}

func TestDefaultRoute(t *testing.T) {
	h := New(WithName("cliharness", "v0.1.0")).Handler()

	w := get(t, h, "/")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Name    string   `json:"name"`
		Version string   `json:"version"`
		Ready   bool     `json:"ready"`
		Routes  []string `json:"routes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "cliharness", resp.Name)
	assert.Equal(t, "v0.1.0", resp.Version)
	assert.False(t, resp.Ready)
	assert.Contains(t, resp.Routes, "GET /v1/report")

	w = get(t, h, "/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReport(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		w := get(t, New().Handler(), "/v1/report")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, string(cerrors.ErrCodeUnavailable), decodeError(t, w).Code)
	})

	t.Run("no run yet", func(t *testing.T) {
		h := New(WithReport(func() *cases.Report { return nil })).Handler()
		w := get(t, h, "/v1/report")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.True(t, decodeError(t, w).Retryable)
	})

	t.Run("json", func(t *testing.T) {
		rep := sampleReport()
		h := New(WithReport(func() *cases.Report { return rep })).Handler()
		w := get(t, h, "/v1/report")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, DefaultAPIVersion, w.Header().Get(APIVersionHeader))
		assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

		var got cases.Report
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "run-1", got.RunID)
		assert.Equal(t, header.KindCLIAcceptanceReport, got.Kind)
		assert.Len(t, got.Results, 2)
	})

	t.Run("yaml via query", func(t *testing.T) {
		rep := sampleReport()
		h := New(WithReport(func() *cases.Report { return rep })).Handler()
		w := get(t, h, "/v1/report?format=yaml")
		require.Equal(t, http.StatusOK, w.Code)

		var got cases.Report
		require.NoError(t, yaml.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, cases.ReportStatusFail, got.Summary.Status)
	})
}

func TestState(t *testing.T) {
	sim := simulator.New(simulator.WithCells(0))
	dd := state.NewDataDoctor(sim, adminHost)
	h := New(WithDataDoctor(dd)).Handler()

	w := get(t, h, "/v1/state")
	require.Equal(t, http.StatusOK, w.Code)
	var resp StateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.DataDoctor.Synced)

	w = get(t, h, "/v1/state?sync=true")
	require.Equal(t, http.StatusOK, w.Code)
	resp = StateResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.DataDoctor.Synced)
	assert.Equal(t, state.Defaults(), resp.DataDoctor.Cycles)
}

func TestHistory(t *testing.T) {
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Record(context.Background(), sampleReport()))

	h := New(WithHistory(store)).Handler()

	w := get(t, h, "/v1/history?case=ntp")
	require.Equal(t, http.StatusOK, w.Code)
	var resp HistoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, "ntp", resp.Entries[0].Case)

	w = get(t, h, "/v1/history?limit=zero")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(cerrors.ErrCodeInvalidRequest), decodeError(t, w).Code)
}

func TestSnapshot(t *testing.T) {
	sim := simulator.New(simulator.WithCells(0))
	sn := &snapshotter.HiveSnapshotter{
		Host:    adminHost,
		Factory: collector.NewDefaultFactory(collector.Target{Runner: sim, Host: adminHost, Cells: []int{0}}),
		Types:   []measurement.Type{measurement.TypeSysStat, measurement.TypeDF},
	}
	h := New(WithSnapshotter(sn)).Handler()

	w := get(t, h, "/v1/snapshot")
	require.Equal(t, http.StatusOK, w.Code)

	var snap snapshotter.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, header.KindClusterSnapshot, snap.Kind)
	assert.Len(t, snap.Measurements, 2)
}

func TestMiddleware(t *testing.T) {
	rep := sampleReport()
	cfg := DefaultConfig()
	cfg.RateLimit = 1
	cfg.RateLimitBurst = 1
	h := New(WithConfig(cfg), WithReport(func() *cases.Report { return rep })).Handler()

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/report", nil)
		req.Header.Set("X-Forwarded-For", "10.0.0.1")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Equal(t, http.MethodGet, w.Header().Get("Allow"))
	})

	t.Run("request id echoed", func(t *testing.T) {
		w := get(t, h, "/v1/report", "X-Forwarded-For", "10.0.0.2", RequestIDHeader, "abc")
		assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))
	})

	t.Run("rate limited per client", func(t *testing.T) {
		w := get(t, h, "/v1/report", "X-Forwarded-For", "10.0.0.3")
		assert.Equal(t, http.StatusOK, w.Code)
		w = get(t, h, "/v1/report", "X-Forwarded-For", "10.0.0.3")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "1", w.Header().Get("Retry-After"))

		w = get(t, h, "/v1/report", "X-Forwarded-For", "10.0.0.4")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := New()
	s.SetReady(true)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.False(t, s.isReady())
}
