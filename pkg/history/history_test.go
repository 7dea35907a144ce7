/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stk5800/cliharness/pkg/cases"
	"github.com/stk5800/cliharness/pkg/header"
)

func report(runID string, started time.Time, statuses map[string]cases.CaseStatus) *cases.Report {
	rep := &cases.Report{RunID: runID}
	rep.Init(header.KindCLIAcceptanceReport, "test")
	rep.Metadata[header.MetaHost] = "hive-admin"
	for _, name := range []string{"hwstat", "sysstat"} {
		st, ok := statuses[name]
		if !ok {
			continue
		}
		rep.Results = append(rep.Results, cases.CaseResult{Name: name, Status: st, Started: started, Duration: 1500 * time.Millisecond})
		switch st {
		case cases.CaseStatusPassed:
			rep.Summary.Passed++
		case cases.CaseStatusFailed:
			rep.Summary.Failed++
		}
	}
	rep.Summary.Total = len(rep.Results)
	return rep
}

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sub", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_RecordAndRecent(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Record(ctx, report("run-1", base, map[string]cases.CaseStatus{
		"hwstat": cases.CaseStatusPassed, "sysstat": cases.CaseStatusPassed,
	})))
	require.NoError(t, s.Record(ctx, report("run-2", base.Add(time.Hour), map[string]cases.CaseStatus{
		"hwstat": cases.CaseStatusFailed,
	})))

	got, err := s.Recent(ctx, "hwstat", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "run-2", got[0].RunID)
	assert.Equal(t, cases.CaseStatusFailed, got[0].Status)
	assert.Equal(t, 1500*time.Millisecond, got[0].Duration)
	assert.True(t, got[1].Started.Equal(base))

	all, err := s.Recent(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	limited, err := s.Recent(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestStore_RecordReplacesRun(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	now := time.Now().UTC()

	require.NoError(t, s.Record(ctx, report("run-1", now, map[string]cases.CaseStatus{"hwstat": cases.CaseStatusFailed})))
	require.NoError(t, s.Record(ctx, report("run-1", now, map[string]cases.CaseStatus{"hwstat": cases.CaseStatusPassed})))

	got, err := s.Recent(ctx, "hwstat", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, cases.CaseStatusPassed, got[0].Status)
}

func TestStore_Flaky(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	runs := []map[string]cases.CaseStatus{
		{"hwstat": cases.CaseStatusFailed, "sysstat": cases.CaseStatusPassed},
		{"hwstat": cases.CaseStatusPassed, "sysstat": cases.CaseStatusPassed},
		{"hwstat": cases.CaseStatusPassed, "sysstat": cases.CaseStatusPassed},
	}
	for i, r := range runs {
		require.NoError(t, s.Record(ctx, report("run-"+string(rune('a'+i)), base.Add(time.Duration(i)*time.Hour), r)))
	}

	flaky, err := s.Flaky(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"hwstat"}, flaky)

	flaky, err = s.Flaky(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, flaky)
}

func TestStore_RecordRequiresRunID(t *testing.T) {
	s := openStore(t)
	assert.Error(t, s.Record(context.Background(), &cases.Report{}))
	assert.Error(t, s.Record(context.Background(), nil))
}
