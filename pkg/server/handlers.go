/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/stk5800/cliharness/pkg/defaults"
	cerrors "github.com/stk5800/cliharness/pkg/errors"
	"github.com/stk5800/cliharness/pkg/history"
	"github.com/stk5800/cliharness/pkg/serializer"
	"github.com/stk5800/cliharness/pkg/state"
)

// StateResponse is the body of /v1/state.
type StateResponse struct {
	DataDoctor state.DataDoctorState `json:"dataDoctor" yaml:"dataDoctor"`
	Age        string                `json:"age,omitempty" yaml:"age,omitempty"`
}

// HistoryResponse is the body of /v1/history.
type HistoryResponse struct {
	Case    string          `json:"case,omitempty" yaml:"case,omitempty"`
	Entries []history.Entry `json:"entries" yaml:"entries"`
}

func unavailable(w http.ResponseWriter, r *http.Request, what string) {
	WriteError(w, r, http.StatusServiceUnavailable, cerrors.ErrCodeUnavailable,
		what+" is not configured on this server", false, nil)
}

// handleReport handles GET /v1/report
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if s.report == nil {
		unavailable(w, r, "run reporting")
		return
	}
	rep := s.report()
	if rep == nil {
		WriteError(w, r, http.StatusNotFound, cerrors.ErrCodeNotFound, "no run has completed yet", true, nil)
		return
	}
	serializer.Respond(w, r, http.StatusOK, rep)
}

// handleState handles GET /v1/state. ?sync=true rereads the appliance.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	dd, _ := s.hive()
	if dd == nil {
		unavailable(w, r, "state")
		return
	}

	if sync, _ := strconv.ParseBool(r.URL.Query().Get("sync")); sync {
		if err := dd.Sync(r.Context()); err != nil {
			WriteErrorFromErr(w, r, err, "failed to sync data doctor state", nil)
			return
		}
	}

	resp := StateResponse{DataDoctor: dd.Snapshot()}
	if age := dd.Age(); age > 0 {
		resp.Age = age.String()
	}
	serializer.Respond(w, r, http.StatusOK, resp)
}

// handleHistory handles GET /v1/history?case=NAME&limit=N
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		unavailable(w, r, "history")
		return
	}

	q := r.URL.Query()
	limit := defaults.HistoryLimit
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			WriteError(w, r, http.StatusBadRequest, cerrors.ErrCodeInvalidRequest,
				"limit must be a positive integer", false, map[string]any{"limit": l})
			return
		}
		limit = n
	}

	entries, err := s.history.Recent(r.Context(), q.Get("case"), limit)
	if err != nil {
		WriteErrorFromErr(w, r, err, "failed to read history", nil)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	serializer.Respond(w, r, http.StatusOK, HistoryResponse{Case: q.Get("case"), Entries: entries})
}

// handleSnapshot handles GET /v1/snapshot
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	_, sn := s.hive()
	if sn == nil {
		unavailable(w, r, "snapshot collection")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.SnapshotTimeout)
	defer cancel()

	snap, err := sn.Collect(ctx)
	if err != nil {
		if ctx.Err() != nil {
			err = cerrors.Wrap(cerrors.ErrCodeTimeout, "snapshot collection timed out", err)
		}
		WriteErrorFromErr(w, r, err, "failed to collect snapshot", nil)
		return
	}
	serializer.Respond(w, r, http.StatusOK, snap)
}
