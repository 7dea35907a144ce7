/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package server

import (
	"fmt"
	"net/http"
	"time"

	cerrors "github.com/stk5800/cliharness/pkg/errors"
	"github.com/stk5800/cliharness/pkg/serializer"
)

// HealthResponse is the body of /health and /ready.
type HealthResponse struct {
	Status    string    `json:"status" yaml:"status"`
	Version   string    `json:"version,omitempty" yaml:"version,omitempty"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Reason    string    `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// handleHealth reports liveness. It never touches the hive.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeHealth(w, r, http.StatusOK, "healthy", "")
}

// handleReady reports 503 until hive discovery has finished.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.isReady() {
		s.writeHealth(w, r, http.StatusServiceUnavailable, "not_ready", "hive discovery has not completed")
		return
	}
	s.writeHealth(w, r, http.StatusOK, "ready", "")
}

func (s *Server) writeHealth(w http.ResponseWriter, r *http.Request, code int, status, reason string) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		WriteError(w, r, http.StatusMethodNotAllowed, cerrors.ErrCodeMethodNotAllowed,
			fmt.Sprintf("method %s not allowed", r.Method), false, nil)
		return
	}
	serializer.Respond(w, r, code, HealthResponse{
		Status:    status,
		Version:   s.version,
		Timestamp: time.Now().UTC(),
		Reason:    reason,
	})
}
