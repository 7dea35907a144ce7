/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package server

import (
	"errors"
	"maps"
	"net/http"
	"time"

	"github.com/google/uuid"

	cerrors "github.com/stk5800/cliharness/pkg/errors"
	"github.com/stk5800/cliharness/pkg/serializer"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Code      string         `json:"code" yaml:"code"`
	Message   string         `json:"message" yaml:"message"`
	Details   map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
	RequestID string         `json:"requestId" yaml:"requestId"`
	Timestamp time.Time      `json:"timestamp" yaml:"timestamp"`
	Retryable bool           `json:"retryable" yaml:"retryable"`
}

// HTTPStatusFromCode maps an error code to an HTTP status.
func HTTPStatusFromCode(code cerrors.ErrorCode) int {
	switch code {
	case cerrors.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case cerrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case cerrors.ErrCodeNotFound:
		return http.StatusNotFound
	case cerrors.ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case cerrors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case cerrors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	case cerrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case cerrors.ErrCodeCommandFailed, cerrors.ErrCodeUnexpectedOutput:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func retryableFromCode(code cerrors.ErrorCode) bool {
	switch code {
	case cerrors.ErrCodeTimeout, cerrors.ErrCodeUnavailable, cerrors.ErrCodeRateLimitExceeded,
		cerrors.ErrCodeInternal, cerrors.ErrCodeCommandFailed:
		return true
	default:
		return false
	}
}

// mergeDetails returns a new map with b overriding a, or nil if both are empty.
func mergeDetails(a, b map[string]any) map[string]any {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[string]any, len(a)+len(b))
	maps.Copy(out, a)
	maps.Copy(out, b)
	return out
}

// WriteError writes an ErrorResponse carrying the request ID.
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int,
	code cerrors.ErrorCode, message string, retryable bool, details map[string]any) {

	requestID := RequestID(r.Context())
	if requestID == "" {
		requestID = uuid.New().String()
	}

	serializer.RespondJSON(w, statusCode, ErrorResponse{
		Code:      string(code),
		Message:   message,
		Details:   details,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Retryable: retryable,
	})
}

// WriteErrorFromErr maps err to a status and code. Plain errors become
// internal errors with fallback as the message.
func WriteErrorFromErr(w http.ResponseWriter, r *http.Request, err error, fallback string, details map[string]any) {
	var se *cerrors.StructuredError
	if !errors.As(err, &se) {
		WriteError(w, r, http.StatusInternalServerError, cerrors.ErrCodeInternal, fallback, true,
			mergeDetails(details, map[string]any{"error": err.Error()}))
		return
	}

	extra := maps.Clone(se.Context)
	if extra == nil {
		extra = make(map[string]any)
	}
	if se.Cause != nil {
		extra["error"] = se.Cause.Error()
	}
	WriteError(w, r, HTTPStatusFromCode(se.Code), se.Code, se.Message, retryableFromCode(se.Code),
		mergeDetails(details, extra))
}
