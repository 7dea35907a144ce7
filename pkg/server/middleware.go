/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	cerrors "github.com/stk5800/cliharness/pkg/errors"
)

type contextKey string

const contextKeyRequestID contextKey = "request-id"

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-Id"

// RequestID returns the request ID stored by the middleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID).(string)
	return id
}

// limiters hands out one token bucket per client IP.
type limiters struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	clients map[string]*rate.Limiter
}

func newLimiters(limit rate.Limit, burst int) *limiters {
	return &limiters{limit: limit, burst: burst, clients: make(map[string]*rate.Limiter)}
}

func (l *limiters) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.clients[ip]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.clients[ip] = lim
	}
	return lim
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// withMiddleware wraps API handlers with request IDs, GET-only method
// checks, per-client rate limiting, panic recovery and access logging.
func (s *Server) withMiddleware(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)
		r = r.WithContext(context.WithValue(r.Context(), contextKeyRequestID, id))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			if p := recover(); p != nil {
				slog.Error("handler panic", "route", route, "requestId", id, "panic", p)
				WriteError(rec, r, http.StatusInternalServerError, cerrors.ErrCodeInternal,
					"internal server error", true, map[string]any{"panic": fmt.Sprint(p)})
			}
			requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
			requestsTotal.WithLabelValues(route, fmt.Sprint(rec.status)).Inc()
			slog.Debug("request handled",
				"route", route,
				"method", r.Method,
				"status", rec.status,
				"requestId", id,
				"remote", clientIP(r),
				"duration", time.Since(start))
		}()

		if r.Method != http.MethodGet {
			rec.Header().Set("Allow", http.MethodGet)
			WriteError(rec, r, http.StatusMethodNotAllowed, cerrors.ErrCodeMethodNotAllowed,
				fmt.Sprintf("method %s not allowed", r.Method), false, nil)
			return
		}

		if !s.limiters.get(clientIP(r)).Allow() {
			rateLimited.Inc()
			rec.Header().Set("Retry-After", "1")
			WriteError(rec, r, http.StatusTooManyRequests, cerrors.ErrCodeRateLimitExceeded,
				"rate limit exceeded", true, nil)
			return
		}

		rec.Header().Set(APIVersionHeader, negotiateAPIVersion(r))
		next(rec, r)
	}
}
