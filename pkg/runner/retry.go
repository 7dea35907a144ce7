/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

// Retrying wraps a Runner and retries transport failures with exponential
// backoff. CLI failures (non-zero exit) are returned as-is on the first try.
type Retrying struct {
	Inner   Runner
	Backoff wait.Backoff
}

// NewRetrying wraps inner, allowing up to retries extra attempts starting
// at the given backoff and doubling each time.
func NewRetrying(inner Runner, retries int, backoff time.Duration) *Retrying {
	return &Retrying{
		Inner: inner,
		Backoff: wait.Backoff{
			Duration: backoff,
			Factor:   2.0,
			Jitter:   0.1,
			Steps:    retries + 1,
		},
	}
}

// Run implements Runner.
func (r *Retrying) Run(ctx context.Context, host, command string) (*Result, error) {
	var (
		res     *Result
		lastErr error
		attempt int
	)

	err := wait.ExponentialBackoffWithContext(ctx, r.Backoff, func(ctx context.Context) (bool, error) {
		attempt++
		if attempt > 1 {
			commandRetries.Inc()
		}

		var err error
		res, err = r.Inner.Run(ctx, host, command)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, ErrTransport) {
			return false, err
		}

		lastErr = err
		slog.Warn("transport failure, retrying",
			"host", host,
			"command", command,
			"attempt", attempt,
			"error", err)
		return false, nil
	})

	if err != nil {
		if wait.Interrupted(err) && lastErr != nil {
			return nil, fmt.Errorf("giving up after %d attempts: %w", attempt, lastErr)
		}
		return nil, err
	}
	return res, nil
}
