/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package suite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

type cleanup struct {
	name string
	fn   func(context.Context) error
}

// AddCleanup registers fn to restore something a case changed. Cleanups
// run in reverse registration order.
func (s *Suite) AddCleanup(name string, fn func(context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanups = append(s.cleanups, cleanup{name: name, fn: fn})
}

// RunCleanups runs and forgets every registered cleanup. All cleanups run
// even when some fail; the failures are joined.
func (s *Suite) RunCleanups(ctx context.Context) error {
	s.mu.Lock()
	pending := s.cleanups
	s.cleanups = nil
	s.mu.Unlock()

	var errs []error
	for i := len(pending) - 1; i >= 0; i-- {
		c := pending[i]
		if err := c.fn(ctx); err != nil {
			slog.Error("cleanup failed", "cleanup", c.name, "error", err)
			errs = append(errs, fmt.Errorf("cleanup %s: %w", c.name, err))
			continue
		}
		slog.Debug("cleanup done", "cleanup", c.name)
	}
	return errors.Join(errs...)
}
