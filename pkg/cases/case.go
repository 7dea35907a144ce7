/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package cases holds the acceptance cases for the admin CLI, one per
// command, and the executor that runs them against a suite and produces a
// report.
package cases

import (
	"context"
	"errors"
	"fmt"

	"github.com/stk5800/cliharness/pkg/suite"
)

// Case is one acceptance case.
type Case interface {
	// Name is the unique, lower-case identifier used on the command line.
	Name() string
	Description() string
	// Destructive cases lose data or take the cluster down and only run
	// when explicitly allowed.
	Destructive() bool
	Run(ctx context.Context, s *suite.Suite) error
}

// ErrSkipped is matched by every error returned from Skip.
var ErrSkipped = errors.New("skipped")

type skipError struct {
	reason string
}

func (e *skipError) Error() string {
	return "skipped: " + e.reason
}

func (e *skipError) Is(target error) bool {
	return target == ErrSkipped
}

// Skip returns an error that marks the case as skipped rather than failed.
func Skip(format string, args ...any) error {
	return &skipError{reason: fmt.Sprintf(format, args...)}
}

// skipReason returns the reason of a Skip error.
func skipReason(err error) (string, bool) {
	var se *skipError
	if errors.As(err, &se) {
		return se.reason, true
	}
	return "", false
}

// meta implements the descriptive half of Case.
type meta struct {
	name        string
	description string
	destructive bool
}

func (m meta) Name() string        { return m.name }
func (m meta) Description() string { return m.description }
func (m meta) Destructive() bool   { return m.destructive }

// eachCell runs fn for every cell of the hive and stops at the first error.
func eachCell(ctx context.Context, s *suite.Suite, fn func(ctx context.Context, c *suite.Cell) error) error {
	for _, c := range s.Cells() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ctx, c); err != nil {
			return fmt.Errorf("cell %d: %w", c.ID, err)
		}
	}
	return nil
}
