/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/stk5800/cliharness/pkg/header"
	"github.com/stk5800/cliharness/pkg/suite"
)

// Options select what Execute runs.
type Options struct {
	// Cases to run in order; empty runs every registered case.
	Cases []string
	// AllowDestructive runs cases that take the cluster down or lose data.
	AllowDestructive bool
	// Version is stamped into the report header.
	Version string
}

// Execute runs the selected cases one at a time against s. A failing case
// does not stop the run; cancellation of ctx does, and the remaining
// cases are reported as skipped. Registered cleanups run after every case.
func Execute(ctx context.Context, s *suite.Suite, reg *Registry, opts Options) (*Report, error) {
	selected, err := reg.Select(opts.Cases)
	if err != nil {
		return nil, err
	}

	rep := &Report{RunID: s.RunID, Results: make([]CaseResult, 0, len(selected))}
	rep.Init(header.KindCLIAcceptanceReport, opts.Version)
	rep.Metadata[header.MetaRunID] = s.RunID
	rep.Metadata[header.MetaHost] = s.Config.AdminHost

	start := time.Now()
	for _, c := range selected {
		var r CaseResult
		switch {
		case ctx.Err() != nil:
			r = CaseResult{Name: c.Name(), Description: c.Description(), Status: CaseStatusSkipped,
				Message: fmt.Sprintf("run canceled: %v", ctx.Err()), Started: time.Now()}
		case c.Destructive() && !opts.AllowDestructive:
			r = CaseResult{Name: c.Name(), Description: c.Description(), Status: CaseStatusSkipped,
				Message: "destructive case, not allowed in this run", Started: time.Now()}
		default:
			r = runCase(ctx, s, c)
		}

		caseResults.WithLabelValues(r.Name, string(r.Status)).Inc()
		slog.Info("case finished",
			"case", r.Name,
			"status", r.Status,
			"duration", r.Duration,
			"message", r.Message)
		rep.add(r)
	}
	rep.finish(time.Since(start))

	slog.Info("run completed",
		"runID", rep.RunID,
		"passed", rep.Summary.Passed,
		"failed", rep.Summary.Failed,
		"skipped", rep.Summary.Skipped,
		"status", rep.Summary.Status,
		"duration", rep.Summary.Duration)
	return rep, nil
}

func runCase(ctx context.Context, s *suite.Suite, c Case) (r CaseResult) {
	r = CaseResult{Name: c.Name(), Description: c.Description(), Started: time.Now()}
	slog.Info("case started", "case", c.Name(), "destructive", c.Destructive())

	defer func() {
		if cerr := s.RunCleanups(context.WithoutCancel(ctx)); cerr != nil && r.Status != CaseStatusFailed {
			r.Status = CaseStatusFailed
			r.Message = cerr.Error()
		}
		r.Duration = time.Since(r.Started)
		caseDuration.WithLabelValues(r.Name).Observe(r.Duration.Seconds())
	}()

	err := protect(ctx, s, c)
	switch reason, skipped := skipReason(err); {
	case err == nil:
		r.Status = CaseStatusPassed
	case skipped:
		r.Status = CaseStatusSkipped
		r.Message = reason
	default:
		r.Status = CaseStatusFailed
		r.Message = err.Error()
	}
	return r
}

// protect turns a panicking case into a failure.
func protect(ctx context.Context, s *suite.Suite, c Case) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("case panicked: %v", p)
		}
	}()
	return c.Run(ctx, s)
}
