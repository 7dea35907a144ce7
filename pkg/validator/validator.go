/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package validator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/stk5800/cliharness/pkg/header"
	"github.com/stk5800/cliharness/pkg/snapshotter"
)

// Validator evaluates expectations against snapshot measurements.
type Validator struct {
	// Version is the validator version (typically the CLI version).
	Version string
}

// Option is a functional option for configuring Validator instances.
type Option func(*Validator)

// WithVersion returns an Option that sets the Validator version string.
func WithVersion(version string) Option {
	return func(v *Validator) {
		v.Version = version
	}
}

// New creates a new Validator with the provided options.
func New(opts ...Option) *Validator {
	v := &Validator{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate evaluates every constraint against the snapshot. Constraints
// that cannot be evaluated (bad path, missing value, bad expression) are
// skipped rather than failed.
func (v *Validator) Validate(ctx context.Context, exp *Expectations, snap *snapshotter.Snapshot) (*ValidationResult, error) {
	start := time.Now()

	if exp == nil {
		return nil, fmt.Errorf("expectations cannot be nil")
	}
	if snap == nil {
		return nil, fmt.Errorf("snapshot cannot be nil")
	}

	result := NewValidationResult()
	result.Init(header.KindValidationResult, v.Version)
	if host := snap.Metadata[header.MetaHost]; host != "" {
		result.Metadata[header.MetaHost] = host
	}

	for _, constraint := range exp.Constraints {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cv := v.evaluateConstraint(constraint, snap)
		result.Results = append(result.Results, cv)

		switch cv.Status {
		case ConstraintStatusPassed:
			result.Summary.Passed++
		case ConstraintStatusFailed:
			result.Summary.Failed++
		case ConstraintStatusSkipped:
			result.Summary.Skipped++
		}
	}

	result.Summary.Total = len(exp.Constraints)
	result.Summary.Duration = time.Since(start)

	switch {
	case result.Summary.Failed > 0:
		result.Summary.Status = ValidationStatusFail
	case result.Summary.Skipped > 0:
		result.Summary.Status = ValidationStatusPartial
	default:
		result.Summary.Status = ValidationStatusPass
	}

	slog.Debug("validation completed",
		"passed", result.Summary.Passed,
		"failed", result.Summary.Failed,
		"skipped", result.Summary.Skipped,
		"status", result.Summary.Status,
		"duration", result.Summary.Duration)

	return result, nil
}

func (v *Validator) evaluateConstraint(constraint Constraint, snap *snapshotter.Snapshot) ConstraintValidation {
	cv := ConstraintValidation{
		Name:     constraint.Name,
		Expected: constraint.Value,
	}

	skip := func(msg string, err error) ConstraintValidation {
		cv.Status = ConstraintStatusSkipped
		cv.Message = fmt.Sprintf("%s: %v", msg, err)
		slog.Warn("skipping constraint", "name", constraint.Name, "reason", msg, "error", err)
		return cv
	}

	path, err := ParseConstraintPath(constraint.Name)
	if err != nil {
		return skip("invalid constraint path", err)
	}

	values, err := path.ExtractValues(snap)
	if err != nil {
		return skip("value not found in snapshot", err)
	}
	cv.Actual = joinValues(path, values)

	parsed, err := ParseConstraintExpression(constraint.Value)
	if err != nil {
		return skip("invalid constraint expression", err)
	}

	var failures []string
	for _, val := range values {
		passed, err := parsed.Evaluate(val.Value)
		if err != nil {
			cv.Status = ConstraintStatusFailed
			cv.Message = fmt.Sprintf("evaluation failed for %s: %v", val.Subtype, err)
			slog.Debug("constraint evaluation failed", "name", constraint.Name, "subtype", val.Subtype, "error", err)
			return cv
		}
		if !passed {
			failures = append(failures, fmt.Sprintf("%s: expected %s, got %s", val.Subtype, parsed, val.Value))
		}
	}

	if len(failures) > 0 {
		cv.Status = ConstraintStatusFailed
		cv.Message = strings.Join(failures, "; ")
		slog.Debug("constraint failed", "name", constraint.Name, "expected", constraint.Value, "actual", cv.Actual)
		return cv
	}

	cv.Status = ConstraintStatusPassed
	slog.Debug("constraint passed", "name", constraint.Name, "expected", constraint.Value, "actual", cv.Actual)
	return cv
}

// joinValues renders the actual value, prefixing each with its subtype
// when a wildcard matched several.
func joinValues(path *ConstraintPath, values []Value) string {
	if path.Subtype != AllSubtypes {
		return values[0].Value
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.Subtype + "=" + v.Value
	}
	return strings.Join(parts, ",")
}
