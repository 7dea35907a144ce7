/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package validator

import (
	"context"
	"fmt"
	"time"

	"github.com/stk5800/cliharness/pkg/header"
	"github.com/stk5800/cliharness/pkg/serializer"
)

// Constraint is one expectation: a measurement path and an expression.
type Constraint struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Expectations is the document read by validate.
type Expectations struct {
	Constraints []Constraint `json:"constraints" yaml:"constraints"`
}

// ExpectationsFromFile loads expectations from a file or cm:// URI.
func ExpectationsFromFile(ctx context.Context, path string) (*Expectations, error) {
	e, err := serializer.FromFile[Expectations](ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load expectations: %w", err)
	}
	if len(e.Constraints) == 0 {
		return nil, fmt.Errorf("expectations file %q has no constraints", path)
	}
	return e, nil
}

// ConstraintStatus is the outcome of one constraint.
type ConstraintStatus string

const (
	ConstraintStatusPassed  ConstraintStatus = "passed"
	ConstraintStatusFailed  ConstraintStatus = "failed"
	ConstraintStatusSkipped ConstraintStatus = "skipped"
)

// ValidationStatus is the overall outcome.
type ValidationStatus string

const (
	ValidationStatusPass    ValidationStatus = "pass"
	ValidationStatusFail    ValidationStatus = "fail"
	ValidationStatusPartial ValidationStatus = "partial"
)

// ConstraintValidation is the result of evaluating one constraint.
type ConstraintValidation struct {
	Name     string           `json:"name" yaml:"name"`
	Expected string           `json:"expected" yaml:"expected"`
	Actual   string           `json:"actual,omitempty" yaml:"actual,omitempty"`
	Status   ConstraintStatus `json:"status" yaml:"status"`
	Message  string           `json:"message,omitempty" yaml:"message,omitempty"`
}

// Summary counts constraint outcomes.
type Summary struct {
	Total    int              `json:"total" yaml:"total"`
	Passed   int              `json:"passed" yaml:"passed"`
	Failed   int              `json:"failed" yaml:"failed"`
	Skipped  int              `json:"skipped" yaml:"skipped"`
	Status   ValidationStatus `json:"status" yaml:"status"`
	Duration time.Duration    `json:"duration" yaml:"duration"`
}

// ValidationResult is the document written by validate.
type ValidationResult struct {
	header.Header `json:",inline" yaml:",inline"`

	Results []ConstraintValidation `json:"results" yaml:"results"`
	Summary Summary                `json:"summary" yaml:"summary"`
}

// NewValidationResult returns an empty result.
func NewValidationResult() *ValidationResult {
	return &ValidationResult{Results: make([]ConstraintValidation, 0)}
}

// Table implements serializer.Tabler.
func (r *ValidationResult) Table() ([]string, [][]string) {
	rows := make([][]string, 0, len(r.Results)+1)
	for _, cv := range r.Results {
		rows = append(rows, []string{cv.Name, cv.Expected, cv.Actual, string(cv.Status), cv.Message})
	}
	rows = append(rows, []string{"", "", "", string(r.Summary.Status),
		fmt.Sprintf("%d passed, %d failed, %d skipped", r.Summary.Passed, r.Summary.Failed, r.Summary.Skipped)})
	return []string{"constraint", "expected", "actual", "status", "message"}, rows
}
