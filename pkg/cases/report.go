/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cases

import (
	"fmt"
	"time"

	"github.com/stk5800/cliharness/pkg/header"
)

// CaseStatus is the outcome of one case.
type CaseStatus string

const (
	CaseStatusPassed  CaseStatus = "passed"
	CaseStatusFailed  CaseStatus = "failed"
	CaseStatusSkipped CaseStatus = "skipped"
)

// ReportStatus is the overall outcome of a run.
type ReportStatus string

const (
	ReportStatusPass    ReportStatus = "pass"
	ReportStatusFail    ReportStatus = "fail"
	ReportStatusPartial ReportStatus = "partial"
)

// CaseResult records one case execution.
type CaseResult struct {
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Status      CaseStatus    `json:"status" yaml:"status"`
	Message     string        `json:"message,omitempty" yaml:"message,omitempty"`
	Started     time.Time     `json:"started" yaml:"started"`
	Duration    time.Duration `json:"duration" yaml:"duration"`
}

// Summary aggregates case results.
type Summary struct {
	Total    int           `json:"total" yaml:"total"`
	Passed   int           `json:"passed" yaml:"passed"`
	Failed   int           `json:"failed" yaml:"failed"`
	Skipped  int           `json:"skipped" yaml:"skipped"`
	Status   ReportStatus  `json:"status" yaml:"status"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Report is the result of an acceptance run.
type Report struct {
	header.Header `json:",inline" yaml:",inline"`

	RunID   string       `json:"runId" yaml:"runId"`
	Results []CaseResult `json:"results" yaml:"results"`
	Summary Summary      `json:"summary" yaml:"summary"`
}

// add appends r and updates the counters.
func (rep *Report) add(r CaseResult) {
	rep.Results = append(rep.Results, r)
	rep.Summary.Total++
	switch r.Status {
	case CaseStatusPassed:
		rep.Summary.Passed++
	case CaseStatusFailed:
		rep.Summary.Failed++
	case CaseStatusSkipped:
		rep.Summary.Skipped++
	}
}

// finish derives the overall status: any failure fails the run, skipped
// cases without failures make it partial.
func (rep *Report) finish(d time.Duration) {
	rep.Summary.Duration = d
	switch {
	case rep.Summary.Failed > 0:
		rep.Summary.Status = ReportStatusFail
	case rep.Summary.Skipped > 0:
		rep.Summary.Status = ReportStatusPartial
	default:
		rep.Summary.Status = ReportStatusPass
	}
}

// Failed reports whether any case failed.
func (rep *Report) Failed() bool {
	return rep.Summary.Failed > 0
}

// Result returns the result of the named case.
func (rep *Report) Result(name string) (CaseResult, bool) {
	for _, r := range rep.Results {
		if r.Name == name {
			return r, true
		}
	}
	return CaseResult{}, false
}

// Table implements serializer.Tabler: one row per case and a summary row.
func (rep *Report) Table() ([]string, [][]string) {
	rows := make([][]string, 0, len(rep.Results)+1)
	for _, r := range rep.Results {
		rows = append(rows, []string{r.Name, string(r.Status), r.Duration.Round(time.Millisecond).String(), r.Message})
	}
	rows = append(rows, []string{"total", string(rep.Summary.Status), rep.Summary.Duration.Round(time.Millisecond).String(),
		fmt.Sprintf("%d passed, %d failed, %d skipped", rep.Summary.Passed, rep.Summary.Failed, rep.Summary.Skipped)})
	return []string{"case", "status", "duration", "message"}, rows
}
