/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package runner executes CLI commands on appliance hosts.
//
// The transport is the system ssh client; this package only builds the
// invocation, captures output and classifies failures. A command that
// runs and exits non-zero is a normal Result, not an error: the CLI tests
// frequently expect failures. An error means the command could not be
// delivered at all.
package runner

import (
	"context"
	"strings"
	"time"

	cerrors "github.com/stk5800/cliharness/pkg/errors"
)

// ErrTransport marks failures to reach the host (connection refused,
// authentication, ssh exit 255). Only these are retried.
var ErrTransport = cerrors.New(cerrors.ErrCodeUnavailable, "")

// Result is the captured outcome of one command.
type Result struct {
	Host     string        `json:"host" yaml:"host"`
	Command  string        `json:"command" yaml:"command"`
	Stdout   string        `json:"stdout" yaml:"stdout"`
	Stderr   string        `json:"stderr,omitempty" yaml:"stderr,omitempty"`
	ExitCode int           `json:"exitCode" yaml:"exitCode"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Success reports whether the command exited zero.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// Lines returns stdout split into trimmed, non-empty lines.
func (r *Result) Lines() []string {
	return SplitLines(r.Stdout)
}

// Output returns stdout followed by stderr. The CLI prints some errors on
// stdout and some on stderr; checks that only care about the text use this.
func (r *Result) Output() string {
	if r.Stderr == "" {
		return r.Stdout
	}
	if r.Stdout == "" {
		return r.Stderr
	}
	return r.Stdout + "\n" + r.Stderr
}

// Runner runs a command on a host.
type Runner interface {
	Run(ctx context.Context, host, command string) (*Result, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, host, command string) (*Result, error)

// Run implements Runner.
func (f RunnerFunc) Run(ctx context.Context, host, command string) (*Result, error) {
	return f(ctx, host, command)
}

// SplitLines splits s on newlines, trims every line and drops empty ones.
func SplitLines(s string) []string {
	raw := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

// commandName returns the first word of a command, used as a metric label
// so arguments do not explode label cardinality.
func commandName(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
