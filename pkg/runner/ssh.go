/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/stk5800/cliharness/pkg/defaults"
	cerrors "github.com/stk5800/cliharness/pkg/errors"
)

// sshTransportExitCode is what ssh exits with when it fails itself rather
// than the remote command.
const sshTransportExitCode = 255

// execCommand is swapped in tests.
var execCommand = exec.CommandContext

// SSHRunner runs commands through the system ssh client.
type SSHRunner struct {
	User           string
	Port           int
	KeyFile        string
	ConnectTimeout time.Duration
	CommandTimeout time.Duration

	limiter *rate.Limiter
}

// Option configures an SSHRunner.
type Option func(*SSHRunner)

// WithUser sets the remote login user.
func WithUser(user string) Option {
	return func(s *SSHRunner) {
		s.User = user
	}
}

// WithPort sets the ssh port.
func WithPort(port int) Option {
	return func(s *SSHRunner) {
		s.Port = port
	}
}

// WithKeyFile sets the identity file passed with -i.
func WithKeyFile(path string) Option {
	return func(s *SSHRunner) {
		s.KeyFile = path
	}
}

// WithTimeouts sets the connect and whole-command timeouts.
func WithTimeouts(connect, command time.Duration) Option {
	return func(s *SSHRunner) {
		s.ConnectTimeout = connect
		s.CommandTimeout = command
	}
}

// WithRateLimit throttles commands to perSecond with the given burst.
// The appliance CLI serialises administrative commands internally and
// rejects bursts, so a limiter is installed by default. A zero rate
// disables throttling.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *SSHRunner) {
		if perSecond <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewSSHRunner creates an SSHRunner with defaults overridden by opts.
func NewSSHRunner(opts ...Option) *SSHRunner {
	s := &SSHRunner{
		User:           "admin",
		Port:           22,
		ConnectTimeout: defaults.SSHConnectTimeout,
		CommandTimeout: defaults.CommandTimeout,
		limiter:        rate.NewLimiter(rate.Limit(defaults.CommandRate), defaults.CommandBurst),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Args returns the ssh argument vector for running command on host.
func (s *SSHRunner) Args(host, command string) []string {
	args := []string{
		"-o", "BatchMode=yes",
		"-o", "StrictHostKeyChecking=no",
		"-o", "UserKnownHostsFile=/dev/null",
		"-o", "LogLevel=ERROR",
		"-o", "ConnectTimeout=" + strconv.Itoa(int(s.ConnectTimeout.Seconds())),
		"-p", strconv.Itoa(s.Port),
	}
	if s.KeyFile != "" {
		args = append(args, "-i", s.KeyFile)
	}
	target := host
	if s.User != "" {
		target = s.User + "@" + host
	}
	return append(args, target, command)
}

// Run implements Runner.
func (s *SSHRunner) Run(ctx context.Context, host, command string) (*Result, error) {
	if host == "" {
		return nil, cerrors.New(cerrors.ErrCodeInvalidRequest, "host is required")
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	if s.CommandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.CommandTimeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := execCommand(ctx, "ssh", s.Args(host, command)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("running command", "host", host, "command", command)

	start := time.Now()
	err := cmd.Run()
	res := &Result{
		Host:     host,
		Command:  command,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	commandDuration.WithLabelValues(commandName(command)).Observe(res.Duration.Seconds())

	if ctxErr := ctx.Err(); ctxErr != nil {
		commandTotal.WithLabelValues("transport_error").Inc()
		return nil, cerrors.WrapWithContext(cerrors.ErrCodeTimeout, "command did not complete", ctxErr,
			map[string]any{"host": host, "command": command})
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			commandTotal.WithLabelValues("transport_error").Inc()
			return nil, cerrors.WrapWithContext(cerrors.ErrCodeInternal, "failed to start ssh", err,
				map[string]any{"host": host})
		}
		res.ExitCode = exitErr.ExitCode()
	}

	if res.ExitCode == sshTransportExitCode {
		commandTotal.WithLabelValues("transport_error").Inc()
		return nil, cerrors.WrapWithContext(ErrTransport.Code, "ssh transport failure", errors.New(res.Stderr),
			map[string]any{"host": host, "command": command})
	}

	if res.ExitCode != 0 {
		commandTotal.WithLabelValues("exit_nonzero").Inc()
	} else {
		commandTotal.WithLabelValues("ok").Inc()
	}

	slog.Debug("command finished",
		"host", host,
		"command", command,
		"exit", res.ExitCode,
		"duration", res.Duration)

	return res, nil
}
