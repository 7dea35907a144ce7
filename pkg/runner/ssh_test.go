/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"testing"
	"time"

	cerrors "github.com/stk5800/cliharness/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	mockedStdout     string
	mockedStderr     string
	mockedExitStatus int
	mockedSleep      time.Duration
	lastArgs         []string
)

func fakeExecCommand(ctx context.Context, command string, args ...string) *exec.Cmd {
	lastArgs = append([]string{command}, args...)
	cs := []string{"-test.run=TestHelperProcess", "--", command}
	cs = append(cs, args...)
	cmd := exec.CommandContext(ctx, os.Args[0], cs...)
	cmd.Env = append(os.Environ(),
		"GO_WANT_HELPER_PROCESS=1",
		"STDOUT="+mockedStdout,
		"STDERR="+mockedStderr,
		"EXIT_STATUS="+strconv.Itoa(mockedExitStatus),
		"SLEEP="+mockedSleep.String(),
	)
	return cmd
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	if d, err := time.ParseDuration(os.Getenv("SLEEP")); err == nil && d > 0 {
		time.Sleep(d)
	}
	fmt.Fprint(os.Stdout, os.Getenv("STDOUT"))
	fmt.Fprint(os.Stderr, os.Getenv("STDERR"))
	code, _ := strconv.Atoi(os.Getenv("EXIT_STATUS"))
	os.Exit(code)
}

func withFakeExec(t *testing.T, stdout, stderr string, exit int) {
	t.Helper()
	execCommand = fakeExecCommand
	mockedStdout, mockedStderr, mockedExitStatus, mockedSleep = stdout, stderr, exit, 0
	t.Cleanup(func() { execCommand = exec.CommandContext })
}

func TestSSHRunner_Args(t *testing.T) {
	s := NewSSHRunner(
		WithUser("root"),
		WithPort(2222),
		WithKeyFile("/keys/id_rsa"),
		WithTimeouts(7*time.Second, time.Minute),
	)

	args := s.Args("10.7.224.41", "sysstat")
	joined := strings.Join(args, " ")

	assert.Contains(t, joined, "-p 2222")
	assert.Contains(t, joined, "-i /keys/id_rsa")
	assert.Contains(t, joined, "ConnectTimeout=7")
	assert.Contains(t, joined, "BatchMode=yes")
	assert.Equal(t, "root@10.7.224.41", args[len(args)-2])
	assert.Equal(t, "sysstat", args[len(args)-1])
}

func TestSSHRunner_Args_NoKeyNoUser(t *testing.T) {
	s := NewSSHRunner(WithUser(""))
	args := s.Args("hc-admin", "df")
	assert.NotContains(t, args, "-i")
	assert.Equal(t, "hc-admin", args[len(args)-2])
}

func TestSSHRunner_Run(t *testing.T) {
	withFakeExec(t, "Cell 0: Online.\n", "", 0)

	s := NewSSHRunner(WithRateLimit(0, 0))
	res, err := s.Run(context.Background(), "hc-admin", "sysstat")
	require.NoError(t, err)

	assert.True(t, res.Success())
	assert.Equal(t, "hc-admin", res.Host)
	assert.Equal(t, "sysstat", res.Command)
	assert.Equal(t, []string{"Cell 0: Online."}, res.Lines())
	assert.Equal(t, "ssh", lastArgs[0])
}

func TestSSHRunner_RunNonZeroExit(t *testing.T) {
	withFakeExec(t, "", "Invalid option", 2)

	s := NewSSHRunner(WithRateLimit(0, 0))
	res, err := s.Run(context.Background(), "hc-admin", "sysstat --bogus")
	require.NoError(t, err, "non-zero exit is a result, not an error")

	assert.False(t, res.Success())
	assert.Equal(t, 2, res.ExitCode)
	assert.Equal(t, "Invalid option", res.Output())
}

func TestSSHRunner_RunTransportFailure(t *testing.T) {
	withFakeExec(t, "", "ssh: connect to host hc-admin port 22: Connection refused", 255)

	s := NewSSHRunner(WithRateLimit(0, 0))
	_, err := s.Run(context.Background(), "hc-admin", "sysstat")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))
	assert.Contains(t, err.Error(), "Connection refused")
}

func TestSSHRunner_RunTimeout(t *testing.T) {
	withFakeExec(t, "", "", 0)
	mockedSleep = 2 * time.Second

	s := NewSSHRunner(WithRateLimit(0, 0), WithTimeouts(time.Second, 100*time.Millisecond))
	_, err := s.Run(context.Background(), "hc-admin", "sysstat")
	require.Error(t, err)
	assert.Equal(t, cerrors.ErrCodeTimeout, cerrors.CodeOf(err))
	assert.False(t, errors.Is(err, ErrTransport))
}

func TestSSHRunner_RunRequiresHost(t *testing.T) {
	_, err := NewSSHRunner().Run(context.Background(), "", "sysstat")
	assert.Equal(t, cerrors.ErrCodeInvalidRequest, cerrors.CodeOf(err))
}

func TestSplitLines(t *testing.T) {
	got := SplitLines("  a \r\n\n b\n\t\nc")
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Empty(t, SplitLines(""))
}

func TestResultOutput(t *testing.T) {
	assert.Equal(t, "out", (&Result{Stdout: "out"}).Output())
	assert.Equal(t, "err", (&Result{Stderr: "err"}).Output())
	assert.Equal(t, "out\nerr", (&Result{Stdout: "out", Stderr: "err"}).Output())
}
