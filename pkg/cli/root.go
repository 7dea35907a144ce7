/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/stk5800/cliharness/pkg/logging"
)

const name = "cliharness"

var (
	// overridden during build with ldflags
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Exit codes.
const (
	ExitOK       = 0
	ExitError    = 1
	ExitCanceled = 2
)

// NewRootCommand returns the cliharness command tree.
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Usage:                 "Acceptance harness for the storage appliance administrative CLI",
		Version:               fmt.Sprintf("%s (commit: %s, date: %s)", version, commit, date),
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the harness config file (YAML)",
				Sources: cli.EnvVars("CLIHARNESS_CONFIG"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
			&cli.BoolFlag{
				Name:  "log-json",
				Usage: "write logs as JSON",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level := os.Getenv("LOG_LEVEL")
			if cmd.Bool("debug") {
				level = "debug"
			}
			if cmd.Bool("log-json") {
				logging.SetDefaultStructuredLoggerWithLevel(name, version, level)
			} else {
				logging.SetDefaultLoggerWithLevel(level)
			}
			slog.Debug("starting", "name", name, "version", version, "commit", commit)
			return ctx, nil
		},
		Commands: []*cli.Command{
			runCmd(),
			listCmd(),
			snapshotCmd(),
			validateCmd(),
			stateCmd(),
			historyCmd(),
			serveCmd(),
		},
	}
}

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ExitCanceled
	default:
		return ExitError
	}
}

// Execute runs the CLI and exits the process.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCommand().Run(ctx, os.Args)
	stop()

	if err != nil {
		slog.Error("command failed", "error", err)
	}
	os.Exit(ExitCode(err))
}
