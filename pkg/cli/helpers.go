/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/stk5800/cliharness/pkg/config"
	"github.com/stk5800/cliharness/pkg/runner"
	"github.com/stk5800/cliharness/pkg/serializer"
	"github.com/stk5800/cliharness/pkg/simulator"
)

// simulatedAdminHost is used as the admin host when --simulate is set and
// the config names none.
const simulatedAdminHost = "simulated-hive"

// Flags are built per command since urfave flags keep parse state.

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "output destination: file path, ConfigMap URI (cm://namespace/name), or stdout when empty",
	}
}

func formatFlag(def serializer.Format) cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   string(def),
		Usage:   fmt.Sprintf("output format (%s)", strings.Join(serializer.SupportedFormats(), ", ")),
	}
}

func simulateFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "simulate",
		Usage: "run against an in-process simulated hive instead of the appliance",
	}
}

func failOnErrorFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "fail-on-error",
		Usage: "exit non-zero when the result contains failures",
	}
}

// parseOutputFormat extracts and validates the output format from CLI flags.
// Returns the validated format or an error if the format is unknown.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	outFormat := serializer.ParseFormat(cmd.String("format"))
	if outFormat.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q, valid formats are: %s",
			cmd.String("format"), strings.Join(serializer.SupportedFormats(), ", "))
	}
	return outFormat, nil
}

// loadConfig reads --config and validates it.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newRunner returns the transport for cfg. With simulate it returns a
// simulated hive shaped like the configured cells and shortens polling so
// waits complete quickly.
func newRunner(cfg *config.Config, simulate bool) runner.Runner {
	if simulate {
		ids := make([]int, 0, len(cfg.Cells))
		for _, c := range cfg.Cells {
			ids = append(ids, c.ID)
		}
		first := cfg.Cells[0]
		if cfg.AdminHost == "" {
			cfg.AdminHost = simulatedAdminHost
		}
		cfg.PollInterval = config.Duration(10 * time.Millisecond)
		slog.Info("using simulated hive", "cells", ids, "nodes", first.Nodes)
		return simulator.New(
			simulator.WithCells(ids...),
			simulator.WithNodes(first.Nodes, first.DisksPerNode),
			simulator.WithAuditLogPath(cfg.AuditLogPath),
		)
	}

	ssh := runner.NewSSHRunner(
		runner.WithUser(cfg.User),
		runner.WithPort(cfg.SSHPort),
		runner.WithKeyFile(cfg.SSHKey),
		runner.WithTimeouts(cfg.ConnectTimeout.Std(), cfg.CommandTimeout.Std()),
		runner.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
	)
	if cfg.Retries == 0 {
		return ssh
	}
	return runner.NewRetrying(ssh, cfg.Retries, cfg.RetryBackoff.Std())
}

// writeOutput serializes data to --output in --format.
func writeOutput(ctx context.Context, cmd *cli.Command, data any) error {
	outFormat, err := parseOutputFormat(cmd)
	if err != nil {
		return err
	}

	ser, err := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
	if err != nil {
		return fmt.Errorf("failed to create output writer: %w", err)
	}
	if c, ok := ser.(serializer.Closer); ok {
		defer func() {
			if err := c.Close(); err != nil {
				slog.Warn("failed to close serializer", "error", err)
			}
		}()
	}

	return ser.Serialize(ctx, data)
}
