/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/stk5800/cliharness/pkg/cases"
	"github.com/stk5800/cliharness/pkg/history"
	"github.com/stk5800/cliharness/pkg/serializer"
	"github.com/stk5800/cliharness/pkg/server"
	"github.com/stk5800/cliharness/pkg/suite"
)

func serveCmd() *cli.Command {
	defaults := server.DefaultConfig()

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve reports, data doctor state and live snapshots over HTTP",
		Description: `Starts an HTTP server exposing:

  /health, /ready, /metrics
  /v1/report     last run report (?format=json|yaml|table)
  /v1/state      data doctor configuration (?sync=true rereads it)
  /v1/history    recorded case results (?case=NAME&limit=N)
  /v1/snapshot   live snapshot of the hive

With --interval the non-destructive cases run periodically and the latest
report is served. Otherwise --report names a report file to serve.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "address",
				Value: defaults.Address,
				Usage: "listen address",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   defaults.Port,
				Usage:   "listen port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:  "history",
				Usage: "SQLite history database to serve and record into",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "report file or ConfigMap URI to serve when not running cases",
			},
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "run the non-destructive cases at this interval (0 disables)",
			},
			simulateFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			s := suite.New(cfg, newRunner(cfg, cmd.Bool("simulate")))

			var store *history.Store
			if path := cmd.String("history"); path != "" {
				if store, err = history.Open(path); err != nil {
					return err
				}
				defer func() { _ = store.Close() }()
			}

			var last atomic.Pointer[cases.Report]
			reportSource := last.Load
			if path := cmd.String("report"); path != "" && cmd.Duration("interval") == 0 {
				reportSource = func() *cases.Report {
					rep, err := serializer.FromFile[cases.Report](ctx, path)
					if err != nil {
						slog.Warn("failed to load report", "path", path, "error", err)
						return nil
					}
					return rep
				}
			}

			srvCfg := server.DefaultConfig()
			srvCfg.Address = cmd.String("address")
			srvCfg.Port = cmd.Int("port")

			opts := []server.Option{
				server.WithConfig(srvCfg),
				server.WithName(name, version),
				server.WithReport(reportSource),
			}
			if store != nil {
				opts = append(opts, server.WithHistory(store))
			}
			srv := server.New(opts...)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.Run(gctx)
			})
			g.Go(func() error {
				if err := s.Init(gctx); err != nil {
					return fmt.Errorf("failed to initialize suite: %w", err)
				}
				srv.SetHive(s.DataDoctor, newSnapshotter(s, nil, nil, nil))
				srv.SetReady(true)

				interval := cmd.Duration("interval")
				if interval <= 0 {
					return nil
				}
				return runPeriodically(gctx, s, store, interval, &last)
			})
			return g.Wait()
		},
	}
}

func runPeriodically(ctx context.Context, s *suite.Suite, store *history.Store, interval time.Duration, last *atomic.Pointer[cases.Report]) error {
	reg := cases.NewRegistry()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		s.RunID = uuid.NewString()
		rep, err := cases.Execute(ctx, s, reg, cases.Options{Version: version})
		if err != nil {
			return err
		}
		last.Store(rep)
		if store != nil {
			if err := store.Record(ctx, rep); err != nil {
				slog.Error("failed to record run", "runID", rep.RunID, "error", err)
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
