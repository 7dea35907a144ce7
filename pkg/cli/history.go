/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/stk5800/cliharness/pkg/defaults"
	"github.com/stk5800/cliharness/pkg/history"
	"github.com/stk5800/cliharness/pkg/serializer"
)

// HistoryView is the output of the history command.
type HistoryView struct {
	Entries []history.Entry `json:"entries" yaml:"entries"`
	Flaky   []string        `json:"flaky,omitempty" yaml:"flaky,omitempty"`
}

// Table implements serializer.Tabler.
func (v HistoryView) Table() ([]string, [][]string) {
	flaky := make(map[string]bool, len(v.Flaky))
	for _, name := range v.Flaky {
		flaky[name] = true
	}
	rows := make([][]string, 0, len(v.Entries))
	for _, e := range v.Entries {
		mark := ""
		if flaky[e.Case] {
			mark = "flaky"
		}
		rows = append(rows, []string{e.Started.Format("2006-01-02 15:04:05"), e.RunID, e.Case, string(e.Status), mark, e.Message})
	}
	return []string{"started", "run", "case", "status", "flaky", "message"}, rows
}

func historyCmd() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recorded case results",
		Description: `Lists case results recorded by "run --history", newest first, and
marks cases that both passed and failed within the last --window runs.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "db",
				Required: true,
				Usage:    "SQLite history database",
			},
			&cli.StringFlag{
				Name:  "case",
				Usage: "only show this case",
			},
			&cli.IntFlag{
				Name:  "limit",
				Value: defaults.HistoryLimit,
				Usage: "maximum number of results",
			},
			&cli.IntFlag{
				Name:  "window",
				Value: 10,
				Usage: "number of recent results per case considered for flakiness",
			},
			outputFlag(),
			formatFlag(serializer.FormatTable),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if _, err := parseOutputFormat(cmd); err != nil {
				return err
			}

			store, err := history.Open(cmd.String("db"))
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					slog.Warn("failed to close history", "error", err)
				}
			}()

			entries, err := store.Recent(ctx, cmd.String("case"), cmd.Int("limit"))
			if err != nil {
				return err
			}
			flaky, err := store.Flaky(ctx, cmd.Int("window"))
			if err != nil {
				return err
			}
			return writeOutput(ctx, cmd, HistoryView{Entries: entries, Flaky: flaky})
		},
	}
}
