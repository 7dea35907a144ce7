/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/stk5800/cliharness/pkg/cases"
	"github.com/stk5800/cliharness/pkg/serializer"
)

// CaseInfo describes a registered case.
type CaseInfo struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Destructive bool   `json:"destructive" yaml:"destructive"`
}

// CaseList is the output of the list command.
type CaseList []CaseInfo

// Table implements serializer.Tabler.
func (l CaseList) Table() ([]string, [][]string) {
	rows := make([][]string, 0, len(l))
	for _, c := range l {
		rows = append(rows, []string{c.Name, strconv.FormatBool(c.Destructive), c.Description})
	}
	return []string{"case", "destructive", "description"}, rows
}

func listCases(reg *cases.Registry) CaseList {
	var out CaseList
	for _, c := range reg.List() {
		out = append(out, CaseInfo{Name: c.Name(), Description: c.Description(), Destructive: c.Destructive()})
	}
	return out
}

func listCmd() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List registered cases",
		Flags: []cli.Flag{
			outputFlag(),
			formatFlag(serializer.FormatTable),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return writeOutput(ctx, cmd, listCases(cases.NewRegistry()))
		},
	}
}
