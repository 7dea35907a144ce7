/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package suite is the shared fixture every CLI case runs against: the
// discovered cells, a runner bound to them, the state caches and helpers
// for checking output, the audit log and cluster health.
package suite

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/stk5800/cliharness/pkg/command"
	"github.com/stk5800/cliharness/pkg/config"
	cerrors "github.com/stk5800/cliharness/pkg/errors"
	"github.com/stk5800/cliharness/pkg/parser"
	"github.com/stk5800/cliharness/pkg/runner"
	"github.com/stk5800/cliharness/pkg/state"
)

// Cell is one discovered cell and what it should look like when healthy.
type Cell struct {
	ID            int    `json:"id" yaml:"id"`
	AdminIP       string `json:"adminIp" yaml:"adminIp"`
	DataIP        string `json:"dataIp" yaml:"dataIp"`
	SPIP          string `json:"spIp" yaml:"spIp"`
	ExpectedNodes int    `json:"expectedNodes" yaml:"expectedNodes"`
	ExpectedDisks int    `json:"expectedDisks" yaml:"expectedDisks"`
}

// Suite holds everything a case needs.
type Suite struct {
	Config *config.Config
	Runner runner.Runner
	RunID  string

	DataDoctor *state.DataDoctor
	State      *state.CLI

	mu        sync.Mutex
	cells     map[int]*Cell
	multiCell bool
	cleanups  []cleanup
}

// Option configures a Suite.
type Option func(*Suite)

// WithState uses the given caches instead of the process-wide ones.
func WithState(dd *state.DataDoctor, cli *state.CLI) Option {
	return func(s *Suite) {
		s.DataDoctor = dd
		s.State = cli
	}
}

// WithRunID overrides the generated run ID.
func WithRunID(id string) Option {
	return func(s *Suite) {
		s.RunID = id
	}
}

// New creates a Suite. Call Init before running cases.
func New(cfg *config.Config, r runner.Runner, opts ...Option) *Suite {
	s := &Suite{
		Config: cfg,
		Runner: r,
		RunID:  uuid.NewString(),
		cells:  make(map[int]*Cell),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init discovers the cells of the hive with hiveadm and reads their VIPs.
// When hiveadm is unusable the configured cells are used.
func (s *Suite) Init(ctx context.Context) error {
	if s.Config.AdminHost == "" {
		return cerrors.New(cerrors.ErrCodeInvalidRequest, "admin host is not configured")
	}
	if len(s.Config.Cells) == 0 {
		return cerrors.New(cerrors.ErrCodeInvalidRequest, "no cells are configured")
	}

	ids := s.discoverCells(ctx)

	s.mu.Lock()
	s.cells = make(map[int]*Cell, len(ids))
	s.multiCell = len(ids) > 1
	for _, id := range ids {
		expected := s.expected(id)
		s.cells[id] = &Cell{
			ID:            id,
			ExpectedNodes: expected.Nodes,
			ExpectedDisks: expected.ExpectedDisks(),
		}
	}
	s.mu.Unlock()

	if s.DataDoctor == nil || s.State == nil {
		s.DataDoctor, s.State = state.Shared(s.Runner, s.Config.AdminHost, state.WithMultiCell(s.multiCell))
	}

	for _, id := range ids {
		vips, err := s.State.VIPs(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to read VIPs of cell %d: %w", id, err)
		}
		s.mu.Lock()
		c := s.cells[id]
		c.AdminIP, c.DataIP, c.SPIP = vips.Admin, vips.Data, vips.SP
		s.mu.Unlock()
	}

	slog.Info("suite initialized",
		"runID", s.RunID,
		"adminHost", s.Config.AdminHost,
		"cells", ids)
	return nil
}

func (s *Suite) discoverCells(ctx context.Context) []int {
	configured := make([]int, 0, len(s.Config.Cells))
	for _, c := range s.Config.Cells {
		configured = append(configured, c.ID)
	}
	slices.Sort(configured)

	res, err := s.Runner.Run(ctx, s.Config.AdminHost, command.HiveAdmStatus())
	if err != nil || !res.Success() {
		slog.Warn("hiveadm unavailable, using configured cells", "error", err, "cells", configured)
		return configured
	}
	hive, err := parser.ParseHiveAdm(res.Stdout)
	if err != nil {
		slog.Warn("hiveadm output not understood, using configured cells", "error", err)
		return configured
	}

	ids := make([]int, 0, len(hive))
	for _, h := range hive {
		ids = append(ids, h.ID)
	}
	slices.Sort(ids)
	for _, id := range configured {
		if !slices.Contains(ids, id) {
			slog.Warn("configured cell not in hive", "cell", id)
		}
	}
	return ids
}

// expected returns the configured expectations for id, falling back to the
// first configured cell for cells only found by discovery.
func (s *Suite) expected(id int) config.CellConfig {
	if c, ok := s.Config.Cell(id); ok {
		return c
	}
	if len(s.Config.Cells) == 0 {
		return config.CellConfig{ID: id}
	}
	c := s.Config.Cells[0]
	c.ID = id
	return c
}

// Cells returns the cells ordered by ID.
func (s *Suite) Cells() []*Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := slices.Sorted(maps.Keys(s.cells))
	out := make([]*Cell, 0, len(ids))
	for _, id := range ids {
		c := *s.cells[id]
		out = append(out, &c)
	}
	return out
}

// Cell returns a copy of the cell with the given ID.
func (s *Suite) Cell(id int) (*Cell, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cells[id]
	if !ok {
		return nil, cerrors.New(cerrors.ErrCodeNotFound, fmt.Sprintf("cell %d is not part of the hive", id))
	}
	cp := *c
	return &cp, nil
}

// MultiCell reports whether the hive has more than one cell.
func (s *Suite) MultiCell() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.multiCell
}

// UpdateCellIPs refreshes the cached IPs of a cell after a VIP change.
func (s *Suite) UpdateCellIPs(id int, vips state.VIPs) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.cells[id]; ok {
		c.AdminIP, c.DataIP, c.SPIP = vips.Admin, vips.Data, vips.SP
	}
}

func (s *Suite) host(cellID int) (string, error) {
	c, err := s.Cell(cellID)
	if err != nil {
		return "", err
	}
	if c.AdminIP != "" {
		return c.AdminIP, nil
	}
	return s.Config.AdminHost, nil
}

// CLI runs cmd on the admin VIP of the cell. Build cell-scoped commands
// with the command package and MultiCell so they carry "-c <cell>".
func (s *Suite) CLI(ctx context.Context, cellID int, cmd string) (*runner.Result, error) {
	host, err := s.host(cellID)
	if err != nil {
		return nil, err
	}
	slog.Debug("cli", "runID", s.RunID, "cell", cellID, "command", cmd)
	res, err := s.Runner.Run(ctx, host, cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to run %q on cell %d: %w", cmd, cellID, err)
	}
	slog.Debug("cli result", "command", cmd, "exitCode", res.ExitCode)
	return res, nil
}

// Hive runs a hive-wide command on the admin host.
func (s *Suite) Hive(ctx context.Context, cmd string) (*runner.Result, error) {
	slog.Debug("cli", "runID", s.RunID, "command", cmd)
	res, err := s.Runner.Run(ctx, s.Config.AdminHost, cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to run %q: %w", cmd, err)
	}
	return res, nil
}

// MustSucceed runs cmd on the cell and fails unless it exits zero.
func (s *Suite) MustSucceed(ctx context.Context, cellID int, cmd string) (*runner.Result, error) {
	res, err := s.CLI(ctx, cellID, cmd)
	return expectSuccess(res, err, cmd)
}

// MustFail runs cmd on the cell and fails unless it is rejected. The
// rejection text must contain every fragment, ignoring case.
func (s *Suite) MustFail(ctx context.Context, cellID int, cmd string, fragments ...string) (*runner.Result, error) {
	res, err := s.CLI(ctx, cellID, cmd)
	return expectFailure(res, err, cmd, fragments)
}

// MustSucceedHive is MustSucceed for hive-wide commands.
func (s *Suite) MustSucceedHive(ctx context.Context, cmd string) (*runner.Result, error) {
	res, err := s.Hive(ctx, cmd)
	return expectSuccess(res, err, cmd)
}

// MustFailHive is MustFail for hive-wide commands.
func (s *Suite) MustFailHive(ctx context.Context, cmd string, fragments ...string) (*runner.Result, error) {
	res, err := s.Hive(ctx, cmd)
	return expectFailure(res, err, cmd, fragments)
}

func expectSuccess(res *runner.Result, err error, cmd string) (*runner.Result, error) {
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		return res, cerrors.New(cerrors.ErrCodeCommandFailed,
			fmt.Sprintf("%q exited %d: %s", cmd, res.ExitCode, strings.TrimSpace(res.Output())))
	}
	return res, nil
}

func expectFailure(res *runner.Result, err error, cmd string, fragments []string) (*runner.Result, error) {
	if err != nil {
		return nil, err
	}
	if res.Success() {
		return res, cerrors.New(cerrors.ErrCodeMismatch, fmt.Sprintf("%q succeeded but should have been rejected", cmd))
	}
	if err := ContainsAll(res.Output(), fragments...); err != nil {
		return res, fmt.Errorf("unexpected rejection message for %q: %w", cmd, err)
	}
	return res, nil
}

// SysStat runs and parses sysstat for the cell.
func (s *Suite) SysStat(ctx context.Context, cellID int) (*parser.SysStat, error) {
	res, err := s.MustSucceed(ctx, cellID, command.SysStatShow(cellID, s.MultiCell()))
	if err != nil {
		return nil, err
	}
	return parser.ParseSysStat(res.Stdout)
}

// HwStat runs and parses hwstat for the cell.
func (s *Suite) HwStat(ctx context.Context, cellID int) (*parser.HwStat, error) {
	res, err := s.MustSucceed(ctx, cellID, command.HwStatShow(cellID, s.MultiCell()))
	if err != nil {
		return nil, err
	}
	return parser.ParseHwStat(res.Stdout)
}

// InvalidateState drops every cached belief about the appliance.
func (s *Suite) InvalidateState() {
	if s.DataDoctor != nil {
		s.DataDoctor.Invalidate()
	}
	if s.State != nil {
		s.State.Invalidate()
	}
}
