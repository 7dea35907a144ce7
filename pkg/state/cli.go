/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package state

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/stk5800/cliharness/pkg/command"
	cerrors "github.com/stk5800/cliharness/pkg/errors"
	"github.com/stk5800/cliharness/pkg/parser"
	"github.com/stk5800/cliharness/pkg/runner"
)

// VIPs are the virtual addresses of one cell.
type VIPs struct {
	Admin string `json:"admin" yaml:"admin"`
	Data  string `json:"data" yaml:"data"`
	SP    string `json:"sp" yaml:"sp"`
}

// CLI caches cell network settings (cellcfg) and hive settings (hivecfg).
type CLI struct {
	runner    runner.Runner
	host      string
	multiCell bool

	group singleflight.Group

	mu    sync.Mutex
	cells map[int]VIPs
	hive  *parser.HiveCfg
}

// NewCLI creates an unsynced cache that talks to the admin host.
func NewCLI(r runner.Runner, host string, opts ...Option) *CLI {
	o := newOptions(opts)
	return &CLI{
		runner:    r,
		host:      host,
		multiCell: o.multiCell,
		cells:     make(map[int]VIPs),
	}
}

// SyncCell reads the VIPs of one cell.
func (c *CLI) SyncCell(ctx context.Context, cell int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.syncCellLocked(ctx, cell)
	return err
}

func (c *CLI) syncCellLocked(ctx context.Context, cell int) (VIPs, error) {
	delete(c.cells, cell)
	res, err := runOK(ctx, c.runner, c.host, command.CellCfgShow(cell, c.multiCell))
	if err != nil {
		return VIPs{}, err
	}
	cfg, err := parser.ParseCellCfg(res.Stdout)
	if err != nil {
		return VIPs{}, fmt.Errorf("failed to parse cellcfg for cell %d: %w", cell, err)
	}
	v := VIPs{Admin: cfg.AdminIP, Data: cfg.DataIP, SP: cfg.SPIP}
	c.cells[cell] = v
	return v, nil
}

// VIPs returns the believed VIPs of cell, syncing first if needed.
func (c *CLI) VIPs(ctx context.Context, cell int) (VIPs, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.cells[cell]; ok {
		return v, nil
	}
	return c.syncCellLocked(ctx, cell)
}

// SetAdminVIP changes the admin VIP of cell. Nothing is sent when the
// believed value already matches.
func (c *CLI) SetAdminVIP(ctx context.Context, cell int, ip string) error {
	return c.setVIP(ctx, cell, ip, "admin",
		func(v VIPs) string { return v.Admin },
		command.CellCfgSetAdminIP(cell, c.multiCell, ip))
}

// SetDataVIP changes the data VIP of cell.
func (c *CLI) SetDataVIP(ctx context.Context, cell int, ip string) error {
	return c.setVIP(ctx, cell, ip, "data",
		func(v VIPs) string { return v.Data },
		command.CellCfgSetDataIP(cell, c.multiCell, ip))
}

func (c *CLI) setVIP(ctx context.Context, cell int, ip, which string, field func(VIPs) string, cmd string) error {
	if !parser.IsValidIPv4(ip) {
		return cerrors.New(cerrors.ErrCodeInvalidRequest, fmt.Sprintf("invalid %s VIP %q", which, ip))
	}

	key := "vip/" + strconv.Itoa(cell) + "/" + which + "=" + ip
	return shared(ctx, &c.group, key, func(ctx context.Context) error {
		c.mu.Lock()
		defer c.mu.Unlock()

		cur, ok := c.cells[cell]
		if !ok {
			var err error
			if cur, err = c.syncCellLocked(ctx, cell); err != nil {
				stateWrites.WithLabelValues("cellcfg", resultFailed).Inc()
				return err
			}
		}
		if field(cur) == ip {
			stateWrites.WithLabelValues("cellcfg", resultSkipped).Inc()
			return nil
		}

		if _, err := runOK(ctx, c.runner, c.host, cmd); err != nil {
			delete(c.cells, cell)
			stateWrites.WithLabelValues("cellcfg", resultFailed).Inc()
			return fmt.Errorf("failed to set %s VIP of cell %d: %w", which, cell, err)
		}
		got, err := c.syncCellLocked(ctx, cell)
		if err != nil {
			stateWrites.WithLabelValues("cellcfg", resultFailed).Inc()
			return fmt.Errorf("failed to read back cell %d: %w", cell, err)
		}
		if field(got) != ip {
			delete(c.cells, cell)
			stateWrites.WithLabelValues("cellcfg", resultFailed).Inc()
			return cerrors.New(cerrors.ErrCodeMismatch,
				fmt.Sprintf("%s VIP of cell %d reads back as %s after setting %s", which, cell, field(got), ip))
		}
		stateWrites.WithLabelValues("cellcfg", resultIssued).Inc()
		slog.Info("cell VIP updated", "cell", cell, "vip", which, "ip", ip)
		return nil
	})
}

// HiveConfig returns the believed hive settings, syncing first if needed.
func (c *CLI) HiveConfig(ctx context.Context) (*parser.HiveCfg, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := c.hive
	if h == nil {
		var err error
		if h, err = c.syncHiveLocked(ctx); err != nil {
			return nil, err
		}
	}
	cp := *h
	cp.NTPServers = slices.Clone(h.NTPServers)
	return &cp, nil
}

func (c *CLI) syncHiveLocked(ctx context.Context) (*parser.HiveCfg, error) {
	c.hive = nil
	res, err := runOK(ctx, c.runner, c.host, command.HiveCfgShow())
	if err != nil {
		return nil, err
	}
	h, err := parser.ParseHiveCfg(res.Stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse hivecfg: %w", err)
	}
	c.hive = h
	return h, nil
}

// SetNTPServer replaces the NTP server list.
func (c *CLI) SetNTPServer(ctx context.Context, servers ...string) error {
	if len(servers) == 0 {
		return cerrors.New(cerrors.ErrCodeInvalidRequest, "at least one NTP server is required")
	}
	for _, s := range servers {
		if strings.TrimSpace(s) == "" || strings.ContainsAny(s, ", ") {
			return cerrors.New(cerrors.ErrCodeInvalidRequest, fmt.Sprintf("invalid NTP server %q", s))
		}
	}

	key := "ntp=" + strings.Join(servers, ",")
	return shared(ctx, &c.group, key, func(ctx context.Context) error {
		c.mu.Lock()
		defer c.mu.Unlock()

		cur := c.hive
		if cur == nil {
			var err error
			if cur, err = c.syncHiveLocked(ctx); err != nil {
				stateWrites.WithLabelValues("hivecfg", resultFailed).Inc()
				return err
			}
		}
		if slices.Equal(cur.NTPServers, servers) {
			stateWrites.WithLabelValues("hivecfg", resultSkipped).Inc()
			return nil
		}

		if _, err := runOK(ctx, c.runner, c.host, command.HiveCfgSetNTP(servers)); err != nil {
			c.hive = nil
			stateWrites.WithLabelValues("hivecfg", resultFailed).Inc()
			return fmt.Errorf("failed to set NTP servers: %w", err)
		}
		got, err := c.syncHiveLocked(ctx)
		if err != nil {
			stateWrites.WithLabelValues("hivecfg", resultFailed).Inc()
			return fmt.Errorf("failed to read back hivecfg: %w", err)
		}
		if !slices.Equal(got.NTPServers, servers) {
			c.hive = nil
			stateWrites.WithLabelValues("hivecfg", resultFailed).Inc()
			return cerrors.New(cerrors.ErrCodeMismatch,
				fmt.Sprintf("NTP servers read back as %v after setting %v", got.NTPServers, servers))
		}
		stateWrites.WithLabelValues("hivecfg", resultIssued).Inc()
		slog.Info("NTP servers updated", "servers", servers)
		return nil
	})
}

// Invalidate forgets every believed cell and hive setting.
func (c *CLI) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cells = make(map[int]VIPs)
	c.hive = nil
}

// InvalidateCell forgets the believed VIPs of one cell.
func (c *CLI) InvalidateCell(cell int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cells, cell)
}
