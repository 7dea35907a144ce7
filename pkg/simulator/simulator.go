/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package simulator is an in-process appliance that answers the admin CLI
// the way a healthy hive does. It implements runner.Runner so the harness
// can be dry-run (cliharness run --simulate) and so cases can be tested
// without hardware. State changes (VIPs, cycles, disks, reboots, wipes)
// persist between commands and are written to a simulated audit log.
package simulator

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"k8s.io/utils/clock"

	"github.com/stk5800/cliharness/pkg/command"
	"github.com/stk5800/cliharness/pkg/parser"
	"github.com/stk5800/cliharness/pkg/runner"
	"github.com/stk5800/cliharness/pkg/state"
)

const (
	// Product and Release are what the version command prints.
	Product = "ST5800"
	Release = "1.1-41"

	// DiskKB is the capacity of every simulated disk in 1K blocks.
	DiskKB = 480000000

	defaultUsedKB = 60000000
)

type disk struct {
	name    string
	fruID   string
	node    int
	slot    int
	enabled bool
	usedKB  int64
}

type cell struct {
	id      int
	adminIP string
	dataIP  string
	spIP    string
	subnet  string
	gateway string
	nodes   []int
	disks   []*disk

	// offlinePolls counts the sysstat calls still answered "Offline"
	// after a reboot or wipe.
	offlinePolls int
}

// Hive is a simulated multi-cell appliance.
type Hive struct {
	mu          sync.Mutex
	clock       clock.PassiveClock
	cells       map[int]*cell
	rebootPolls int

	cycles    map[state.Cycle]int64
	ntp       []string
	smtp      string
	smtpPort  int
	alertTo   []string
	alertCc   []string
	auditLog  []string
	logPath   string
	auditHost string
}

// Option configures a Hive.
type Option func(*hiveOptions)

type hiveOptions struct {
	cells        []int
	nodes        int
	disksPerNode int
	clock        clock.PassiveClock
	rebootPolls  int
	logPath      string
}

// WithCells sets the cell IDs. Defaults to a single cell 0.
func WithCells(ids ...int) Option {
	return func(o *hiveOptions) {
		o.cells = ids
	}
}

// WithNodes sets the size of every cell.
func WithNodes(nodes, disksPerNode int) Option {
	return func(o *hiveOptions) {
		o.nodes = nodes
		o.disksPerNode = disksPerNode
	}
}

// WithClock sets the clock used for audit timestamps.
func WithClock(c clock.PassiveClock) Option {
	return func(o *hiveOptions) {
		o.clock = c
	}
}

// WithRebootPolls sets how many sysstat calls report a rebooting cell as
// offline before it comes back.
func WithRebootPolls(n int) Option {
	return func(o *hiveOptions) {
		o.rebootPolls = n
	}
}

// WithAuditLogPath sets the path the audit log answers on.
func WithAuditLogPath(path string) Option {
	return func(o *hiveOptions) {
		o.logPath = path
	}
}

// New creates a healthy hive.
func New(opts ...Option) *Hive {
	o := hiveOptions{
		cells:        []int{0},
		nodes:        16,
		disksPerNode: 4,
		clock:        clock.RealClock{},
		rebootPolls:  2,
		logPath:      "/var/adm/messages",
	}
	for _, opt := range opts {
		opt(&o)
	}

	h := &Hive{
		clock:       o.clock,
		cells:       make(map[int]*cell, len(o.cells)),
		rebootPolls: o.rebootPolls,
		cycles:      state.Defaults(),
		ntp:         []string{"10.7.224.10"},
		smtp:        "10.7.224.10",
		smtpPort:    25,
		logPath:     o.logPath,
		auditHost:   "hcb101",
	}

	for k, id := range o.cells {
		c := &cell{
			id:      id,
			adminIP: fmt.Sprintf("10.7.%d.41", 224+k),
			dataIP:  fmt.Sprintf("10.7.%d.42", 224+k),
			spIP:    fmt.Sprintf("10.7.%d.40", 224+k),
			subnet:  "255.255.252.0",
			gateway: fmt.Sprintf("10.7.%d.254", 224+k),
		}
		for n := range o.nodes {
			nodeID := (k+1)*100 + n + 1
			c.nodes = append(c.nodes, nodeID)
			for slot := range o.disksPerNode {
				c.disks = append(c.disks, &disk{
					name:    parser.DiskName(nodeID, slot),
					fruID:   fmt.Sprintf("ATA_____HITACHI_HDS7250SASUN500G_%04d%02d", nodeID, slot),
					node:    nodeID,
					slot:    slot,
					enabled: true,
					usedKB:  defaultUsedKB,
				})
			}
		}
		h.cells[id] = c
	}

	h.audit("EXT_INFO", "HiveServer", "hive started")
	return h
}

// Run implements runner.Runner.
func (h *Hive) Run(ctx context.Context, host, cmd string) (*runner.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := h.clock.Now()

	h.mu.Lock()
	stdout, stderr, code := h.dispatch(cmd)
	h.mu.Unlock()

	slog.Debug("simulated command", "host", host, "command", cmd, "exitCode", code)
	return &runner.Result{
		Host:     host,
		Command:  cmd,
		Stdout:   stdout,
		Stderr:   stderr,
		ExitCode: code,
		Duration: h.clock.Since(start),
	}, nil
}

type reply struct {
	stdout string
	stderr string
	code   int
}

func ok(format string, args ...any) reply {
	return reply{stdout: fmt.Sprintf(format, args...)}
}

func fail(format string, args ...any) reply {
	return reply{stdout: fmt.Sprintf(format, args...) + "\n", code: 1}
}

func (h *Hive) dispatch(cmd string) (string, string, int) {
	args, err := splitArgs(cmd)
	if err != nil || len(args) == 0 {
		return "", "sh: syntax error\n", 2
	}
	name, args := args[0], args[1:]

	args, cellID, hasCell, err := h.extractCell(args)
	if err != nil {
		r := fail("%v", err)
		return r.stdout, r.stderr, r.code
	}
	c := h.cells[cellID]
	if hasCell && c == nil {
		r := fail("Cell %d is not part of the hive", cellID)
		return r.stdout, r.stderr, r.code
	}

	var r reply
	switch name {
	case command.HiveAdm:
		r = h.hiveadm(args)
	case command.CellCfg:
		r = h.cellcfg(c, args)
	case command.HiveCfg:
		r = h.hivecfg(args)
	case command.DDCfg:
		r = h.ddcfg(args)
	case command.AlertCfg:
		r = h.alertcfg(args)
	case command.HwStat:
		r = h.hwstat(c, args)
	case command.HwCfg:
		r = h.hwcfg(c, args)
	case command.DF:
		r = h.df(c, args)
	case command.SysStat:
		r = h.sysstat(c)
	case command.PerfStats:
		r = h.perfstats(c, args)
	case command.Reboot:
		r = h.reboot(c, args)
	case command.Wipe:
		r = h.wipe(c, args)
	case command.Version:
		r = ok("%s %s\n", Product, Release)
	case "wc":
		r = h.wc(args)
	case "tail":
		r = h.tail(args)
	default:
		return "", name + ": command not found\n", 127
	}
	return r.stdout, r.stderr, r.code
}

// extractCell removes "-c <id>" from args. Without it the first cell is
// addressed.
func (h *Hive) extractCell(args []string) ([]string, int, bool, error) {
	ids := slices.Sorted(maps.Keys(h.cells))
	for i := 0; i < len(args); i++ {
		if args[i] != "-c" {
			continue
		}
		if i+1 >= len(args) {
			return nil, 0, false, fmt.Errorf("option -c requires a cell id")
		}
		id, err := strconv.Atoi(args[i+1])
		if err != nil {
			return nil, 0, false, fmt.Errorf("invalid cell id %q", args[i+1])
		}
		rest := append(slices.Clone(args[:i]), args[i+2:]...)
		return rest, id, true, nil
	}
	return args, ids[0], false, nil
}

func (h *Hive) audit(level, source, message string) {
	ts := h.clock.Now().Format("Jan _2 15:04:05")
	h.auditLog = append(h.auditLog,
		fmt.Sprintf("%s %s java[1234]: [ID 702911 local0.info] %s [%s] %s", ts, h.auditHost, level, source, message))
}

// AuditLog returns a copy of every audit line written so far.
func (h *Hive) AuditLog() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.auditLog)
}

// splitArgs splits a command line on whitespace, honouring single quotes
// and backslash escapes outside them.
func splitArgs(s string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		escaped bool
		started bool
	)
	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case !inQuote && r == '\\':
			escaped = true
			started = true
		case r == '\'':
			inQuote = !inQuote
			started = true
		case !inQuote && (r == ' ' || r == '\t' || r == '\n'):
			if started {
				args = append(args, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated quote")
	}
	if started {
		args = append(args, cur.String())
	}
	return args, nil
}
