/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package state

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"k8s.io/utils/clock"

	"github.com/stk5800/cliharness/pkg/command"
	cerrors "github.com/stk5800/cliharness/pkg/errors"
	"github.com/stk5800/cliharness/pkg/parser"
	"github.com/stk5800/cliharness/pkg/runner"
)

// Option configures a DataDoctor or CLI.
type Option func(*options)

type options struct {
	clock     clock.PassiveClock
	multiCell bool
}

// WithClock sets the clock used to stamp syncs.
func WithClock(c clock.PassiveClock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithMultiCell makes cell-scoped commands carry "-c <cell>".
func WithMultiCell(multi bool) Option {
	return func(o *options) {
		o.multiCell = multi
	}
}

func newOptions(opts []Option) options {
	o := options{clock: clock.RealClock{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// DataDoctorState is a point-in-time copy of the believed cycle values.
type DataDoctorState struct {
	Cycles   map[Cycle]int64 `json:"cycles" yaml:"cycles"`
	Synced   bool            `json:"synced" yaml:"synced"`
	SyncedAt time.Time       `json:"syncedAt,omitempty" yaml:"syncedAt,omitempty"`
}

// DataDoctor caches the data-doctor cycle configuration of the hive.
type DataDoctor struct {
	runner runner.Runner
	host   string
	clock  clock.PassiveClock

	group singleflight.Group

	mu       sync.Mutex
	believed map[Cycle]int64
	synced   bool
	syncedAt time.Time
}

// NewDataDoctor creates an unsynced cache that talks to the admin host.
func NewDataDoctor(r runner.Runner, host string, opts ...Option) *DataDoctor {
	o := newOptions(opts)
	return &DataDoctor{
		runner:   r,
		host:     host,
		clock:    o.clock,
		believed: make(map[Cycle]int64),
	}
}

// Sync reads every cycle from the appliance.
func (d *DataDoctor) Sync(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.syncLocked(ctx)
}

func (d *DataDoctor) syncLocked(ctx context.Context) error {
	res, err := runOK(ctx, d.runner, d.host, command.DDCfgList())
	if err != nil {
		d.synced = false
		return err
	}
	values, err := parser.ParseDDCfg(res.Stdout)
	if err != nil {
		d.synced = false
		return fmt.Errorf("failed to parse data doctor cycles: %w", err)
	}

	believed := make(map[Cycle]int64, len(values))
	for _, c := range Cycles() {
		v, ok := values[string(c)]
		if !ok {
			d.synced = false
			return cerrors.New(cerrors.ErrCodeUnexpectedOutput, fmt.Sprintf("ddcfg did not list %s", c))
		}
		believed[c] = v
	}

	d.believed = believed
	d.synced = true
	d.syncedAt = d.clock.Now()
	slog.Debug("data doctor state synced", "host", d.host, "cycles", len(believed))
	return nil
}

func (d *DataDoctor) ensureSyncedLocked(ctx context.Context) error {
	if d.synced {
		return nil
	}
	return d.syncLocked(ctx)
}

// Get returns the believed value of c, syncing first if needed.
func (d *DataDoctor) Get(ctx context.Context, c Cycle) (int64, error) {
	if !c.IsValid() {
		return 0, cerrors.New(cerrors.ErrCodeInvalidRequest, fmt.Sprintf("unknown data doctor cycle %q", c))
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ensureSyncedLocked(ctx); err != nil {
		return 0, err
	}
	return d.believed[c], nil
}

// Set changes c to seconds. Nothing is sent when the believed value
// already matches. Identical concurrent calls share one write.
func (d *DataDoctor) Set(ctx context.Context, c Cycle, seconds int64) error {
	if !c.IsValid() {
		return cerrors.New(cerrors.ErrCodeInvalidRequest, fmt.Sprintf("unknown data doctor cycle %q", c))
	}
	if seconds < 0 {
		return cerrors.New(cerrors.ErrCodeInvalidRequest, fmt.Sprintf("negative interval %d for %s", seconds, c))
	}

	key := fmt.Sprintf("set/%s=%d", c, seconds)
	return shared(ctx, &d.group, key, func(ctx context.Context) error {
		return d.set(ctx, c, seconds)
	})
}

func (d *DataDoctor) set(ctx context.Context, c Cycle, seconds int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureSyncedLocked(ctx); err != nil {
		stateWrites.WithLabelValues("datadoctor", resultFailed).Inc()
		return err
	}
	if d.believed[c] == seconds {
		stateWrites.WithLabelValues("datadoctor", resultSkipped).Inc()
		slog.Debug("data doctor cycle unchanged", "cycle", c, "seconds", seconds)
		return nil
	}

	return d.writeLocked(ctx, command.DDCfgSet(string(c), seconds), map[Cycle]int64{c: seconds})
}

// SetAll applies every entry of values in listing order.
func (d *DataDoctor) SetAll(ctx context.Context, values map[Cycle]int64) error {
	for c := range values {
		if !c.IsValid() {
			return cerrors.New(cerrors.ErrCodeInvalidRequest, fmt.Sprintf("unknown data doctor cycle %q", c))
		}
	}
	for _, c := range Cycles() {
		v, ok := values[c]
		if !ok {
			continue
		}
		if err := d.Set(ctx, c, v); err != nil {
			return err
		}
	}
	return nil
}

// Off disables every cycle.
func (d *DataDoctor) Off(ctx context.Context) error {
	want := make(map[Cycle]int64, len(Cycles()))
	for _, c := range Cycles() {
		want[c] = 0
	}
	return shared(ctx, &d.group, "off", func(ctx context.Context) error {
		return d.bulk(ctx, command.DDCfgOff(), want)
	})
}

// Default restores the factory interval of every cycle.
func (d *DataDoctor) Default(ctx context.Context) error {
	return shared(ctx, &d.group, "default", func(ctx context.Context) error {
		return d.bulk(ctx, command.DDCfgDefault(), Defaults())
	})
}

func (d *DataDoctor) bulk(ctx context.Context, cmd string, want map[Cycle]int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureSyncedLocked(ctx); err != nil {
		stateWrites.WithLabelValues("datadoctor", resultFailed).Inc()
		return err
	}
	if maps.Equal(d.believed, want) {
		stateWrites.WithLabelValues("datadoctor", resultSkipped).Inc()
		return nil
	}
	return d.writeLocked(ctx, cmd, want)
}

// writeLocked issues cmd, resyncs and checks every cycle in want.
func (d *DataDoctor) writeLocked(ctx context.Context, cmd string, want map[Cycle]int64) error {
	if _, err := runOK(ctx, d.runner, d.host, cmd); err != nil {
		d.synced = false
		stateWrites.WithLabelValues("datadoctor", resultFailed).Inc()
		return fmt.Errorf("failed to update data doctor: %w", err)
	}
	if err := d.syncLocked(ctx); err != nil {
		stateWrites.WithLabelValues("datadoctor", resultFailed).Inc()
		return fmt.Errorf("failed to read back data doctor: %w", err)
	}
	for _, c := range Cycles() {
		v, ok := want[c]
		if !ok {
			continue
		}
		if got := d.believed[c]; got != v {
			d.synced = false
			stateWrites.WithLabelValues("datadoctor", resultFailed).Inc()
			return cerrors.New(cerrors.ErrCodeMismatch,
				fmt.Sprintf("%s reads back as %d after setting %d", c, got, v))
		}
	}
	stateWrites.WithLabelValues("datadoctor", resultIssued).Inc()
	slog.Info("data doctor updated", "command", cmd)
	return nil
}

// Invalidate forgets the believed state.
func (d *DataDoctor) Invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.synced = false
}

// Snapshot returns a copy of the believed state without touching the
// appliance.
func (d *DataDoctor) Snapshot() DataDoctorState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return DataDoctorState{
		Cycles:   maps.Clone(d.believed),
		Synced:   d.synced,
		SyncedAt: d.syncedAt,
	}
}

// Age returns how long ago the last successful sync happened, or zero when
// the cache is not synced.
func (d *DataDoctor) Age() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.synced {
		return 0
	}
	return d.clock.Since(d.syncedAt)
}
