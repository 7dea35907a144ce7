/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package state

import (
	"fmt"
	"strings"
	"time"

	cerrors "github.com/stk5800/cliharness/pkg/errors"
)

// Cycle names a data-doctor task whose run interval ddcfg configures.
type Cycle string

const (
	RecoverLostFrags Cycle = "recover_lost_frags_cycle"
	ScanFrags        Cycle = "scan_frags_cycle"
	RemoveDupFrags   Cycle = "remove_dup_frags_cycle"
	RemoveTempFrags  Cycle = "remove_temp_frags_cycle"
	PopulateSysCache Cycle = "populate_sys_cache_cycle"
	PopulateExtCache Cycle = "populate_ext_cache_cycle"
)

// Cycles returns every cycle in ddcfg listing order.
func Cycles() []Cycle {
	return []Cycle{
		RecoverLostFrags,
		ScanFrags,
		RemoveDupFrags,
		RemoveTempFrags,
		PopulateSysCache,
		PopulateExtCache,
	}
}

// IsValid reports whether c is a known cycle.
func (c Cycle) IsValid() bool {
	for _, k := range Cycles() {
		if c == k {
			return true
		}
	}
	return false
}

func (c Cycle) String() string {
	return string(c)
}

// ParseCycle accepts the full cycle name or the name without the "_cycle"
// suffix.
func ParseCycle(s string) (Cycle, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	c := Cycle(s)
	if !strings.HasSuffix(s, "_cycle") {
		c = Cycle(s + "_cycle")
	}
	if !c.IsValid() {
		return "", cerrors.New(cerrors.ErrCodeInvalidRequest, fmt.Sprintf("unknown data doctor cycle %q", s))
	}
	return c, nil
}

// Defaults returns the factory interval, in seconds, of every cycle.
func Defaults() map[Cycle]int64 {
	day := int64((24 * time.Hour).Seconds())
	return map[Cycle]int64{
		RecoverLostFrags: day,
		ScanFrags:        14 * day,
		RemoveDupFrags:   day,
		RemoveTempFrags:  int64(time.Hour.Seconds()),
		PopulateSysCache: day,
		PopulateExtCache: day,
	}
}
