/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cases

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	cerrors "github.com/stk5800/cliharness/pkg/errors"
)

// Registry manages registered cases with thread-safe operations.
type Registry struct {
	cases map[string]Case

	mu sync.RWMutex
}

// NewRegistry creates a Registry holding every built-in case.
func NewRegistry() *Registry {
	r := &Registry{cases: make(map[string]Case)}
	for _, c := range []Case{
		newAlertCfg(),
		newCellCfg(),
		newDDCfg(),
		newDF(),
		newHiveAdm(),
		newHiveCfg(),
		newHwCfg(),
		newHwStat(),
		newPerfStats(),
		newReboot(),
		newSysStat(),
		newWipe(),
	} {
		r.cases[c.Name()] = c
	}
	return r
}

// Register adds or replaces a case.
func (r *Registry) Register(c Case) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cases[c.Name()] = c
}

// Get retrieves a case by name.
func (r *Registry) Get(name string) (Case, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.cases[strings.ToLower(name)]
	return c, ok
}

// List returns every case ordered by name.
func (r *Registry) List() []Case {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Case, 0, len(r.cases))
	for _, name := range slices.Sorted(maps.Keys(r.cases)) {
		out = append(out, r.cases[name])
	}
	return out
}

// Names returns the registered case names in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.cases))
}

// Unregister removes a case.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cases[name]; !ok {
		return fmt.Errorf("case %s not registered", name)
	}
	delete(r.cases, name)
	return nil
}

// Count returns the number of registered cases.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cases)
}

// Select returns the named cases in the order given, or every case when
// names is empty. Unknown names are an error listing the valid ones.
func (r *Registry) Select(names []string) ([]Case, error) {
	if len(names) == 0 {
		return r.List(), nil
	}

	out := make([]Case, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		c, ok := r.Get(n)
		if !ok {
			return nil, cerrors.New(cerrors.ErrCodeInvalidRequest,
				fmt.Sprintf("unknown case %q, valid cases: %s", n, strings.Join(r.Names(), ", ")))
		}
		if seen[c.Name()] {
			continue
		}
		seen[c.Name()] = true
		out = append(out, c)
	}
	return out, nil
}
