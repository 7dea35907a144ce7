/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package validator

import (
	"fmt"
	"strings"

	"github.com/stk5800/cliharness/pkg/measurement"
	"github.com/stk5800/cliharness/pkg/snapshotter"
)

// AllSubtypes in a constraint path applies the constraint to every
// subtype of the measurement, e.g. "SysStat.*.online".
const AllSubtypes = "*"

// ConstraintPath represents a parsed fully qualified constraint path.
// Format: {Type}.{Subtype}.{Key}
// Example: "SysStat.cell-0.nodesOnline" -> Type="SysStat", Subtype="cell-0", Key="nodesOnline"
type ConstraintPath struct {
	Type    measurement.Type
	Subtype string
	Key     string
}

// ParseConstraintPath parses a fully qualified constraint path. The key
// may contain dots.
func ParseConstraintPath(path string) (*ConstraintPath, error) {
	if path == "" {
		return nil, fmt.Errorf("constraint path cannot be empty")
	}

	parts := strings.SplitN(path, ".", 3)
	if len(parts) < 3 || parts[1] == "" || parts[2] == "" {
		return nil, fmt.Errorf("invalid constraint path %q: expected format {Type}.{Subtype}.{Key}", path)
	}

	measurementType, valid := measurement.ParseType(parts[0])
	if !valid {
		return nil, fmt.Errorf("invalid measurement type %q in constraint path %q: valid types are %v",
			parts[0], path, measurement.Types)
	}

	return &ConstraintPath{
		Type:    measurementType,
		Subtype: parts[1],
		Key:     parts[2],
	}, nil
}

// String returns the fully qualified path string.
func (cp *ConstraintPath) String() string {
	return fmt.Sprintf("%s.%s.%s", cp.Type, cp.Subtype, cp.Key)
}

// Value is a reading found at a constraint path.
type Value struct {
	Subtype string
	Value   string
}

// ExtractValues returns the readings at this path, one per matching
// subtype in snapshot order.
func (cp *ConstraintPath) ExtractValues(snap *snapshotter.Snapshot) ([]Value, error) {
	if snap == nil {
		return nil, fmt.Errorf("snapshot is nil")
	}

	m := snap.Get(cp.Type)
	if m == nil {
		return nil, fmt.Errorf("measurement type %q not found in snapshot", cp.Type)
	}

	var out []Value
	for i := range m.Subtypes {
		st := &m.Subtypes[i]
		if cp.Subtype != AllSubtypes && st.Name != cp.Subtype {
			continue
		}
		reading, ok := st.Data[cp.Key]
		if !ok {
			return nil, fmt.Errorf("key %q not found in subtype %q of measurement type %q", cp.Key, st.Name, cp.Type)
		}
		out = append(out, Value{Subtype: st.Name, Value: reading.String()})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("subtype %q not found in measurement type %q", cp.Subtype, cp.Type)
	}
	return out, nil
}

// ExtractValue returns the single reading at this path.
func (cp *ConstraintPath) ExtractValue(snap *snapshotter.Snapshot) (string, error) {
	if cp.Subtype == AllSubtypes {
		return "", fmt.Errorf("path %s matches several subtypes", cp)
	}
	vals, err := cp.ExtractValues(snap)
	if err != nil {
		return "", err
	}
	return vals[0].Value, nil
}
