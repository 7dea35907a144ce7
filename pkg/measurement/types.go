/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package measurement

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Type identifies the appliance command a measurement was collected from.
type Type string

// Measurement types.
const (
	TypeSysStat    Type = "SysStat"
	TypeHwStat     Type = "HwStat"
	TypeDF         Type = "DF"
	TypeCellCfg    Type = "CellCfg"
	TypeHiveCfg    Type = "HiveCfg"
	TypeDataDoctor Type = "DataDoctor"
)

// Types lists every supported measurement type in collection order.
var Types = []Type{
	TypeSysStat,
	TypeHwStat,
	TypeDF,
	TypeCellCfg,
	TypeHiveCfg,
	TypeDataDoctor,
}

func (t Type) String() string {
	return string(t)
}

// ParseType resolves a type name case-insensitively.
func ParseType(s string) (Type, bool) {
	for _, t := range Types {
		if strings.EqualFold(string(t), s) {
			return t, true
		}
	}
	return "", false
}

// Measurement is the output of one collector.
type Measurement struct {
	Type     Type      `json:"type" yaml:"type"`
	Subtypes []Subtype `json:"subtypes" yaml:"subtypes"`
}

// NewMeasurement returns a measurement of type t holding subtypes.
func NewMeasurement(t Type, subtypes ...Subtype) *Measurement {
	return &Measurement{Type: t, Subtypes: subtypes}
}

// GetSubtype returns the named subtype, or nil.
func (m *Measurement) GetSubtype(name string) *Subtype {
	for i := range m.Subtypes {
		if m.Subtypes[i].Name == name {
			return &m.Subtypes[i]
		}
	}
	return nil
}

// Filter drops readings matching any of patterns from every subtype.
func (m *Measurement) Filter(patterns []string) {
	if len(patterns) == 0 {
		return
	}
	for i := range m.Subtypes {
		m.Subtypes[i].Data = FilterOut(m.Subtypes[i].Data, patterns)
	}
}

// Subtype groups readings, usually one per cell.
type Subtype struct {
	Name string             `json:"subtype" yaml:"subtype"`
	Data map[string]Reading `json:"data" yaml:"data"`
}

// Keys returns the reading names in sorted order.
func (s *Subtype) Keys() []string {
	keys := make([]string, 0, len(s.Data))
	for k := range s.Data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Reading is a single scalar value: string, int64, float64 or bool.
type Reading struct {
	v any
}

// Str returns a string reading.
func Str(s string) Reading { return Reading{v: s} }

// Int returns an integer reading.
func Int(i int) Reading { return Reading{v: int64(i)} }

// Int64 returns an integer reading.
func Int64(i int64) Reading { return Reading{v: i} }

// Float returns a floating point reading.
func Float(f float64) Reading { return Reading{v: f} }

// Bool returns a boolean reading.
func Bool(b bool) Reading { return Reading{v: b} }

// Any returns the underlying value.
func (r Reading) Any() any {
	return r.v
}

// String renders the value the way the validator compares it.
func (r Reading) String() string {
	switch v := r.v.(type) {
	case nil:
		return ""
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// MarshalJSON implements json.Marshaler.
func (r Reading) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.v)
}

// UnmarshalJSON keeps whole numbers as integers.
func (r *Reading) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("failed to decode reading: %w", err)
	}

	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			r.v = i
			return nil
		}
		f, err := t.Float64()
		if err != nil {
			return fmt.Errorf("invalid numeric reading %q: %w", t, err)
		}
		r.v = f
	case string, bool, nil:
		r.v = t
	default:
		return fmt.Errorf("reading must be a scalar, got %T", v)
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (r Reading) MarshalYAML() (any, error) {
	return r.v, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *Reading) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("reading must be a scalar at line %d", node.Line)
	}

	switch node.ShortTag() {
	case "!!int":
		var i int64
		if err := node.Decode(&i); err != nil {
			return fmt.Errorf("failed to decode int reading: %w", err)
		}
		r.v = i
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return fmt.Errorf("failed to decode float reading: %w", err)
		}
		r.v = f
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return fmt.Errorf("failed to decode bool reading: %w", err)
		}
		r.v = b
	case "!!null":
		r.v = nil
	default:
		r.v = node.Value
	}
	return nil
}
