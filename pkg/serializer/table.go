/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package serializer

import (
	"fmt"
	"io"
	"reflect"
	"slices"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Tabler is implemented by documents with their own table layout.
type Tabler interface {
	Table() (header []string, rows [][]string)
}

const emptyValue = "<empty>"

var upper = cases.Upper(language.Und)

func writeTable(w io.Writer, data any) error {
	var (
		header []string
		rows   [][]string
	)
	if t, ok := data.(Tabler); ok {
		header, rows = t.Table()
	} else {
		header = []string{"field", "value"}
		rows = flatten("", reflect.ValueOf(data))
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	titles := make([]string, len(header))
	for i, h := range header {
		titles[i] = upper.String(h)
	}
	fmt.Fprintln(tw, strings.Join(titles, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	return nil
}

// flatten walks v and returns one "path, value" row per leaf.
func flatten(prefix string, v reflect.Value) [][]string {
	leaf := func(s string) [][]string {
		key := prefix
		if key == "" {
			key = "."
		}
		return [][]string{{key, s}}
	}

	if !v.IsValid() {
		return leaf("<nil>")
	}
	if v.CanInterface() {
		if s, ok := v.Interface().(fmt.Stringer); ok && v.Kind() != reflect.Pointer {
			return leaf(s.String())
		}
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return leaf("<nil>")
		}
		return flatten(prefix, v.Elem())
	case reflect.Struct:
		var rows [][]string
		t := v.Type()
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			name := f.Name
			if f.Anonymous {
				rows = append(rows, flatten(prefix, v.Field(i))...)
				continue
			}
			rows = append(rows, flatten(join(prefix, name), v.Field(i))...)
		}
		return rows
	case reflect.Map:
		if v.Len() == 0 {
			return leaf(emptyValue)
		}
		keys := v.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return strings.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
		})
		var rows [][]string
		for _, k := range keys {
			rows = append(rows, flatten(join(prefix, fmt.Sprint(k.Interface())), v.MapIndex(k))...)
		}
		return rows
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8 {
			return leaf(string(v.Bytes()))
		}
		if v.Len() == 0 {
			return leaf(emptyValue)
		}
		var rows [][]string
		for i := range v.Len() {
			rows = append(rows, flatten(fmt.Sprintf("%s[%d]", prefix, i), v.Index(i))...)
		}
		return rows
	default:
		return leaf(fmt.Sprint(v.Interface()))
	}
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
