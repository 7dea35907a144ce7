/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package serializer

import (
	"path/filepath"
	"strings"
)

// Format is an output encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
)

var formats = []Format{FormatJSON, FormatYAML, FormatTable}

// IsUnknown reports whether f is not one of the supported formats.
func (f Format) IsUnknown() bool {
	for _, known := range formats {
		if f == known {
			return false
		}
	}
	return true
}

// Ext returns the file extension for f.
func (f Format) Ext() string {
	if f == FormatTable {
		return "txt"
	}
	return string(f)
}

// SupportedFormats returns the format names accepted on the command line.
func SupportedFormats() []string {
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = string(f)
	}
	return out
}

// ParseFormat resolves a format name case-insensitively. Unknown names
// are returned as is so callers can check IsUnknown.
func ParseFormat(s string) Format {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "yml" {
		return FormatYAML
	}
	return f
}

// FormatFromPath guesses the format from the file extension, defaulting
// to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".txt":
		return FormatTable
	default:
		return FormatJSON
	}
}
