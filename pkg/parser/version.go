/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package parser

import "strings"

// Version is the appliance release reported by the version command.
type Version struct {
	Product string `json:"product" yaml:"product"`
	Release string `json:"release" yaml:"release"`
}

// ParseVersion reads "<product> <release>" from the first line.
func ParseVersion(out string) (*Version, error) {
	lines := SplitLines(out)
	if len(lines) == 0 {
		return nil, unexpected("version", "empty output")
	}
	fields := strings.Fields(lines[0])
	if len(fields) < 2 {
		return nil, unexpected("version", "expected product and release, got %q", lines[0])
	}
	return &Version{
		Product: strings.Join(fields[:len(fields)-1], " "),
		Release: fields[len(fields)-1],
	}, nil
}
