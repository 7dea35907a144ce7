/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package measurement

import (
	"maps"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testReadings() map[string]Reading {
	return map[string]Reading{
		"adminVip":           Str("10.7.224.41"),
		"dataVip":            Str("10.7.224.42"),
		"nodesOnline":        Int(16),
		"disksOnline":        Int(64),
		"dataServicesOnline": Bool(true),
		"smtpPort":           Int(25),
		"smtpServer":         Str("mail.example.com"),
		"usagePercent":       Float(12.5),
	}
}

func TestFilterOut(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		wantKeys []string
	}{
		{
			name:     "exact",
			patterns: []string{"smtpPort"},
			wantKeys: []string{"adminVip", "dataServicesOnline", "dataVip", "disksOnline", "nodesOnline", "smtpServer", "usagePercent"},
		},
		{
			name:     "prefix",
			patterns: []string{"smtp*"},
			wantKeys: []string{"adminVip", "dataServicesOnline", "dataVip", "disksOnline", "nodesOnline", "usagePercent"},
		},
		{
			name:     "suffix",
			patterns: []string{"*Vip"},
			wantKeys: []string{"dataServicesOnline", "disksOnline", "nodesOnline", "smtpPort", "smtpServer", "usagePercent"},
		},
		{
			name:     "contains",
			patterns: []string{"*Online*"},
			wantKeys: []string{"adminVip", "dataVip", "smtpPort", "smtpServer", "usagePercent"},
		},
		{
			name:     "prefix and suffix",
			patterns: []string{"d*Online"},
			wantKeys: []string{"adminVip", "dataVip", "nodesOnline", "smtpPort", "smtpServer", "usagePercent"},
		},
		{
			name:     "multiple patterns",
			patterns: []string{"smtp*", "*Vip", "*Online"},
			wantKeys: []string{"usagePercent"},
		},
		{
			name:     "no patterns",
			wantKeys: []string{"adminVip", "dataServicesOnline", "dataVip", "disksOnline", "nodesOnline", "smtpPort", "smtpServer", "usagePercent"},
		},
		{
			name:     "everything",
			patterns: []string{"*"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterOut(testReadings(), tt.patterns)
			keys := slices.Sorted(maps.Keys(got))
			if len(tt.wantKeys) == 0 {
				assert.Empty(t, keys)
				return
			}
			assert.Equal(t, tt.wantKeys, keys)
		})
	}
}

func TestSelect(t *testing.T) {
	got := Select(testReadings(), []string{"*Vip", "smtpPort"})
	assert.Equal(t, []string{"adminVip", "dataVip", "smtpPort"}, slices.Sorted(maps.Keys(got)))
	assert.Empty(t, Select(testReadings(), nil))
}

func TestMatchesPattern(t *testing.T) {
	tests := []struct {
		key     string
		pattern string
		want    bool
	}{
		{"smtpPort", "smtpPort", true},
		{"smtpPort", "smtpServer", false},
		{"smtpPort", "smtp*", true},
		{"nodesOnline", "smtp*", false},
		{"anything", "*", true},
		{"dataVip", "*Vip", true},
		{"dataVipx", "*Vip", false},
		{"dataServicesOnline", "*Services*", true},
		{"abc", "a*c", true},
		{"abxc", "a*b*c", true},
		{"acb", "a*b*c", false},
		{"ab", "ab*b", false},
		{"key", "", false},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"/"+tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesPattern(tt.key, tt.pattern))
		})
	}
}
