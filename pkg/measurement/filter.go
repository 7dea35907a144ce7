/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package measurement

import "strings"

// FilterOut returns a copy of readings without the keys matching any of
// patterns. A pattern is a literal key or contains '*' wildcards, each
// matching any run of characters:
//   - "smtp*" drops keys starting with "smtp"
//   - "*Vip" drops keys ending with "Vip"
//   - "*Online*" drops keys containing "Online"
//   - "disk*Status" drops keys with that prefix and suffix
func FilterOut(readings map[string]Reading, patterns []string) map[string]Reading {
	result := make(map[string]Reading, len(readings))
	for key, value := range readings {
		if !matchesAny(key, patterns) {
			result[key] = value
		}
	}
	return result
}

// Select returns a copy of readings holding only the keys matching one
// of patterns.
func Select(readings map[string]Reading, patterns []string) map[string]Reading {
	result := make(map[string]Reading)
	for key, value := range readings {
		if matchesAny(key, patterns) {
			result[key] = value
		}
	}
	return result
}

func matchesAny(key string, patterns []string) bool {
	for _, p := range patterns {
		if matchesPattern(key, p) {
			return true
		}
	}
	return false
}

// matchesPattern checks key against a '*' wildcard pattern.
func matchesPattern(key, pattern string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return key == pattern
	}

	first, last := parts[0], parts[len(parts)-1]
	if !strings.HasPrefix(key, first) {
		return false
	}
	rest := key[len(first):]

	for _, mid := range parts[1 : len(parts)-1] {
		i := strings.Index(rest, mid)
		if i < 0 {
			return false
		}
		rest = rest[i+len(mid):]
	}
	return strings.HasSuffix(rest, last)
}
