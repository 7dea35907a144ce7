/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package parser

import (
	"regexp"
	"strings"
	"time"
)

// Audit levels written by the appliance for administrative actions.
const (
	AuditInfo    = "EXT_INFO"
	AuditWarning = "EXT_WARNING"
	AuditSevere  = "EXT_SEVERE"
)

const syslogTimeLayout = "Jan _2 15:04:05"

var auditRe = regexp.MustCompile(
	`^([A-Z][a-z]{2}\s+\d{1,2}\s+\d{2}:\d{2}:\d{2})\s+(\S+)\s+.*?\b(EXT_(?:INFO|WARNING|SEVERE))\b\s*(?:\[([^\]]*)\]\s*)?(.*)$`)

// AuditEntry is one audit record from the syslog file.
type AuditEntry struct {
	// Time has year 0; syslog lines carry no year.
	Time    time.Time `json:"time" yaml:"time"`
	Host    string    `json:"host" yaml:"host"`
	Level   string    `json:"level" yaml:"level"`
	Source  string    `json:"source,omitempty" yaml:"source,omitempty"`
	Message string    `json:"message" yaml:"message"`
}

// ParseAuditLine parses a syslog line. ok is false for lines that are not
// audit records.
func ParseAuditLine(line string) (*AuditEntry, bool) {
	m := auditRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return nil, false
	}
	ts, err := time.Parse(syslogTimeLayout, strings.Join(strings.Fields(m[1]), " "))
	if err != nil {
		return nil, false
	}
	return &AuditEntry{
		Time:    ts,
		Host:    m[2],
		Level:   m[3],
		Source:  m[4],
		Message: strings.TrimSpace(m[5]),
	}, true
}

// ParseAuditLog returns every audit record in out, skipping other lines.
func ParseAuditLog(out string) []AuditEntry {
	var entries []AuditEntry
	for _, line := range SplitLines(out) {
		if e, ok := ParseAuditLine(line); ok {
			entries = append(entries, *e)
		}
	}
	return entries
}
